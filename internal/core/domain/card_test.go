package domain_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

func TestAllocateInstallments(t *testing.T) {
	amounts, err := domain.AllocateInstallments(10000, 3)
	require.NoError(t, err)
	assert.Equal(t, []domain.Cents{3333, 3333, 3334}, amounts)

	_, err = domain.AllocateInstallments(0, 3)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = domain.AllocateInstallments(10000, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInstallments)

	_, err = domain.AllocateInstallments(10000, domain.MaxInstallments+1)
	assert.ErrorIs(t, err, domain.ErrInvalidInstallments)
}

func TestInstallments_CentExactSum(t *testing.T) {
	now := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	totals := []domain.Cents{1, 7, 99, 100, 10000, 12345, 999999}

	for _, total := range totals {
		for n := 1; n <= 24; n++ {
			_, installments, err := domain.NewCardPurchase("u1", domain.CardPurchaseFields{
				TotalAmount:       total,
				InstallmentsCount: n,
				FirstPaymentDate:  now,
			}, now)
			require.NoError(t, err)
			require.Len(t, installments, n)
			require.Equal(t, total, domain.SumInstallments(installments), "allocation total=%d n=%d", total, n)

			edited := installments[0].InstallmentAmount + 1
			if err := domain.RebalanceInstallments(total, installments, edited, now); err != nil {
				require.ErrorIs(t, err, domain.ErrInvalidInstallment)
				continue
			}
			require.Equal(t, total, domain.SumInstallments(installments), "edit total=%d n=%d", total, n)
		}
	}
}

func TestNewCardPurchase_Schedule(t *testing.T) {
	first := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	purchase, installments, err := domain.NewCardPurchase("u1", domain.CardPurchaseFields{
		Description:       " Laptop ",
		TotalAmount:       10000,
		InstallmentsCount: 3,
		FirstPaymentDate:  first,
	}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, "Laptop", purchase.Description)
	assert.Equal(t, 3, purchase.InstallmentsTotal)

	wantDates := []string{"2024-01-31", "2024-02-29", "2024-03-31"}
	wantKeys := []string{"2024-01", "2024-02", "2024-03"}
	for i, inst := range installments {
		assert.Equal(t, purchase.ID, inst.PurchaseID)
		assert.Equal(t, i+1, inst.InstallmentNumber)
		assert.Equal(t, wantDates[i], inst.DueDate.Format(domain.DateLayout))
		assert.Equal(t, wantKeys[i], inst.MonthKey)
		assert.Equal(t, domain.InstallmentOpen, inst.Status)
	}

	_, _, err = domain.NewCardPurchase("u1", domain.CardPurchaseFields{TotalAmount: 100, InstallmentsCount: 1}, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}

func TestRebalanceInstallments(t *testing.T) {
	now := time.Now()
	build := func(t *testing.T) []*domain.CardInstallment {
		t.Helper()
		_, installments, err := domain.NewCardPurchase("u1", domain.CardPurchaseFields{
			TotalAmount:       10000,
			InstallmentsCount: 3,
			FirstPaymentDate:  now,
		}, now)
		require.NoError(t, err)
		return installments
	}

	t.Run("Success: Final installment absorbs the difference", func(t *testing.T) {
		installments := build(t)

		require.NoError(t, domain.RebalanceInstallments(10000, installments, 3000, now))
		assert.Equal(t, domain.Cents(3000), installments[0].InstallmentAmount)
		assert.Equal(t, domain.Cents(3000), installments[1].InstallmentAmount)
		assert.Equal(t, domain.Cents(4000), installments[2].InstallmentAmount)
	})

	t.Run("Error: Final installment would not stay positive", func(t *testing.T) {
		installments := build(t)

		err := domain.RebalanceInstallments(10000, installments, 5000, now)
		assert.ErrorIs(t, err, domain.ErrInvalidInstallment)
		assert.Equal(t, domain.Cents(3334), installments[2].InstallmentAmount, "schedule untouched")
	})

	t.Run("Error: Oversized edit cannot wrap the final installment", func(t *testing.T) {
		_, installments, err := domain.NewCardPurchase("u1", domain.CardPurchaseFields{
			TotalAmount:       10000,
			InstallmentsCount: 5,
			FirstPaymentDate:  now,
		}, now)
		require.NoError(t, err)

		for _, base := range []domain.Cents{4611686018427387904, math.MaxInt64, 2501} {
			err := domain.RebalanceInstallments(10000, installments, base, now)
			assert.ErrorIs(t, err, domain.ErrInvalidInstallment, "base=%d", base)
		}
		assert.Equal(t, []domain.Cents{2000, 2000, 2000, 2000, 2000}, installmentAmounts(installments))
		assert.Equal(t, domain.Cents(10000), domain.SumInstallments(installments))

		require.NoError(t, domain.RebalanceInstallments(10000, installments, 2499, now))
		assert.Equal(t, domain.Cents(4), installments[4].InstallmentAmount)
	})

	t.Run("Error: Paid installment freezes the schedule", func(t *testing.T) {
		installments := build(t)
		require.NoError(t, installments[0].Pay(now))

		err := domain.RebalanceInstallments(10000, installments, 3000, now)
		assert.ErrorIs(t, err, domain.ErrInstallmentAlreadyPaid)
	})

	t.Run("Error: Non-positive amount", func(t *testing.T) {
		err := domain.RebalanceInstallments(10000, build(t), 0, now)
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	})
}

func TestCardInstallment_Pay(t *testing.T) {
	inst := &domain.CardInstallment{Status: domain.InstallmentOpen}
	now := time.Now()

	require.NoError(t, inst.Pay(now))
	assert.Equal(t, domain.InstallmentPaid, inst.Status)
	require.NotNil(t, inst.PaidAt)

	assert.ErrorIs(t, inst.Pay(now), domain.ErrInstallmentAlreadyPaid)
}

func installmentAmounts(installments []*domain.CardInstallment) []domain.Cents {
	out := make([]domain.Cents, len(installments))
	for i, inst := range installments {
		out[i] = inst.InstallmentAmount
	}
	return out
}

func TestAllocateInstallments_AmountCeiling(t *testing.T) {
	_, err := domain.AllocateInstallments(domain.MaxAmount, 12)
	require.NoError(t, err)

	_, err = domain.AllocateInstallments(domain.MaxAmount+1, 12)
	assert.ErrorIs(t, err, domain.ErrAmountOutOfRange)
	assert.True(t, domain.IsValidation(err))
}

func TestParseCents(t *testing.T) {
	tests := []struct {
		in   string
		want domain.Cents
	}{
		{in: "100", want: 10000},
		{in: "100.00", want: 10000},
		{in: "99.9", want: 9990},
		{in: "12.345", want: 1235},
		{in: " 0.01 ", want: 1},
	}

	for _, tt := range tests {
		got, err := domain.ParseCents(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := domain.ParseCents("ten")
	assert.Error(t, err)

	for _, huge := range []string{"184467440737095517.16", "46116860184273879.04", "-92233720368547758.08", "10000000000.01"} {
		_, err := domain.ParseCents(huge)
		assert.ErrorIs(t, err, domain.ErrAmountOutOfRange, huge)
	}

	ceiling, err := domain.ParseCents("10000000000.00")
	require.NoError(t, err)
	assert.Equal(t, domain.MaxAmount, ceiling)

	assert.Equal(t, "33.34", domain.Cents(3334).String())
	assert.Equal(t, "0.05", domain.Cents(5).String())
}
