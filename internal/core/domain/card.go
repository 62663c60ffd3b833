package domain

import (
	"sort"
	"strings"
	"time"
)

type InstallmentStatus string

const (
	InstallmentOpen InstallmentStatus = "OPEN"
	InstallmentPaid InstallmentStatus = "PAID"
)

const MaxInstallments = 360

type CardPurchase struct {
	RecordMeta
	Description       string    `json:"description" db:"description"`
	TotalAmount       Cents     `json:"total_amount" db:"total_amount"`
	InstallmentsTotal int       `json:"installments_total" db:"installments_total"`
	FirstPaymentDate  time.Time `json:"first_payment_date" db:"first_payment_date"`
}

type CardInstallment struct {
	RecordMeta
	PurchaseID        string            `json:"purchase_id" db:"purchase_id"`
	InstallmentNumber int               `json:"installment_number" db:"installment_number"`
	InstallmentAmount Cents             `json:"installment_amount" db:"installment_amount"`
	DueDate           time.Time         `json:"due_date" db:"due_date"`
	MonthKey          string            `json:"month_key" db:"month_key"`
	Status            InstallmentStatus `json:"status" db:"status"`
	PaidAt            *time.Time        `json:"paid_at,omitempty" db:"paid_at"`
}

type CardPurchaseFields struct {
	Description       string
	TotalAmount       Cents
	InstallmentsCount int
	FirstPaymentDate  time.Time
}

// AllocateInstallments splits total into n amounts: floor(total/n) each,
// with the whole rounding remainder on the last one, so the sum is exact.
func AllocateInstallments(total Cents, n int) ([]Cents, error) {
	if total <= 0 {
		return nil, ErrInvalidAmount
	}
	if total > MaxAmount {
		return nil, ErrAmountOutOfRange
	}
	if n < 1 || n > MaxInstallments {
		return nil, ErrInvalidInstallments
	}

	base := total / Cents(n)
	remainder := total - base*Cents(n)

	amounts := make([]Cents, n)
	for i := range amounts {
		amounts[i] = base
	}
	amounts[n-1] = base + remainder
	return amounts, nil
}

// NewCardPurchase validates the input and builds the purchase together with
// its full installment schedule. Nothing is returned on error.
func NewCardPurchase(userID string, f CardPurchaseFields, now time.Time) (*CardPurchase, []*CardInstallment, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, nil, ErrInvalidUserContext
	}
	if f.FirstPaymentDate.IsZero() {
		return nil, nil, ErrInvalidDate
	}

	amounts, err := AllocateInstallments(f.TotalAmount, f.InstallmentsCount)
	if err != nil {
		return nil, nil, err
	}

	first := DateOnly(f.FirstPaymentDate)
	purchase := &CardPurchase{
		RecordMeta:        newRecordMeta(userID, now),
		Description:       strings.TrimSpace(f.Description),
		TotalAmount:       f.TotalAmount,
		InstallmentsTotal: f.InstallmentsCount,
		FirstPaymentDate:  first,
	}

	installments := make([]*CardInstallment, len(amounts))
	for i, amount := range amounts {
		due := AddMonthsClamped(first, i, first.Day())
		installments[i] = &CardInstallment{
			RecordMeta:        newRecordMeta(userID, now),
			PurchaseID:        purchase.ID,
			InstallmentNumber: i + 1,
			InstallmentAmount: amount,
			DueDate:           due,
			MonthKey:          MonthKey(due),
			Status:            InstallmentOpen,
		}
	}

	return purchase, installments, nil
}

// SortInstallments orders a schedule by installment number.
func SortInstallments(installments []*CardInstallment) {
	sort.Slice(installments, func(i, j int) bool {
		return installments[i].InstallmentNumber < installments[j].InstallmentNumber
	})
}

// SumInstallments returns the schedule total.
func SumInstallments(installments []*CardInstallment) Cents {
	var sum Cents
	for _, inst := range installments {
		sum += inst.InstallmentAmount
	}
	return sum
}

// RebalanceInstallments applies an edited amount as the new base of every
// non-final installment and recomputes the final one as
// total - base*(n-1), keeping the sum exact after every edit. Edits are
// refused once any installment is paid, or when the final installment
// would not stay positive. The schedule is only mutated on success.
func RebalanceInstallments(total Cents, installments []*CardInstallment, base Cents, now time.Time) error {
	n := len(installments)
	if n == 0 {
		return ErrInstallmentNotFound
	}
	if base <= 0 {
		return ErrInvalidAmount
	}

	for _, inst := range installments {
		if inst.Status == InstallmentPaid {
			return ErrInstallmentAlreadyPaid
		}
	}

	if n > 1 && base > (total-1)/Cents(n-1) {
		return ErrInvalidInstallment
	}
	last := total - base*Cents(n-1)
	if last <= 0 {
		return ErrInvalidInstallment
	}

	SortInstallments(installments)
	for i, inst := range installments {
		amount := base
		if i == n-1 {
			amount = last
		}
		if inst.InstallmentAmount != amount {
			inst.InstallmentAmount = amount
			inst.touch(now)
		}
	}
	return nil
}

// Pay is the irreversible OPEN -> PAID edge.
func (i *CardInstallment) Pay(now time.Time) error {
	if i.Status == InstallmentPaid {
		return ErrInstallmentAlreadyPaid
	}

	now = now.UTC()
	i.Status = InstallmentPaid
	i.PaidAt = &now
	i.touch(now)
	return nil
}
