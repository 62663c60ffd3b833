package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

// FinanceService manages card purchases paid in installments and
// recurring expense series.
type FinanceService struct {
	uow       domain.UnitOfWork
	publisher domain.EffectPublisher
	log       *logrus.Logger
}

func NewFinanceService(uow domain.UnitOfWork, publisher domain.EffectPublisher, log *logrus.Logger) *FinanceService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &FinanceService{
		uow:       uow,
		publisher: publisher,
		log:       log,
	}
}

type CreatePurchaseInput struct {
	Description       string
	TotalAmount       domain.Cents
	InstallmentsCount int
	FirstPaymentDate  time.Time
}

// PurchaseDetail is a purchase with its schedule ordered by number.
type PurchaseDetail struct {
	*domain.CardPurchase
	Installments []*domain.CardInstallment `json:"installments"`
	Paid         domain.Cents              `json:"paid"`
	Remaining    domain.Cents              `json:"remaining"`
}

type CreateRecurringInput struct {
	Description  string
	Amount       domain.Cents
	Frequency    domain.Frequency
	AnchorDate   time.Time
	Horizon      int
	SettleAnchor bool
}

// MonthView lists what falls due in one month.
type MonthView struct {
	MonthKey     string                     `json:"month_key"`
	Installments []*domain.CardInstallment  `json:"installments"`
	Recurring    []*domain.RecurringExpense `json:"recurring"`
	Total        domain.Cents               `json:"total"`
	Open         domain.Cents               `json:"open"`
}

func newPurchaseDetail(p *domain.CardPurchase, installments []*domain.CardInstallment) *PurchaseDetail {
	domain.SortInstallments(installments)

	d := &PurchaseDetail{CardPurchase: p, Installments: installments}
	for _, inst := range installments {
		if inst.Status == domain.InstallmentPaid {
			d.Paid += inst.InstallmentAmount
		}
	}
	d.Remaining = domain.SumInstallments(installments) - d.Paid
	return d
}

// CreatePurchase persists a purchase and its whole schedule atomically.
func (s *FinanceService) CreatePurchase(ctx context.Context, uc domain.UserContext, input CreatePurchaseInput) (*PurchaseDetail, error) {
	if err := uc.Validate(); err != nil {
		return nil, err
	}

	purchase, installments, err := domain.NewCardPurchase(uc.UserID, domain.CardPurchaseFields{
		Description:       input.Description,
		TotalAmount:       input.TotalAmount,
		InstallmentsCount: input.InstallmentsCount,
		FirstPaymentDate:  input.FirstPaymentDate,
	}, uc.Clock())
	if err != nil {
		return nil, err
	}

	err = s.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		if err := repos.Purchases.Create(ctx, purchase); err != nil {
			return err
		}
		for _, inst := range installments {
			if err := repos.Installments.Create(ctx, inst); err != nil {
				return fmt.Errorf("installment %d: %w", inst.InstallmentNumber, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return newPurchaseDetail(purchase, installments), nil
}

func scheduleOf(ctx context.Context, repos domain.Repositories, userID, purchaseID string) ([]*domain.CardInstallment, error) {
	return repos.Installments.ListByPurchase(ctx, userID, purchaseID)
}

func (s *FinanceService) ListPurchases(ctx context.Context, uc domain.UserContext) ([]*domain.CardPurchase, error) {
	if err := uc.Validate(); err != nil {
		return nil, err
	}
	return s.uow.Repos().Purchases.List(ctx, uc.UserID)
}

func (s *FinanceService) GetPurchase(ctx context.Context, uc domain.UserContext, purchaseID string) (*PurchaseDetail, error) {
	if err := uc.Validate(); err != nil {
		return nil, err
	}
	repos := s.uow.Repos()

	purchase, err := getOwned(ctx, repos.Purchases, purchaseID, uc.UserID, domain.ErrPurchaseNotFound)
	if err != nil {
		return nil, err
	}

	installments, err := scheduleOf(ctx, repos, uc.UserID, purchase.ID)
	if err != nil {
		return nil, err
	}
	return newPurchaseDetail(purchase, installments), nil
}

// EditInstallmentAmount sets a new base amount for the purchase schedule.
// Every non-final installment takes the amount and the final one absorbs
// the difference, so the schedule still sums to the purchase total.
func (s *FinanceService) EditInstallmentAmount(ctx context.Context, uc domain.UserContext, installmentID string, amount domain.Cents) (*PurchaseDetail, error) {
	if err := uc.Validate(); err != nil {
		return nil, err
	}

	var detail *PurchaseDetail
	err := s.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		edited, err := getOwned(ctx, repos.Installments, installmentID, uc.UserID, domain.ErrInstallmentNotFound)
		if err != nil {
			return err
		}

		purchase, err := getOwned(ctx, repos.Purchases, edited.PurchaseID, uc.UserID, domain.ErrPurchaseNotFound)
		if err != nil {
			return err
		}

		installments, err := scheduleOf(ctx, repos, uc.UserID, purchase.ID)
		if err != nil {
			return err
		}

		before := make(map[string]domain.Cents, len(installments))
		for _, inst := range installments {
			before[inst.ID] = inst.InstallmentAmount
		}

		if err := domain.RebalanceInstallments(purchase.TotalAmount, installments, amount, uc.Clock()); err != nil {
			return err
		}

		for _, inst := range installments {
			if before[inst.ID] == inst.InstallmentAmount {
				continue
			}
			if err := repos.Installments.Update(ctx, inst); err != nil {
				return fmt.Errorf("installment %d: %w", inst.InstallmentNumber, err)
			}
		}

		detail = newPurchaseDetail(purchase, installments)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// PayInstallment marks one installment as paid. Paying is terminal.
func (s *FinanceService) PayInstallment(ctx context.Context, uc domain.UserContext, installmentID string) (*domain.CardInstallment, error) {
	if err := uc.Validate(); err != nil {
		return nil, err
	}

	var paid *domain.CardInstallment
	err := s.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		inst, err := getOwned(ctx, repos.Installments, installmentID, uc.UserID, domain.ErrInstallmentNotFound)
		if err != nil {
			return err
		}
		if err := inst.Pay(uc.Clock()); err != nil {
			return err
		}
		if err := repos.Installments.Update(ctx, inst); err != nil {
			return err
		}
		paid = inst
		return nil
	})
	if err != nil {
		return nil, err
	}

	var fx domain.Effects
	fx.Add(uc, domain.EffectInstallmentPaid, "", paid.ID, int64(paid.InstallmentAmount))
	publishCommitted(s.log, s.publisher, uc.UserID, fx)
	return paid, nil
}

// DeletePurchase removes a purchase together with its open installments.
// Paid installments stay as history.
func (s *FinanceService) DeletePurchase(ctx context.Context, uc domain.UserContext, purchaseID string) error {
	if err := uc.Validate(); err != nil {
		return err
	}

	return s.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		purchase, err := getOwned(ctx, repos.Purchases, purchaseID, uc.UserID, domain.ErrPurchaseNotFound)
		if err != nil {
			return err
		}

		installments, err := scheduleOf(ctx, repos, uc.UserID, purchase.ID)
		if err != nil {
			return err
		}
		for _, inst := range installments {
			if inst.Status == domain.InstallmentPaid {
				continue
			}
			if err := repos.Installments.Delete(ctx, inst.ID); err != nil {
				return err
			}
		}
		return repos.Purchases.Delete(ctx, purchase.ID)
	})
}

// CreateRecurring stores the anchor and the generated members of a new
// series. The horizon defaults to DefaultHorizon.
func (s *FinanceService) CreateRecurring(ctx context.Context, uc domain.UserContext, input CreateRecurringInput) ([]*domain.RecurringExpense, error) {
	if err := uc.Validate(); err != nil {
		return nil, err
	}
	if input.Horizon == 0 {
		input.Horizon = domain.DefaultHorizon
	}
	if input.Frequency == "" {
		input.Frequency = domain.FrequencyMonthly
	}

	members, err := domain.NewRecurringSeries(uc.UserID, domain.RecurringFields{
		Description:  input.Description,
		Amount:       input.Amount,
		Frequency:    input.Frequency,
		AnchorDate:   input.AnchorDate,
		Horizon:      input.Horizon,
		SettleAnchor: input.SettleAnchor,
	}, uc.Clock())
	if err != nil {
		return nil, err
	}

	if err := s.createMembers(ctx, members); err != nil {
		return nil, err
	}
	return members, nil
}

func (s *FinanceService) createMembers(ctx context.Context, members []*domain.RecurringExpense) error {
	return s.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		for _, m := range members {
			if err := repos.Recurring.Create(ctx, m); err != nil {
				return fmt.Errorf("recurring member %d: %w", m.Sequence, err)
			}
		}
		return nil
	})
}

func (s *FinanceService) series(ctx context.Context, repos domain.Repositories, userID, groupID string) ([]*domain.RecurringExpense, error) {
	members, err := repos.Recurring.Filter(ctx, userID, func(r *domain.RecurringExpense) bool {
		return r.GroupID == groupID
	})
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, domain.ErrRecurringNotFound
	}
	sortSeries(members)
	return members, nil
}

// Series returns every member of a series ordered by sequence.
func (s *FinanceService) Series(ctx context.Context, uc domain.UserContext, groupID string) ([]*domain.RecurringExpense, error) {
	if err := uc.Validate(); err != nil {
		return nil, err
	}
	return s.series(ctx, s.uow.Repos(), uc.UserID, groupID)
}

// ExtendRecurring appends count more members after the last one of the
// series. Series never grow on their own.
func (s *FinanceService) ExtendRecurring(ctx context.Context, uc domain.UserContext, groupID string, count int) ([]*domain.RecurringExpense, error) {
	if err := uc.Validate(); err != nil {
		return nil, err
	}

	var added []*domain.RecurringExpense
	err := s.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		members, err := s.series(ctx, repos, uc.UserID, groupID)
		if err != nil {
			return err
		}

		added, err = domain.ExtendSeries(members, count, uc.Clock())
		if err != nil {
			return err
		}
		for _, m := range added {
			if err := repos.Recurring.Create(ctx, m); err != nil {
				return fmt.Errorf("recurring member %d: %w", m.Sequence, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

func (s *FinanceService) SettleRecurring(ctx context.Context, uc domain.UserContext, memberID string) (*domain.RecurringExpense, error) {
	if err := uc.Validate(); err != nil {
		return nil, err
	}

	var settled *domain.RecurringExpense
	err := s.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		member, err := getOwned(ctx, repos.Recurring, memberID, uc.UserID, domain.ErrRecurringNotFound)
		if err != nil {
			return err
		}
		if err := member.Settle(uc.Clock()); err != nil {
			return err
		}
		if err := repos.Recurring.Update(ctx, member); err != nil {
			return err
		}
		settled = member
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settled, nil
}

// DeleteRecurring removes the scheduled members of a series; settled ones
// stay as history.
func (s *FinanceService) DeleteRecurring(ctx context.Context, uc domain.UserContext, groupID string) error {
	if err := uc.Validate(); err != nil {
		return err
	}

	return s.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		members, err := s.series(ctx, repos, uc.UserID, groupID)
		if err != nil {
			return err
		}
		for _, m := range members {
			if m.Status == domain.RecurringSettled {
				continue
			}
			if err := repos.Recurring.Delete(ctx, m.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

// Month collects installments and recurring members due in monthKey
// (YYYY-MM).
func (s *FinanceService) Month(ctx context.Context, uc domain.UserContext, monthKey string) (*MonthView, error) {
	if err := uc.Validate(); err != nil {
		return nil, err
	}
	if _, err := time.Parse(domain.MonthKeyLayout, monthKey); err != nil {
		return nil, domain.ErrInvalidDate
	}

	repos := s.uow.Repos()

	installments, err := repos.Installments.Filter(ctx, uc.UserID, func(i *domain.CardInstallment) bool {
		return i.MonthKey == monthKey
	})
	if err != nil {
		return nil, err
	}

	recurring, err := repos.Recurring.Filter(ctx, uc.UserID, func(r *domain.RecurringExpense) bool {
		return r.MonthKey == monthKey
	})
	if err != nil {
		return nil, err
	}

	view := &MonthView{
		MonthKey:     monthKey,
		Installments: installments,
		Recurring:    recurring,
	}
	for _, inst := range installments {
		view.Total += inst.InstallmentAmount
		if inst.Status == domain.InstallmentOpen {
			view.Open += inst.InstallmentAmount
		}
	}
	for _, r := range recurring {
		view.Total += r.Amount
		if r.Status == domain.RecurringScheduled {
			view.Open += r.Amount
		}
	}
	return view, nil
}

func sortSeries(members []*domain.RecurringExpense) {
	sort.Slice(members, func(i, j int) bool {
		return members[i].Sequence < members[j].Sequence
	})
}
