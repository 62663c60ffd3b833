package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

type record[T any] interface {
	*T
	Meta() *domain.RecordMeta
}

// memTable stores value copies so callers never alias stored records:
// a change only lands through Update.
type memTable[T any, P record[T]] struct {
	store      map[string]T
	notFound   error
	hardDelete bool

	mu sync.RWMutex
}

func newMemTable[T any, P record[T]](notFound error) *memTable[T, P] {
	return &memTable[T, P]{
		store:    make(map[string]T),
		notFound: notFound,
	}
}

func (r *memTable[T, P]) Create(ctx context.Context, rec *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	meta := P(rec).Meta()
	if _, ok := r.store[meta.ID]; ok {
		return domain.ErrVersionConflict
	}
	if meta.Version == 0 {
		meta.Version = 1
	}
	r.store[meta.ID] = *rec
	return nil
}

func (r *memTable[T, P]) GetByID(ctx context.Context, id string) (*T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.store[id]
	if !ok || P(&rec).Meta().DeletedAt != nil {
		return nil, r.notFound
	}
	return &rec, nil
}

func (r *memTable[T, P]) List(ctx context.Context, userID string) ([]*T, error) {
	return r.Filter(ctx, userID, nil)
}

func (r *memTable[T, P]) Filter(ctx context.Context, userID string, keep func(*T) bool) ([]*T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*T
	for _, stored := range r.store {
		rec := stored
		meta := P(&rec).Meta()
		if meta.UserID != userID || meta.DeletedAt != nil {
			continue
		}
		if keep != nil && !keep(&rec) {
			continue
		}
		out = append(out, &rec)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := P(out[i]).Meta(), P(out[j]).Meta()
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (r *memTable[T, P]) Update(ctx context.Context, rec *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	meta := P(rec).Meta()
	stored, ok := r.store[meta.ID]
	if !ok || P(&stored).Meta().DeletedAt != nil {
		return r.notFound
	}
	if P(&stored).Meta().Version != meta.Version {
		return domain.ErrVersionConflict
	}

	meta.Version++
	r.store[meta.ID] = *rec
	return nil
}

func (r *memTable[T, P]) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.store[id]
	meta := P(&stored).Meta()
	if !ok || meta.DeletedAt != nil {
		return r.notFound
	}

	if r.hardDelete {
		delete(r.store, id)
		return nil
	}

	now := time.Now().UTC()
	meta.DeletedAt = &now
	meta.UpdatedAt = now
	meta.Version++
	r.store[id] = stored
	return nil
}

// snapshot copies the table and returns a function restoring that copy.
func (r *memTable[T, P]) snapshot() func() {
	r.mu.RLock()
	saved := make(map[string]T, len(r.store))
	for k, v := range r.store {
		saved[k] = v
	}
	r.mu.RUnlock()

	return func() {
		r.mu.Lock()
		r.store = saved
		r.mu.Unlock()
	}
}

type memCompletions struct {
	*memTable[domain.HabitCompletion, *domain.HabitCompletion]
}

func (r *memCompletions) FindByHabitDate(ctx context.Context, userID, habitID string, date time.Time) (*domain.HabitCompletion, error) {
	found, err := r.Filter(ctx, userID, func(c *domain.HabitCompletion) bool {
		return c.SameDay(habitID, date)
	})
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return found[0], nil
}

type memInstallments struct {
	*memTable[domain.CardInstallment, *domain.CardInstallment]
}

func (r *memInstallments) ListByPurchase(ctx context.Context, userID, purchaseID string) ([]*domain.CardInstallment, error) {
	out, err := r.Filter(ctx, userID, func(i *domain.CardInstallment) bool {
		return i.PurchaseID == purchaseID
	})
	if err != nil {
		return nil, err
	}
	domain.SortInstallments(out)
	return out, nil
}

type memLedger struct {
	rows []domain.XPTransaction

	mu sync.RWMutex
}

func (l *memLedger) Append(ctx context.Context, tx *domain.XPTransaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.rows = append(l.rows, *tx)
	return nil
}

func (l *memLedger) ListByUser(ctx context.Context, userID string, from, to time.Time) ([]*domain.XPTransaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []*domain.XPTransaction
	for _, row := range l.rows {
		if row.UserID != userID {
			continue
		}
		if !from.IsZero() && row.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && row.CreatedAt.After(to) {
			continue
		}
		tx := row
		out = append(out, &tx)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (l *memLedger) SumByUser(ctx context.Context, userID string) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var total int64
	for _, row := range l.rows {
		if row.UserID == userID {
			total += row.Amount
		}
	}
	return total, nil
}

func (l *memLedger) snapshot() func() {
	l.mu.RLock()
	n := len(l.rows)
	l.mu.RUnlock()

	return func() {
		l.mu.Lock()
		l.rows = l.rows[:n:n]
		l.mu.Unlock()
	}
}

// MemoryStore is an in-process UnitOfWork. Transitions are serialized and
// a failed transition restores every table to its state before Do.
type MemoryStore struct {
	habits       *memTable[domain.Habit, *domain.Habit]
	completions  *memCompletions
	tasks        *memTable[domain.Task, *domain.Task]
	goals        *memTable[domain.Goal, *domain.Goal]
	milestones   *memTable[domain.Milestone, *domain.Milestone]
	purchases    *memTable[domain.CardPurchase, *domain.CardPurchase]
	installments *memInstallments
	recurring    *memTable[domain.RecurringExpense, *domain.RecurringExpense]
	ledger       *memLedger

	txMu sync.Mutex
}

var _ domain.UnitOfWork = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		habits:       newMemTable[domain.Habit](domain.ErrHabitNotFound),
		completions:  &memCompletions{newMemTable[domain.HabitCompletion](domain.ErrCompletionNotFound)},
		tasks:        newMemTable[domain.Task](domain.ErrTaskNotFound),
		goals:        newMemTable[domain.Goal](domain.ErrGoalNotFound),
		milestones:   newMemTable[domain.Milestone](domain.ErrMilestoneNotFound),
		purchases:    newMemTable[domain.CardPurchase](domain.ErrPurchaseNotFound),
		installments: &memInstallments{newMemTable[domain.CardInstallment](domain.ErrInstallmentNotFound)},
		recurring:    newMemTable[domain.RecurringExpense](domain.ErrRecurringNotFound),
		ledger:       &memLedger{},
	}
	s.completions.hardDelete = true
	return s
}

func (s *MemoryStore) tables() domain.Repositories {
	return domain.Repositories{
		Habits:       s.habits,
		Completions:  s.completions,
		Tasks:        s.tasks,
		Goals:        s.goals,
		Milestones:   s.milestones,
		Ledger:       s.ledger,
		Purchases:    s.purchases,
		Installments: s.installments,
		Recurring:    s.recurring,
	}
}

// Repos returns repositories whose writes wait for running transitions,
// so a rollback can never discard them.
func (s *MemoryStore) Repos() domain.Repositories {
	return domain.Repositories{
		Habits:       guard[domain.Habit](s.habits, &s.txMu),
		Completions:  &guardedCompletions{guard[domain.HabitCompletion](s.completions, &s.txMu), s.completions},
		Tasks:        guard[domain.Task](s.tasks, &s.txMu),
		Goals:        guard[domain.Goal](s.goals, &s.txMu),
		Milestones:   guard[domain.Milestone](s.milestones, &s.txMu),
		Ledger:       &guardedLedger{LedgerRepository: s.ledger, mu: &s.txMu},
		Purchases:    guard[domain.CardPurchase](s.purchases, &s.txMu),
		Installments: &guardedInstallments{guard[domain.CardInstallment](s.installments, &s.txMu), s.installments},
		Recurring:    guard[domain.RecurringExpense](s.recurring, &s.txMu),
	}
}

func (s *MemoryStore) Do(ctx context.Context, fn func(ctx context.Context, repos domain.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	restores := []func(){
		s.habits.snapshot(),
		s.completions.snapshot(),
		s.tasks.snapshot(),
		s.goals.snapshot(),
		s.milestones.snapshot(),
		s.purchases.snapshot(),
		s.installments.snapshot(),
		s.recurring.snapshot(),
		s.ledger.snapshot(),
	}

	if err := fn(ctx, s.tables()); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}

type guarded[T any] struct {
	domain.Repository[T]
	mu *sync.Mutex
}

func guard[T any](repo domain.Repository[T], mu *sync.Mutex) *guarded[T] {
	return &guarded[T]{Repository: repo, mu: mu}
}

func (g *guarded[T]) Create(ctx context.Context, rec *T) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.Repository.Create(ctx, rec)
}

func (g *guarded[T]) Update(ctx context.Context, rec *T) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.Repository.Update(ctx, rec)
}

func (g *guarded[T]) Delete(ctx context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.Repository.Delete(ctx, id)
}

type guardedLedger struct {
	domain.LedgerRepository
	mu *sync.Mutex
}

func (g *guardedLedger) Append(ctx context.Context, tx *domain.XPTransaction) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.LedgerRepository.Append(ctx, tx)
}

type guardedCompletions struct {
	*guarded[domain.HabitCompletion]
	table *memCompletions
}

func (g *guardedCompletions) FindByHabitDate(ctx context.Context, userID, habitID string, date time.Time) (*domain.HabitCompletion, error) {
	return g.table.FindByHabitDate(ctx, userID, habitID, date)
}

type guardedInstallments struct {
	*guarded[domain.CardInstallment]
	table *memInstallments
}

func (g *guardedInstallments) ListByPurchase(ctx context.Context, userID, purchaseID string) ([]*domain.CardInstallment, error) {
	return g.table.ListByPurchase(ctx, userID, purchaseID)
}
