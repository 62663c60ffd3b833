package domain

import (
	"context"
	"time"
)

// Repository is the typed CRUD port for one record kind. Implementations
// scope List and Filter to a single owner and hide soft-deleted rows.
type Repository[T any] interface {
	// Create persists a new record.
	Create(ctx context.Context, record *T) error

	// GetByID retrieves an active record by its identifier.
	GetByID(ctx context.Context, id string) (*T, error)

	// List returns every active record owned by userID.
	List(ctx context.Context, userID string) ([]*T, error)

	// Filter returns the records of userID for which keep returns true.
	Filter(ctx context.Context, userID string, keep func(*T) bool) ([]*T, error)

	// Update persists a modified record. Implementations must check the
	// version (optimistic locking) and bump it on success.
	Update(ctx context.Context, record *T) error

	// Delete removes a record from active views.
	Delete(ctx context.Context, id string) error
}

type (
	HabitRepository            = Repository[Habit]
	TaskRepository             = Repository[Task]
	GoalRepository             = Repository[Goal]
	MilestoneRepository        = Repository[Milestone]
	CardPurchaseRepository     = Repository[CardPurchase]
	RecurringExpenseRepository = Repository[RecurringExpense]
)

type HabitCompletionRepository interface {
	Repository[HabitCompletion]

	// FindByHabitDate returns the record of habitID on the calendar day of
	// date, or nil when there is none.
	FindByHabitDate(ctx context.Context, userID, habitID string, date time.Time) (*HabitCompletion, error)
}

type CardInstallmentRepository interface {
	Repository[CardInstallment]

	// ListByPurchase returns the active schedule of purchaseID ordered by
	// installment number.
	ListByPurchase(ctx context.Context, userID, purchaseID string) ([]*CardInstallment, error)
}

// LedgerRepository is the append-only XP store. There is no update and no
// delete.
type LedgerRepository interface {
	Append(ctx context.Context, tx *XPTransaction) error

	// ListByUser returns transactions in [from, to] ordered by creation
	// time. Zero bounds are open.
	ListByUser(ctx context.Context, userID string, from, to time.Time) ([]*XPTransaction, error)

	SumByUser(ctx context.Context, userID string) (int64, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

// Repositories bundles the ports bound to one unit of work.
type Repositories struct {
	Habits       HabitRepository
	Completions  HabitCompletionRepository
	Tasks        TaskRepository
	Goals        GoalRepository
	Milestones   MilestoneRepository
	Ledger       LedgerRepository
	Purchases    CardPurchaseRepository
	Installments CardInstallmentRepository
	Recurring    RecurringExpenseRepository
}

// UnitOfWork runs a state transition and its ledger append atomically:
// if fn returns an error nothing it wrote is kept.
type UnitOfWork interface {
	// Repos returns repositories for reads outside a transition.
	Repos() Repositories

	Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// TotalCache caches per-user XP totals. Entries are invalidated explicitly
// after every committed ledger append.
type TotalCache interface {
	Get(ctx context.Context, userID string) (int64, bool)
	Set(ctx context.Context, userID string, total int64)
	Invalidate(ctx context.Context, userID string)
}
