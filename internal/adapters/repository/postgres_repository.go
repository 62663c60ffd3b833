package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

var metaColumns = []string{"id", "user_id", "version", "created_at", "updated_at", "deleted_at"}

// pgCode extracts the SQLSTATE from either driver's error type.
func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// pgTable is the Postgres implementation of domain.Repository for one
// table. Rows are soft deleted unless hardDelete is set, and updates are
// guarded by the version column.
type pgTable[T any, P record[T]] struct {
	db         sqlx.ExtContext
	name       string
	columns    []string
	notFound   error
	duplicate  error
	hardDelete bool
}

func (t *pgTable[T, P]) translate(op string, err error) error {
	switch pgCode(err) {
	case codeUniqueViolation:
		return t.duplicate
	case codeForeignKeyViolation:
		return fmt.Errorf("%s %s: referenced record does not exist: %w", op, t.name, err)
	}
	return fmt.Errorf("%s %s failed: %w", op, t.name, err)
}

func (t *pgTable[T, P]) Create(ctx context.Context, rec *T) error {
	cols := append(append([]string{}, metaColumns...), t.columns...)
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (:%s)",
		t.name, strings.Join(cols, ", "), strings.Join(cols, ", :"))

	if _, err := sqlx.NamedExecContext(ctx, t.db, query, rec); err != nil {
		return t.translate("insert into", err)
	}
	return nil
}

func (t *pgTable[T, P]) GetByID(ctx context.Context, id string) (*T, error) {
	query := fmt.Sprintf("SELECT * FROM %s WHERE id = $1 AND deleted_at IS NULL", t.name)

	var rec T
	if err := sqlx.GetContext(ctx, t.db, &rec, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, t.notFound
		}
		return nil, t.translate("select from", err)
	}
	return &rec, nil
}

func (t *pgTable[T, P]) List(ctx context.Context, userID string) ([]*T, error) {
	return t.Filter(ctx, userID, nil)
}

func (t *pgTable[T, P]) Filter(ctx context.Context, userID string, keep func(*T) bool) ([]*T, error) {
	query := fmt.Sprintf(`SELECT * FROM %s
        WHERE user_id = $1 AND deleted_at IS NULL
        ORDER BY created_at ASC, id ASC`, t.name)

	var rows []*T
	if err := sqlx.SelectContext(ctx, t.db, &rows, query, userID); err != nil {
		return nil, t.translate("select from", err)
	}
	if keep == nil {
		return rows, nil
	}

	out := rows[:0]
	for _, rec := range rows {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (t *pgTable[T, P]) Update(ctx context.Context, rec *T) error {
	sets := make([]string, 0, len(t.columns)+2)
	for _, col := range t.columns {
		sets = append(sets, fmt.Sprintf("%s = :%s", col, col))
	}
	sets = append(sets, "updated_at = :updated_at", "version = version + 1")

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = :id AND version = :version AND deleted_at IS NULL",
		t.name, strings.Join(sets, ", "))

	res, err := sqlx.NamedExecContext(ctx, t.db, query, rec)
	if err != nil {
		return t.translate("update", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}

	meta := P(rec).Meta()
	if affected == 0 {
		var count int
		existsQuery := fmt.Sprintf("SELECT count(*) FROM %s WHERE id = $1 AND deleted_at IS NULL", t.name)
		if err := sqlx.GetContext(ctx, t.db, &count, existsQuery, meta.ID); err != nil {
			return fmt.Errorf("existence check failed: %w", err)
		}
		if count == 0 {
			return t.notFound
		}
		return domain.ErrVersionConflict
	}

	meta.Version++
	return nil
}

func (t *pgTable[T, P]) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s
        SET deleted_at = NOW(), updated_at = NOW(), version = version + 1
        WHERE id = $1 AND deleted_at IS NULL`, t.name)
	if t.hardDelete {
		query = fmt.Sprintf("DELETE FROM %s WHERE id = $1", t.name)
	}

	res, err := t.db.ExecContext(ctx, query, id)
	if err != nil {
		return t.translate("delete from", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return t.notFound
	}
	return nil
}

// pgCompletions answers day lookups from uq_habit_completion_day.
type pgCompletions struct {
	*pgTable[domain.HabitCompletion, *domain.HabitCompletion]
}

func (t *pgCompletions) FindByHabitDate(ctx context.Context, userID, habitID string, date time.Time) (*domain.HabitCompletion, error) {
	query := fmt.Sprintf(`SELECT * FROM %s
        WHERE habit_id = $1 AND completion_date = $2 AND user_id = $3 AND deleted_at IS NULL`, t.name)

	var rec domain.HabitCompletion
	if err := sqlx.GetContext(ctx, t.db, &rec, query, habitID, domain.DateOnly(date), userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, t.translate("select from", err)
	}
	return &rec, nil
}

// pgInstallments reads one schedule through uq_installment_number.
type pgInstallments struct {
	*pgTable[domain.CardInstallment, *domain.CardInstallment]
}

func (t *pgInstallments) ListByPurchase(ctx context.Context, userID, purchaseID string) ([]*domain.CardInstallment, error) {
	query := fmt.Sprintf(`SELECT * FROM %s
        WHERE purchase_id = $1 AND user_id = $2 AND deleted_at IS NULL
        ORDER BY installment_number ASC`, t.name)

	var rows []*domain.CardInstallment
	if err := sqlx.SelectContext(ctx, t.db, &rows, query, purchaseID, userID); err != nil {
		return nil, t.translate("select from", err)
	}
	return rows, nil
}

type PostgresLedgerRepository struct {
	db sqlx.ExtContext
}

var _ domain.LedgerRepository = (*PostgresLedgerRepository)(nil)

func NewPostgresLedgerRepository(db sqlx.ExtContext) *PostgresLedgerRepository {
	return &PostgresLedgerRepository{db: db}
}

func (r *PostgresLedgerRepository) Append(ctx context.Context, tx *domain.XPTransaction) error {
	query := `
        INSERT INTO xp_transactions (id, user_id, amount, source_type, source_id, note, created_at)
        VALUES (:id, :user_id, :amount, :source_type, :source_id, :note, :created_at)`

	if _, err := sqlx.NamedExecContext(ctx, r.db, query, tx); err != nil {
		if pgCode(err) == codeUniqueViolation {
			return domain.ErrVersionConflict
		}
		return fmt.Errorf("failed to append xp transaction: %w", err)
	}
	return nil
}

func (r *PostgresLedgerRepository) ListByUser(ctx context.Context, userID string, from, to time.Time) ([]*domain.XPTransaction, error) {
	query := `SELECT id, user_id, amount, source_type, source_id, note, created_at
        FROM xp_transactions WHERE user_id = $1`
	args := []any{userID}

	if !from.IsZero() {
		args = append(args, from)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if !to.IsZero() {
		args = append(args, to)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	query += " ORDER BY created_at ASC, id ASC"

	var txs []*domain.XPTransaction
	if err := sqlx.SelectContext(ctx, r.db, &txs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list xp transactions: %w", err)
	}
	return txs, nil
}

func (r *PostgresLedgerRepository) SumByUser(ctx context.Context, userID string) (int64, error) {
	var total int64
	query := `SELECT COALESCE(SUM(amount), 0) FROM xp_transactions WHERE user_id = $1`
	if err := sqlx.GetContext(ctx, r.db, &total, query, userID); err != nil {
		return 0, fmt.Errorf("failed to sum xp transactions: %w", err)
	}
	return total, nil
}

func newPostgresRepositories(db sqlx.ExtContext) domain.Repositories {
	return domain.Repositories{
		Habits: &pgTable[domain.Habit, *domain.Habit]{
			db:   db,
			name: "habits",
			columns: []string{
				"title", "description", "color", "icon", "xp_reward", "goal_id",
				"current_streak", "longest_streak", "archived_at",
			},
			notFound:  domain.ErrHabitNotFound,
			duplicate: domain.ErrVersionConflict,
		},
		Completions: &pgCompletions{&pgTable[domain.HabitCompletion, *domain.HabitCompletion]{
			db:         db,
			name:       "habit_completions",
			columns:    []string{"habit_id", "completion_date", "completed", "xp_earned"},
			notFound:   domain.ErrCompletionNotFound,
			duplicate:  domain.ErrAlreadyCompleted,
			hardDelete: true,
		}},
		Tasks: &pgTable[domain.Task, *domain.Task]{
			db:   db,
			name: "tasks",
			columns: []string{
				"title", "notes", "xp_reward", "due_date", "completed", "completed_at", "xp_earned",
			},
			notFound:  domain.ErrTaskNotFound,
			duplicate: domain.ErrVersionConflict,
		},
		Goals: &pgTable[domain.Goal, *domain.Goal]{
			db:   db,
			name: "goals",
			columns: []string{
				"title", "goal_type", "current_value", "target_value", "unit", "status",
				"xp_on_complete", "xp_per_progress", "completed_at",
			},
			notFound:  domain.ErrGoalNotFound,
			duplicate: domain.ErrVersionConflict,
		},
		Milestones: &pgTable[domain.Milestone, *domain.Milestone]{
			db:        db,
			name:      "milestones",
			columns:   []string{"goal_id", "title", "xp_reward", "completed", "completed_at"},
			notFound:  domain.ErrMilestoneNotFound,
			duplicate: domain.ErrVersionConflict,
		},
		Ledger: NewPostgresLedgerRepository(db),
		Purchases: &pgTable[domain.CardPurchase, *domain.CardPurchase]{
			db:        db,
			name:      "card_purchases",
			columns:   []string{"description", "total_amount", "installments_total", "first_payment_date"},
			notFound:  domain.ErrPurchaseNotFound,
			duplicate: domain.ErrVersionConflict,
		},
		Installments: &pgInstallments{&pgTable[domain.CardInstallment, *domain.CardInstallment]{
			db:   db,
			name: "card_installments",
			columns: []string{
				"purchase_id", "installment_number", "installment_amount", "due_date",
				"month_key", "status", "paid_at",
			},
			notFound:  domain.ErrInstallmentNotFound,
			duplicate: domain.ErrVersionConflict,
		}},
		Recurring: &pgTable[domain.RecurringExpense, *domain.RecurringExpense]{
			db:   db,
			name: "recurring_expenses",
			columns: []string{
				"group_id", "description", "amount", "frequency", "anchor_date", "anchor_day",
				"sequence", "expense_date", "month_key", "status", "settled_at",
			},
			notFound:  domain.ErrRecurringNotFound,
			duplicate: domain.ErrVersionConflict,
		},
	}
}

// PostgresUnitOfWork runs transitions inside a database transaction.
type PostgresUnitOfWork struct {
	db *sqlx.DB
}

var _ domain.UnitOfWork = (*PostgresUnitOfWork)(nil)

func NewPostgresUnitOfWork(db *sqlx.DB) *PostgresUnitOfWork {
	return &PostgresUnitOfWork{db: db}
}

func (u *PostgresUnitOfWork) Repos() domain.Repositories {
	return newPostgresRepositories(u.db)
}

func (u *PostgresUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos domain.Repositories) error) error {
	tx, err := u.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(ctx, newPostgresRepositories(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
