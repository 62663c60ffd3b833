package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-progress/internal/adapters/repository/migrations"
	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "pgx"), mock
}

func completionColumns() []string {
	return []string{"id", "user_id", "habit_id", "completion_date", "completed", "xp_earned",
		"version", "created_at", "updated_at", "deleted_at"}
}

func TestPgCode(t *testing.T) {
	assert.Equal(t, "23505", pgCode(&pgconn.PgError{Code: "23505"}))
	assert.Equal(t, "23503", pgCode(fmt.Errorf("wrapped: %w", &pq.Error{Code: "23503"})))
	assert.Equal(t, "", pgCode(errors.New("plain")))
}

func TestPgTable_Create(t *testing.T) {
	t.Run("Success: Should insert meta and table columns", func(t *testing.T) {
		db, mock := newMockDB(t)
		repos := newPostgresRepositories(db)

		c := domain.NewHabitCompletion("habit-1", "user-1", time.Now(), time.Now())
		mock.ExpectExec(`INSERT INTO habit_completions \(id, user_id, version, created_at, updated_at, deleted_at, habit_id, completion_date, completed, xp_earned\)`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repos.Completions.Create(context.Background(), c))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Fail: Should map a unique violation to the table's duplicate error", func(t *testing.T) {
		db, mock := newMockDB(t)
		repos := newPostgresRepositories(db)

		c := domain.NewHabitCompletion("habit-1", "user-1", time.Now(), time.Now())
		mock.ExpectExec("INSERT INTO habit_completions").WillReturnError(&pgconn.PgError{Code: "23505"})

		err := repos.Completions.Create(context.Background(), c)
		assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)
	})
}

func TestPgTable_GetByID(t *testing.T) {
	t.Run("Success: Should scan a row into the record", func(t *testing.T) {
		db, mock := newMockDB(t)
		repos := newPostgresRepositories(db)

		now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
		day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
		mock.ExpectQuery(`SELECT \* FROM habit_completions WHERE id = \$1 AND deleted_at IS NULL`).
			WithArgs("c-1").
			WillReturnRows(sqlmock.NewRows(completionColumns()).
				AddRow("c-1", "user-1", "habit-1", day, true, int64(10), 2, now, now, nil))

		c, err := repos.Completions.GetByID(context.Background(), "c-1")
		require.NoError(t, err)
		assert.Equal(t, "habit-1", c.HabitID)
		assert.Equal(t, int64(10), c.XPEarned)
		assert.Equal(t, 2, c.Version)
		assert.True(t, c.Completed)
	})

	t.Run("Fail: Should return the kind's not-found error", func(t *testing.T) {
		db, mock := newMockDB(t)
		repos := newPostgresRepositories(db)

		mock.ExpectQuery("SELECT").WithArgs("missing").WillReturnRows(sqlmock.NewRows(completionColumns()))

		_, err := repos.Completions.GetByID(context.Background(), "missing")
		assert.ErrorIs(t, err, domain.ErrCompletionNotFound)
	})
}

func TestPgTable_Update(t *testing.T) {
	newTask := func() *domain.Task {
		task, err := domain.NewTask("user-1", domain.TaskFields{Title: "Write report", XPReward: 15}, time.Now())
		require.NoError(t, err)
		return task
	}

	t.Run("Success: Should bump the version", func(t *testing.T) {
		db, mock := newMockDB(t)
		repos := newPostgresRepositories(db)
		task := newTask()

		mock.ExpectExec(`UPDATE tasks SET title = \$1, .* version = version \+ 1 WHERE id = \$\d+ AND version = \$\d+ AND deleted_at IS NULL`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repos.Tasks.Update(context.Background(), task))
		assert.Equal(t, 2, task.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Fail: Should report a version conflict when the row exists", func(t *testing.T) {
		db, mock := newMockDB(t)
		repos := newPostgresRepositories(db)
		task := newTask()

		mock.ExpectExec("UPDATE tasks").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT count\(\*\) FROM tasks`).WithArgs(task.ID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		err := repos.Tasks.Update(context.Background(), task)
		assert.ErrorIs(t, err, domain.ErrVersionConflict)
		assert.Equal(t, 1, task.Version)
	})

	t.Run("Fail: Should report not found when the row is gone", func(t *testing.T) {
		db, mock := newMockDB(t)
		repos := newPostgresRepositories(db)
		task := newTask()

		mock.ExpectExec("UPDATE tasks").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT count\(\*\) FROM tasks`).WithArgs(task.ID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		err := repos.Tasks.Update(context.Background(), task)
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	})
}

func TestPgTable_Delete(t *testing.T) {
	t.Run("Success: Should soft delete regular tables", func(t *testing.T) {
		db, mock := newMockDB(t)
		repos := newPostgresRepositories(db)

		mock.ExpectExec(`UPDATE habits\s+SET deleted_at = NOW\(\)`).WithArgs("h-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repos.Habits.Delete(context.Background(), "h-1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success: Should hard delete completion rows", func(t *testing.T) {
		db, mock := newMockDB(t)
		repos := newPostgresRepositories(db)

		mock.ExpectExec(`DELETE FROM habit_completions WHERE id = \$1`).WithArgs("c-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repos.Completions.Delete(context.Background(), "c-1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Fail: Should return not found when nothing was deleted", func(t *testing.T) {
		db, mock := newMockDB(t)
		repos := newPostgresRepositories(db)

		mock.ExpectExec("UPDATE goals").WithArgs("g-1").WillReturnResult(sqlmock.NewResult(0, 0))

		err := repos.Goals.Delete(context.Background(), "g-1")
		assert.ErrorIs(t, err, domain.ErrGoalNotFound)
	})
}

func TestPgCompletions_FindByHabitDate(t *testing.T) {
	t.Run("Success: Should look the day up by habit and date", func(t *testing.T) {
		db, mock := newMockDB(t)
		repos := newPostgresRepositories(db)

		now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
		day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
		mock.ExpectQuery(`SELECT \* FROM habit_completions\s+WHERE habit_id = \$1 AND completion_date = \$2 AND user_id = \$3 AND deleted_at IS NULL`).
			WithArgs("habit-1", day, "user-1").
			WillReturnRows(sqlmock.NewRows(completionColumns()).
				AddRow("c-1", "user-1", "habit-1", day, true, int64(10), 1, now, now, nil))

		c, err := repos.Completions.FindByHabitDate(context.Background(), "user-1", "habit-1", now)
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, "c-1", c.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success: Should return nil for a day without a record", func(t *testing.T) {
		db, mock := newMockDB(t)
		repos := newPostgresRepositories(db)

		mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows(completionColumns()))

		c, err := repos.Completions.FindByHabitDate(context.Background(), "user-1", "habit-1", time.Now())
		require.NoError(t, err)
		assert.Nil(t, c)
	})

	t.Run("Fail: Should wrap driver errors", func(t *testing.T) {
		db, mock := newMockDB(t)
		repos := newPostgresRepositories(db)

		mock.ExpectQuery("SELECT").WillReturnError(errors.New("connection reset"))

		_, err := repos.Completions.FindByHabitDate(context.Background(), "user-1", "habit-1", time.Now())
		assert.ErrorContains(t, err, "select from habit_completions failed")
	})
}

func TestPgInstallments_ListByPurchase(t *testing.T) {
	db, mock := newMockDB(t)
	repos := newPostgresRepositories(db)

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	cols := []string{"id", "user_id", "purchase_id", "installment_number", "installment_amount",
		"due_date", "month_key", "status", "paid_at", "version", "created_at", "updated_at", "deleted_at"}
	mock.ExpectQuery(`SELECT \* FROM card_installments\s+WHERE purchase_id = \$1 AND user_id = \$2 AND deleted_at IS NULL\s+ORDER BY installment_number ASC`).
		WithArgs("p-1", "user-1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("i-1", "user-1", "p-1", 1, int64(5000), now, "2025-03", "PAID", now, 2, now, now, nil).
			AddRow("i-2", "user-1", "p-1", 2, int64(5000), now.AddDate(0, 1, 0), "2025-04", "OPEN", nil, 1, now, now, nil))

	schedule, err := repos.Installments.ListByPurchase(context.Background(), "user-1", "p-1")
	require.NoError(t, err)
	require.Len(t, schedule, 2)
	assert.Equal(t, domain.InstallmentPaid, schedule[0].Status)
	assert.Equal(t, domain.Cents(5000), schedule[1].InstallmentAmount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLedgerRepository(t *testing.T) {
	t.Run("Success: Should sum with an empty ledger as zero", func(t *testing.T) {
		db, mock := newMockDB(t)
		ledger := NewPostgresLedgerRepository(db)

		mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM xp_transactions`).WithArgs("user-1").
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(int64(0)))

		total, err := ledger.SumByUser(context.Background(), "user-1")
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})

	t.Run("Success: Should bound history by the given range", func(t *testing.T) {
		db, mock := newMockDB(t)
		ledger := NewPostgresLedgerRepository(db)

		from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(0, 1, 0)
		mock.ExpectQuery(`created_at >= \$2 AND created_at <= \$3 ORDER BY created_at ASC`).
			WithArgs("user-1", from, to).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "amount", "source_type", "source_id", "note", "created_at"}).
				AddRow("tx-1", "user-1", int64(10), "habit", "h-1", "Completed habit: Read", from.Add(time.Hour)))

		txs, err := ledger.ListByUser(context.Background(), "user-1", from, to)
		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, domain.SourceHabit, txs[0].SourceType)
	})
}

func TestPostgresUnitOfWork(t *testing.T) {
	t.Run("Success: Should commit when fn succeeds", func(t *testing.T) {
		db, mock := newMockDB(t)
		uow := NewPostgresUnitOfWork(db)

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO xp_transactions").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := uow.Do(context.Background(), func(ctx context.Context, repos domain.Repositories) error {
			tx, err := domain.NewXPTransaction("user-1", domain.AwardInput{Amount: 5, SourceType: domain.SourceCheckin}, time.Now())
			require.NoError(t, err)
			return repos.Ledger.Append(ctx, tx)
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Fail: Should roll back when fn fails", func(t *testing.T) {
		db, mock := newMockDB(t)
		uow := NewPostgresUnitOfWork(db)
		boom := errors.New("boom")

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO xp_transactions").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectRollback()

		err := uow.Do(context.Background(), func(ctx context.Context, repos domain.Repositories) error {
			tx, _ := domain.NewXPTransaction("user-1", domain.AwardInput{Amount: 5, SourceType: domain.SourceCheckin}, time.Now())
			if err := repos.Ledger.Append(ctx, tx); err != nil {
				return err
			}
			return boom
		})

		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func setupTestDB(t *testing.T) *sqlx.DB {
	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		dbUser = "kanso_user"
	}
	dbPass := os.Getenv("DB_PASSWORD")
	if dbPass == "" {
		dbPass = "secret"
	}
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}
	dbPort := os.Getenv("DB_PORT")
	if dbPort == "" {
		dbPort = "5432"
	}
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "kanso_db"
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPass, dbHost, dbPort, dbName)

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		t.Skipf("Skipping integration tests: database connection failed: %v", err)
	}
	require.NoError(t, migrations.Apply(context.Background(), db), "Failed to apply migrations")
	return db
}

func createUserFixture(t *testing.T, db *sqlx.DB) string {
	userID := uuid.NewString()
	now := time.Now().UTC()
	_, err := db.Exec(`INSERT INTO users (id, email, password_hash, created_at, updated_at)
        VALUES ($1, $2, 'hash', $3, $3)`, userID, userID+"@kanso.app", now)
	require.NoError(t, err, "Failed to create user fixture")
	return userID
}

func TestPostgresUnitOfWork_Integration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	uow := NewPostgresUnitOfWork(db)
	userID := createUserFixture(t, db)

	habit, err := domain.NewHabit(userID, domain.HabitFields{Title: "Read", XPReward: 10}, time.Now())
	require.NoError(t, err)
	require.NoError(t, uow.Repos().Habits.Create(ctx, habit))

	day := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)

	t.Run("Success: Should persist completion and ledger row together", func(t *testing.T) {
		err := uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
			c := domain.NewHabitCompletion(habit.ID, userID, day, time.Now())
			if err := c.Complete(10, time.Now()); err != nil {
				return err
			}
			if err := repos.Completions.Create(ctx, c); err != nil {
				return err
			}
			tx, err := domain.NewXPTransaction(userID, domain.AwardInput{Amount: 10, SourceType: domain.SourceHabit, SourceID: habit.ID}, time.Now())
			if err != nil {
				return err
			}
			return repos.Ledger.Append(ctx, tx)
		})
		require.NoError(t, err)

		total, err := uow.Repos().Ledger.SumByUser(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, int64(10), total)
	})

	t.Run("Fail: Should reject a second completion for the same day", func(t *testing.T) {
		err := uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
			tx, _ := domain.NewXPTransaction(userID, domain.AwardInput{Amount: 10, SourceType: domain.SourceHabit, SourceID: habit.ID}, time.Now())
			if err := repos.Ledger.Append(ctx, tx); err != nil {
				return err
			}
			c := domain.NewHabitCompletion(habit.ID, userID, day, time.Now())
			return repos.Completions.Create(ctx, c)
		})
		assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)

		total, err := uow.Repos().Ledger.SumByUser(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, int64(10), total, "the ledger row of the failed transition must be rolled back")
	})

	t.Run("Fail: Should detect a stale version", func(t *testing.T) {
		stale, err := uow.Repos().Habits.GetByID(ctx, habit.ID)
		require.NoError(t, err)

		fresh, err := uow.Repos().Habits.GetByID(ctx, habit.ID)
		require.NoError(t, err)
		fresh.UpdateStreak(1, 1, time.Now())
		require.NoError(t, uow.Repos().Habits.Update(ctx, fresh))

		stale.UpdateStreak(5, 5, time.Now())
		assert.ErrorIs(t, uow.Repos().Habits.Update(ctx, stale), domain.ErrVersionConflict)
	})
}
