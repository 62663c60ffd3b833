package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

const userQueryTimeout = 3 * time.Second

const userColumns = "id, email, password_hash, timezone, sfx_enabled, created_at, updated_at"

type PostgresUserRepository struct {
	db sqlx.ExtContext
}

var _ domain.UserRepository = (*PostgresUserRepository)(nil)

func NewPostgresUserRepository(db sqlx.ExtContext) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, userQueryTimeout)
	defer cancel()

	query := `INSERT INTO users (` + userColumns + `)
        VALUES (:id, :email, :password_hash, :timezone, :sfx_enabled, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, r.db, query, user); err != nil {
		if pgCode(err) == codeUniqueViolation {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *PostgresUserRepository) getBy(ctx context.Context, column, value string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, userQueryTimeout)
	defer cancel()

	query := fmt.Sprintf("SELECT %s FROM users WHERE %s = $1", userColumns, column)

	var user domain.User
	if err := sqlx.GetContext(ctx, r.db, &user, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by %s: %w", column, err)
	}
	return &user, nil
}
