package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"bookshelf/internal/platform/postgres"
)

type PostgresRepo struct {
	db      postgres.Querier
	timeout time.Duration
}

func NewPostgresRepo(db postgres.Querier, timeout time.Duration) *PostgresRepo {
	if timeout <= 0 {
		timeout = postgres.DefaultQueryTimeout
	}
	return &PostgresRepo{db: db, timeout: timeout}
}

const userColumns = `id, email, alias, password_hash, created_at, updated_at`

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if postgres.IsNoRows(err) || postgres.IsInvalidInput(err) {
		return ErrNotFound
	}
	if postgres.IsUniqueViolation(err) {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && strings.Contains(pgErr.ConstraintName, "alias") {
			return ErrAliasTaken
		}
		return ErrEmailTaken
	}
	return err
}

func (r *PostgresRepo) Create(ctx context.Context, u *User) error {
	const query = `
	INSERT INTO users (email, alias, password_hash)
	VALUES ($1, $2, $3)
	RETURNING id, created_at, updated_at
	`
	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()

	err := r.db.QueryRow(ctx, query, u.Email, u.Alias, u.PasswordHash).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", mapError(err))
	}
	return nil
}

func (r *PostgresRepo) getOne(ctx context.Context, where string, arg any) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where + ` LIMIT 1`
	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()

	var u User
	err := r.db.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Email, &u.Alias, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return User{}, mapError(err)
	}
	return u, nil
}

func (r *PostgresRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.getOne(ctx, `lower(email) = lower($1)`, email)
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (User, error) {
	return r.getOne(ctx, `id = $1`, id)
}

func (r *PostgresRepo) exists(ctx context.Context, where string, arg any) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE ` + where + `)`
	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()

	var ok bool
	if err := r.db.QueryRow(ctx, query, arg).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (r *PostgresRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `lower(email) = lower($1)`, email)
}

func (r *PostgresRepo) AliasExists(ctx context.Context, alias string) (bool, error) {
	return r.exists(ctx, `alias = $1`, alias)
}
