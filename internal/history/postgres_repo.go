package history

import (
	"context"
	"fmt"
	"time"

	"bookshelf/internal/platform/postgres"
)

type PostgresRepo struct {
	db      postgres.Querier
	timeout time.Duration
}

func NewPostgresRepo(db postgres.Querier, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return postgres.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) Recent(ctx context.Context, ownerID string, limit int) ([]Entry, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, query, created_at
		FROM search_history
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("history recent: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Query, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("history recent: scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history recent: %w", err)
	}
	return entries, nil
}

func (r *PostgresRepo) Insert(ctx context.Context, ownerID, query string, at time.Time) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO search_history (user_id, query, created_at)
		VALUES ($1, $2, $3)`, ownerID, query, at)
	if err != nil {
		return fmt.Errorf("history insert: %w", err)
	}
	return nil
}

func (r *PostgresRepo) IDsNewestFirst(ctx context.Context, ownerID string) ([]int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id
		FROM search_history
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("history ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("history ids: scan: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history ids: %w", err)
	}
	return ids, nil
}

func (r *PostgresRepo) DeleteByIDs(ctx context.Context, ownerID string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		DELETE FROM search_history
		WHERE user_id = $1 AND id = ANY($2)`, ownerID, ids)
	if err != nil {
		return fmt.Errorf("history delete: %w", err)
	}
	return nil
}

func (r *PostgresRepo) Count(ctx context.Context, ownerID string) (int, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM search_history WHERE user_id = $1`, ownerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("history count: %w", err)
	}
	return n, nil
}
