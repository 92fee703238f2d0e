package auth

import (
	"context"
	"time"

	"bookshelf/internal/platform/postgres"
)

type BlacklistPG struct {
	db      postgres.Querier
	timeout time.Duration
}

func NewBlacklistPG(db postgres.Querier, timeout time.Duration) *BlacklistPG {
	return &BlacklistPG{db: db, timeout: timeout}
}

func (r *BlacklistPG) Add(ctx context.Context, jti, userID string, expiresAt time.Time) error {
	const query = `
	INSERT INTO token_blacklist (jti, user_id, expires_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (jti) DO NOTHING
	`
	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()
	_, err := r.db.Exec(ctx, query, jti, userID, expiresAt)
	return err
}

func (r *BlacklistPG) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	const query = `
	SELECT EXISTS(
		SELECT 1 FROM token_blacklist
		WHERE jti = $1 AND expires_at > now()
	)
	`
	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()
	var exists bool
	err := r.db.QueryRow(ctx, query, jti).Scan(&exists)
	return exists, err
}

func (r *BlacklistPG) PurgeExpired(ctx context.Context) (int64, error) {
	const query = `DELETE FROM token_blacklist WHERE expires_at < now()`
	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()
	tag, err := r.db.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
