package auth

import (
	"context"
	"time"

	"bookshelf/internal/user"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=auth

type UserStore interface {
	Register(ctx context.Context, email, alias, passwordHash string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

// Blacklist remembers revoked token ids until they would have expired anyway.
type Blacklist interface {
	Add(ctx context.Context, jti, userID string, expiresAt time.Time) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
	PurgeExpired(ctx context.Context) (int64, error)
}
