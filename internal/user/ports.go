package user

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=user

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	AliasExists(ctx context.Context, alias string) (bool, error)
}
