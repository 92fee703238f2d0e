package user

import (
	"context"
	"fmt"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register stores a new account. Email and alias must both be unused; the
// unique indexes catch whatever slips past the pre-checks.
func (s *Service) Register(ctx context.Context, email, alias, passwordHash string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	alias = strings.TrimSpace(alias)

	taken, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return User{}, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return User{}, ErrEmailTaken
	}

	taken, err = s.repo.AliasExists(ctx, alias)
	if err != nil {
		return User{}, fmt.Errorf("check alias: %w", err)
	}
	if taken {
		return User{}, ErrAliasTaken
	}

	u := &User{Email: email, Alias: alias, PasswordHash: passwordHash}
	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	return *u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.GetByEmail(ctx, strings.TrimSpace(email))
}
