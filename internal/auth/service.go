package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bookshelf/internal/platform/crypto"
	"bookshelf/internal/user"
)

type Service struct {
	secret    string
	ttl       time.Duration
	users     UserStore
	blacklist Blacklist
	log       *slog.Logger
	now       func() time.Time
}

func NewService(secret string, ttl time.Duration, users UserStore, blacklist Blacklist, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		secret:    secret,
		ttl:       ttl,
		users:     users,
		blacklist: blacklist,
		log:       log,
		now:       time.Now,
	}
}

func (s *Service) issue(u user.User) (Session, error) {
	token, _, err := crypto.GenerateToken(s.secret, u.ID, u.Alias, s.ttl)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	return Session{Token: token, ExpiresIn: int(s.ttl.Seconds()), User: u}, nil
}

// Register creates the account and signs the caller in. The password must
// already satisfy crypto.ValidatePasswordStrength.
func (s *Service) Register(ctx context.Context, email, password, alias string) (Session, error) {
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.users.Register(ctx, email, alias, hash)
	if err != nil {
		return Session{}, err
	}
	s.log.InfoContext(ctx, "user registered", "user_id", u.ID)
	return s.issue(u)
}

func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Session{}, ErrUnauthorized
		}
		return Session{}, err
	}
	if !crypto.VerifyPassword(u.PasswordHash, password) {
		return Session{}, ErrUnauthorized
	}
	return s.issue(u)
}

// Verify resolves a bearer token to the owner id it was issued for.
func (s *Service) Verify(ctx context.Context, token string) (string, error) {
	claims, err := crypto.ParseToken(s.secret, token)
	if err != nil {
		return "", ErrInvalidCredential
	}
	if claims.ID != "" {
		revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.log.WarnContext(ctx, "token blacklist lookup failed", "error", err)
			return "", ErrInvalidCredential
		}
		if revoked {
			return "", ErrInvalidCredential
		}
	}
	return claims.Sub, nil
}

// Logout revokes token until its natural expiry.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := crypto.ParseToken(s.secret, token)
	if err != nil {
		return ErrInvalidCredential
	}
	if claims.ID == "" {
		return nil
	}

	expiresAt := s.now().Add(s.ttl)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := s.blacklist.Add(ctx, claims.ID, claims.Sub, expiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// PurgeExpired drops blacklist rows whose tokens have expired.
func (s *Service) PurgeExpired(ctx context.Context) {
	n, err := s.blacklist.PurgeExpired(ctx)
	if err != nil {
		s.log.WarnContext(ctx, "token blacklist purge failed", "error", err)
		return
	}
	if n > 0 {
		s.log.DebugContext(ctx, "token blacklist purged", "rows", n)
	}
}
