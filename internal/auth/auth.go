// Package auth issues and verifies access tokens.
package auth

import (
	"errors"

	"bookshelf/internal/user"
)

var (
	// ErrUnauthorized is returned for a wrong email or password.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredential is returned by Verify for any token that must not
	// be trusted: malformed, expired, badly signed or revoked.
	ErrInvalidCredential = errors.New("invalid credential")
)

// Session is the result of a successful register or login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresIn int       `json:"expires_in"`
	User      user.User `json:"user"`
}
