package user

import (
	"errors"
	"time"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
	ErrAliasTaken = errors.New("alias already in use")
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Alias        string    `json:"alias"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
