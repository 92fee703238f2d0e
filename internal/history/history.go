// Package history keeps a small, per-owner list of recent search queries.
package history

import (
	"context"
	"time"
)

// Defaults used when the configuration leaves the bounds unset.
const (
	DefaultMaxHistory  = 10
	DefaultDedupWindow = 5
)

// Entry is one retained search query. Entries are never updated.
type Entry struct {
	ID        int64     `json:"id"`
	OwnerID   string    `json:"-"`
	Query     string    `json:"query"`
	CreatedAt time.Time `json:"created_at"`
}

type Stats struct {
	Total int    `json:"total"`
	Last  *Entry `json:"last,omitempty"`
}

// Store persists history entries. Every call is scoped to one owner.
type Store interface {
	// Recent returns at most limit entries, newest first.
	Recent(ctx context.Context, ownerID string, limit int) ([]Entry, error)
	Insert(ctx context.Context, ownerID, query string, at time.Time) error
	// IDsNewestFirst returns the ids of every retained entry, newest first.
	IDsNewestFirst(ctx context.Context, ownerID string) ([]int64, error)
	DeleteByIDs(ctx context.Context, ownerID string, ids []int64) error
	Count(ctx context.Context, ownerID string) (int, error)
}
