package history

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bookshelf/internal/platform/metrics"
)

// Cache is the bounded, deduplicating history for each owner.
//
// Record is a read-check-write sequence without a transaction. Two
// concurrent calls for the same owner and the same new query can both
// insert; callers accept that approximation.
type Cache struct {
	store       Store
	maxHistory  int
	dedupWindow int
	now         func() time.Time
	log         *slog.Logger
	metrics     *metrics.Metrics
}

type Option func(*Cache)

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

func NewCache(store Store, maxHistory, dedupWindow int, log *slog.Logger, opts ...Option) *Cache {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	if dedupWindow <= 0 {
		dedupWindow = DefaultDedupWindow
	}
	c := &Cache{
		store:       store,
		maxHistory:  maxHistory,
		dedupWindow: dedupWindow,
		now:         time.Now,
		log:         log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Record stores query for ownerID unless it repeats, ignoring case, one of
// the last dedupWindow entries. Failures are logged and never returned.
func (c *Cache) Record(ctx context.Context, ownerID, query string) {
	outcome, err := c.record(ctx, ownerID, query)
	c.metrics.ObserveHistory(outcome)
	if err != nil {
		c.log.WarnContext(ctx, "search history not saved",
			"user_id", ownerID,
			"query", query,
			"error", err,
		)
	}
}

func (c *Cache) record(ctx context.Context, ownerID, query string) (string, error) {
	if ownerID == "" || strings.TrimSpace(query) == "" {
		return metrics.HistorySkipped, nil
	}

	recent, err := c.store.Recent(ctx, ownerID, c.dedupWindow)
	if err != nil {
		return metrics.HistoryFailed, fmt.Errorf("load recent: %w", err)
	}
	for _, e := range recent {
		if strings.EqualFold(e.Query, query) {
			return metrics.HistoryDuplicate, nil
		}
	}

	if err := c.store.Insert(ctx, ownerID, query, c.now()); err != nil {
		return metrics.HistoryFailed, fmt.Errorf("insert: %w", err)
	}

	if err := c.trim(ctx, ownerID); err != nil {
		return metrics.HistoryFailed, fmt.Errorf("trim: %w", err)
	}
	return metrics.HistoryInserted, nil
}

// trim deletes everything past the maxHistory newest entries in one batch.
func (c *Cache) trim(ctx context.Context, ownerID string) error {
	ids, err := c.store.IDsNewestFirst(ctx, ownerID)
	if err != nil {
		return err
	}
	if len(ids) <= c.maxHistory {
		return nil
	}
	return c.store.DeleteByIDs(ctx, ownerID, ids[c.maxHistory:])
}

// Recent returns up to limit entries, newest first. A non-positive limit
// means the dedup window size.
func (c *Cache) Recent(ctx context.Context, ownerID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = c.dedupWindow
	}
	entries, err := c.store.Recent(ctx, ownerID, limit)
	if err != nil {
		return nil, err
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (c *Cache) Stats(ctx context.Context, ownerID string) (Stats, error) {
	total, err := c.store.Count(ctx, ownerID)
	if err != nil {
		return Stats{}, err
	}
	s := Stats{Total: total}
	if total == 0 {
		return s, nil
	}
	last, err := c.store.Recent(ctx, ownerID, 1)
	if err != nil {
		return Stats{}, err
	}
	if len(last) > 0 {
		s.Last = &last[0]
	}
	return s, nil
}
