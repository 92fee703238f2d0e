package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"bookshelf/internal/platform/metrics"
	"bookshelf/internal/reconcile"
)

// ResultCache is a byte-level TTL cache.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte) error
}

// CachedCatalog is a cache-aside decorator. Only raw candidates are cached;
// ownership is computed on every request. Cache failures count as misses.
type CachedCatalog struct {
	next    Catalog
	cache   ResultCache
	log     *slog.Logger
	metrics *metrics.Metrics
}

func NewCachedCatalog(next Catalog, cache ResultCache, log *slog.Logger, m *metrics.Metrics) *CachedCatalog {
	return &CachedCatalog{next: next, cache: cache, log: log, metrics: m}
}

// cacheKey format: catalog:search:{query}:{limit}:{offset}
func cacheKey(query string, limit, offset int) string {
	return fmt.Sprintf("catalog:search:%s:%d:%d", strings.ToLower(query), limit, offset)
}

func (c *CachedCatalog) Search(ctx context.Context, query string, limit, offset int) ([]reconcile.CandidateRecord, error) {
	key := cacheKey(query, limit, offset)

	raw, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.log.WarnContext(ctx, "catalog cache get failed", "key", key, "error", err)
	}
	if ok {
		var cached []reconcile.CandidateRecord
		if err := json.Unmarshal(raw, &cached); err == nil {
			c.metrics.ObserveCache(true)
			return cached, nil
		}
		c.log.WarnContext(ctx, "catalog cache entry corrupt", "key", key)
	}
	c.metrics.ObserveCache(false)

	records, err := c.next.Search(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}

	if val, err := json.Marshal(records); err == nil {
		if err := c.cache.Set(ctx, key, val); err != nil {
			c.log.WarnContext(ctx, "catalog cache set failed", "key", key, "error", err)
		}
	}
	return records, nil
}
