package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bookshelf/internal/history"
	"bookshelf/internal/platform/metrics"
	"bookshelf/internal/reconcile"
)

// Reconciler marks candidates the owner already holds.
type Reconciler interface {
	Reconcile(ctx context.Context, candidates []reconcile.CandidateRecord, ownerID string) ([]reconcile.AnnotatedRecord, error)
}

// HistoryRecorder accepts a query for detached persistence.
type HistoryRecorder interface {
	Submit(ctx context.Context, ownerID, query string)
}

// HistoryReader serves an owner's retained queries.
type HistoryReader interface {
	Recent(ctx context.Context, ownerID string, limit int) ([]history.Entry, error)
	Stats(ctx context.Context, ownerID string) (history.Stats, error)
}

type Service struct {
	catalog        Catalog
	reconciler     Reconciler
	recorder       HistoryRecorder
	history        HistoryReader
	catalogTimeout time.Duration
	log            *slog.Logger
	metrics        *metrics.Metrics
	now            func() time.Time
}

type Deps struct {
	Catalog        Catalog
	Reconciler     Reconciler
	Recorder       HistoryRecorder
	History        HistoryReader
	CatalogTimeout time.Duration
	Log            *slog.Logger
	Metrics        *metrics.Metrics
}

func NewService(d Deps) *Service {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		catalog:        d.Catalog,
		reconciler:     d.Reconciler,
		recorder:       d.Recorder,
		history:        d.History,
		catalogTimeout: d.CatalogTimeout,
		log:            log,
		metrics:        d.Metrics,
		now:            time.Now,
	}
}

// Search fetches candidates, reconciles them against ownerID's library and,
// for a signed-in owner with at least one result, hands the query to the
// history recorder. An empty ownerID is an anonymous search.
func (s *Service) Search(ctx context.Context, p Params, ownerID string) (Result, error) {
	candidates, err := s.fetch(ctx, p)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Books:     []reconcile.AnnotatedRecord{},
		Total:     len(candidates),
		Query:     p.Query,
		Timestamp: s.now().UTC(),
	}
	if len(candidates) == 0 {
		return res, nil
	}

	books, err := s.reconciler.Reconcile(ctx, candidates, ownerID)
	if err != nil {
		return Result{}, err
	}
	res.Books = books
	s.metrics.ObserveReconciled(countOwned(books), len(books))

	if ownerID != "" && s.recorder != nil {
		s.recorder.Submit(ctx, ownerID, p.Query)
	}
	return res, nil
}

func (s *Service) fetch(ctx context.Context, p Params) ([]reconcile.CandidateRecord, error) {
	if s.catalogTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.catalogTimeout)
		defer cancel()
	}

	candidates, err := s.catalog.Search(ctx, p.Query, p.Limit, p.Offset)
	if err != nil {
		s.metrics.ObserveCatalog("error")
		if errors.Is(err, context.Canceled) && !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: catalog search: %w", ErrUpstreamUnavailable, err)
	}
	s.metrics.ObserveCatalog("ok")
	return candidates, nil
}

// LastSearches returns the owner's most recent queries, newest first.
func (s *Service) LastSearches(ctx context.Context, ownerID string) ([]history.Entry, error) {
	entries, err := s.history.Recent(ctx, ownerID, 0)
	if err != nil {
		return nil, fmt.Errorf("recent searches: %w", err)
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	return entries, nil
}

func (s *Service) Stats(ctx context.Context, ownerID string) (history.Stats, error) {
	st, err := s.history.Stats(ctx, ownerID)
	if err != nil {
		return history.Stats{}, fmt.Errorf("search stats: %w", err)
	}
	return st, nil
}

func countOwned(books []reconcile.AnnotatedRecord) int {
	n := 0
	for _, b := range books {
		if b.Owned {
			n++
		}
	}
	return n
}
