package history

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"bookshelf/internal/platform/metrics"
)

// Writer is the synchronous record operation the Recorder runs in the background.
type Writer interface {
	Record(ctx context.Context, ownerID, query string)
}

// Recorder runs history writes detached from the request that triggered
// them. At most maxInFlight writes run at once; extra submissions are dropped.
type Recorder struct {
	w       Writer
	sem     *semaphore.Weighted
	timeout time.Duration
	log     *slog.Logger
	metrics *metrics.Metrics

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewRecorder(w Writer, maxInFlight int64, timeout time.Duration, log *slog.Logger, m *metrics.Metrics) *Recorder {
	if maxInFlight <= 0 {
		maxInFlight = 1
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Recorder{
		w:       w,
		sem:     semaphore.NewWeighted(maxInFlight),
		timeout: timeout,
		log:     log,
		metrics: m,
	}
}

// Submit schedules a write and returns immediately. Cancellation of ctx does
// not abort the write; request-scoped values are kept.
func (r *Recorder) Submit(ctx context.Context, ownerID, query string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed || !r.sem.TryAcquire(1) {
		r.metrics.ObserveHistory(metrics.HistoryDropped)
		r.log.WarnContext(ctx, "search history write dropped", "user_id", ownerID, "closed", r.closed)
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.sem.Release(1)
		defer func() {
			if rec := recover(); rec != nil {
				r.log.Error("search history write panicked", "user_id", ownerID, "panic", rec)
			}
		}()

		bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()
		r.w.Record(bg, ownerID, query)
	}()
}

// Close stops accepting writes and waits for in-flight ones until ctx ends.
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return r.Wait(ctx)
}

// Wait blocks until all submitted writes finish or ctx ends.
func (r *Recorder) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
