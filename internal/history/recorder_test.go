package history

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf/internal/platform/logger"
	"bookshelf/internal/platform/metrics"
)

type blockingWriter struct {
	mu      sync.Mutex
	release chan struct{}
	calls   []string
	ctxErrs []error
}

func (w *blockingWriter) Record(ctx context.Context, ownerID, query string) {
	if w.release != nil {
		<-w.release
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls = append(w.calls, ownerID+":"+query)
	w.ctxErrs = append(w.ctxErrs, ctx.Err())
}

func TestRecorder_DetachedFromRequestContext(t *testing.T) {
	w := &blockingWriter{}
	r := NewRecorder(w, 4, time.Second, logger.Discard(), nil)

	reqCtx, cancel := context.WithCancel(context.Background())
	cancel()

	r.Submit(reqCtx, "u1", "dune")
	require.NoError(t, r.Wait(context.Background()))

	assert.Equal(t, []string{"u1:dune"}, w.calls)
	assert.NoError(t, w.ctxErrs[0])
}

func TestRecorder_DropsWhenSaturated(t *testing.T) {
	w := &blockingWriter{release: make(chan struct{})}
	m := metrics.New(nil)
	r := NewRecorder(w, 1, time.Second, logger.Discard(), m)

	r.Submit(context.Background(), "u1", "first")
	r.Submit(context.Background(), "u1", "second")

	close(w.release)
	require.NoError(t, r.Wait(context.Background()))

	assert.Equal(t, []string{"u1:first"}, w.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HistoryWrites.WithLabelValues(metrics.HistoryDropped)))
}

func TestRecorder_CloseRejectsNewWrites(t *testing.T) {
	w := &blockingWriter{}
	r := NewRecorder(w, 2, time.Second, logger.Discard(), nil)

	r.Submit(context.Background(), "u1", "before")
	require.NoError(t, r.Close(context.Background()))
	r.Submit(context.Background(), "u1", "after")

	assert.Equal(t, []string{"u1:before"}, w.calls)
}

func TestRecorder_WaitHonoursDeadline(t *testing.T) {
	w := &blockingWriter{release: make(chan struct{})}
	r := NewRecorder(w, 1, time.Second, logger.Discard(), nil)
	r.Submit(context.Background(), "u1", "stuck")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Wait(ctx), context.DeadlineExceeded)

	close(w.release)
	require.NoError(t, r.Wait(context.Background()))
}

func TestRecorder_WithCache(t *testing.T) {
	store := &memStore{}
	c := newTestCache(store)
	r := NewRecorder(c, 4, time.Second, logger.Discard(), nil)

	r.Submit(context.Background(), "u1", "dune")
	require.NoError(t, r.Wait(context.Background()))

	n, err := store.Count(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
