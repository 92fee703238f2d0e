package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	m := New(nil)

	m.ObserveHistory(HistoryInserted)
	m.ObserveHistory(HistoryInserted)
	m.ObserveHistory(HistoryDropped)
	m.ObserveCache(true)
	m.ObserveCache(false)
	m.ObserveReconciled(2, 5)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HistoryWrites.WithLabelValues(HistoryInserted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HistoryWrites.WithLabelValues(HistoryDropped)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookupsTotal.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReconciledRecords.WithLabelValues("true")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ReconciledRecords.WithLabelValues("false")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveHistory(HistoryFailed)
		m.ObserveCatalog("ok")
		m.ObserveCache(true)
		m.ObserveReconciled(1, 1)
	})
}

func TestHandler(t *testing.T) {
	m := New(nil)
	m.ObserveCatalog("ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `catalog_requests_total{outcome="ok"} 1`)
}
