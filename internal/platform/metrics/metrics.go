// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// History outcome labels.
const (
	HistoryInserted  = "inserted"
	HistoryDuplicate = "duplicate"
	HistoryFailed    = "failed"
	HistoryDropped   = "dropped"
	HistorySkipped   = "skipped"
)

// Metrics bundles every collector the service records into. Collectors are
// registered on the registry passed to New so tests can use a private one.
type Metrics struct {
	gatherer prometheus.Gatherer

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	CatalogRequestsTotal *prometheus.CounterVec
	CacheLookupsTotal    *prometheus.CounterVec

	ReconciledRecords *prometheus.CounterVec
	HistoryWrites     *prometheus.CounterVec
}

// New registers all collectors on reg. Passing nil uses a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)

	return &Metrics{
		gatherer: reg,
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		}, []string{"method", "route"}),
		CatalogRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_requests_total",
			Help: "External catalog fetches by outcome.",
		}, []string{"outcome"}),
		CacheLookupsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_cache_lookups_total",
			Help: "Catalog result cache lookups by result.",
		}, []string{"result"}),
		ReconciledRecords: f.NewCounterVec(prometheus.CounterOpts{
			Name: "reconciled_records_total",
			Help: "Candidate records annotated by the reconciliation engine.",
		}, []string{"owned"}),
		HistoryWrites: f.NewCounterVec(prometheus.CounterOpts{
			Name: "search_history_writes_total",
			Help: "Search history record attempts by outcome.",
		}, []string{"outcome"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHistory(outcome string) {
	if m == nil {
		return
	}
	m.HistoryWrites.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveCatalog(outcome string) {
	if m == nil {
		return
	}
	m.CatalogRequestsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookupsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveReconciled(owned, total int) {
	if m == nil {
		return
	}
	m.ReconciledRecords.WithLabelValues("true").Add(float64(owned))
	m.ReconciledRecords.WithLabelValues("false").Add(float64(total - owned))
}
