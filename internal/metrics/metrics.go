// Package metrics defines the Prometheus collectors exported by the ledger.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "splitledger"

// Cache request results.
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

// Metrics holds the ledger collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	EntriesRecorded     *prometheus.CounterVec
	ValidationFailures  *prometheus.CounterVec
	RecomputeDuration   prometheus.Histogram
	CacheRequests       *prometheus.CounterVec
	InvariantViolations *prometheus.CounterVec
	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EntriesRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_recorded_total",
			Help:      "Ledger entries appended, by kind.",
		}, []string{"kind"}),
		ValidationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Rejected entries, by violated rule.",
		}, []string{"rule"}),
		RecomputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recompute_duration_seconds",
			Help:      "Time spent computing balances and simplified debts for one group.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		CacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Computed view cache lookups, by result.",
		}, []string{"result"}),
		InvariantViolations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invariant_violations_total",
			Help:      "Stored logs that failed consistency checks, by kind.",
		}, []string{"kind"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route and status code.",
		}, []string{"route", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	reg.MustRegister(
		m.EntriesRecorded,
		m.ValidationFailures,
		m.RecomputeDuration,
		m.CacheRequests,
		m.InvariantViolations,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// EntryRecorded counts one appended entry.
func (m *Metrics) EntryRecorded(kind string) {
	if m == nil {
		return
	}
	m.EntriesRecorded.WithLabelValues(kind).Inc()
}

// ValidationFailed counts one rejected entry.
func (m *Metrics) ValidationFailed(rule string) {
	if m == nil {
		return
	}
	m.ValidationFailures.WithLabelValues(rule).Inc()
}

// ObserveRecompute records how long one recomputation took.
func (m *Metrics) ObserveRecompute(d time.Duration) {
	if m == nil {
		return
	}
	m.RecomputeDuration.Observe(d.Seconds())
}

// CacheRequest counts one cache lookup.
func (m *Metrics) CacheRequest(result string) {
	if m == nil {
		return
	}
	m.CacheRequests.WithLabelValues(result).Inc()
}

// InvariantViolated counts one failed consistency check.
func (m *Metrics) InvariantViolated(kind string) {
	if m == nil {
		return
	}
	m.InvariantViolations.WithLabelValues(kind).Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Instrument records request count and latency for next under the given route label.
func (m *Metrics) Instrument(route string, next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	labels := prometheus.Labels{"route": route}
	return promhttp.InstrumentHandlerDuration(
		m.HTTPDuration.MustCurryWith(labels),
		promhttp.InstrumentHandlerCounter(m.HTTPRequests.MustCurryWith(labels), next),
	)
}
