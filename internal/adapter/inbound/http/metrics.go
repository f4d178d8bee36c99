// Package http provides the HTTP transport adapter for the decision API.
package http

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the PDP. Pass to components
// that need to record metrics.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	DecisionsTotal   *prometheus.CounterVec
	DecisionDuration prometheus.Histogram
	CacheHitsTotal   prometheus.Counter
}

// NewMetrics creates and registers all metrics with the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sentinelpdp",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests processed",
			},
			[]string{"path", "status"},
		),
		RequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "sentinelpdp",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"path"},
		),
		DecisionsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sentinelpdp",
				Name:      "decisions_total",
				Help:      "Total authorization decisions by outcome",
			},
			[]string{"decision"},
		),
		DecisionDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "sentinelpdp",
				Name:      "decision_duration_seconds",
				Help:      "Policy evaluation duration in seconds",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
		),
		CacheHitsTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "sentinelpdp",
				Name:      "decision_cache_hits_total",
				Help:      "Total decisions served from the result cache",
			},
		),
	}
}

// ObserveDecision implements service.DecisionObserver.
func (m *Metrics) ObserveDecision(decision string, cached bool, duration time.Duration) {
	m.DecisionsTotal.WithLabelValues(decision).Inc()
	m.DecisionDuration.Observe(duration.Seconds())
	if cached {
		m.CacheHitsTotal.Inc()
	}
}
