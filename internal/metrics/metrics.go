package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the prometheus collectors of the service
type Metrics struct {
	IngestionRuns          *prometheus.CounterVec
	MenusUpserted          prometheus.Counter
	MenusRejected          prometheus.Counter
	MenusDeleted           prometheus.Counter
	AdvisorPicks           *prometheus.CounterVec
	RecommendationsServed  prometheus.Histogram
	CircuitBreakerState    *prometheus.GaugeVec
	CircuitBreakerRequests *prometheus.CounterVec
	HTTPRequests           *prometheus.CounterVec
	HTTPDuration           *prometheus.HistogramVec
}

// New registers all collectors on reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		IngestionRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dining_ingestion_runs_total",
				Help: "Total number of ingestion runs by outcome",
			},
			[]string{"result"}, // "fetched", "skipped", "failed"
		),
		MenusUpserted: factory.NewCounter(prometheus.CounterOpts{
			Name: "dining_menus_upserted_total",
			Help: "Total number of menus written by ingestion",
		}),
		MenusRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "dining_menus_rejected_total",
			Help: "Total number of menus rejected by validation",
		}),
		MenusDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "dining_menus_deleted_total",
			Help: "Total number of past menus removed by cleanup",
		}),
		AdvisorPicks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dining_advisor_picks_total",
				Help: "Total number of meal picks by source",
			},
			[]string{"source"}, // "ai", "fallback"
		),
		RecommendationsServed: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "dining_recommendations_per_request",
			Help:    "Number of recommendations returned per request",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		}),
		CircuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
			},
			[]string{"name"},
		),
		CircuitBreakerRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "circuit_breaker_requests_total",
				Help: "Requests through a circuit breaker by result",
			},
			[]string{"name", "result"}, // "success", "failure", "rejected"
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "api_requests_total",
				Help: "Total number of API requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "api_request_duration_seconds",
				Help:    "API request latency distribution",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
	}
}

// NewNop returns collectors bound to a private registry. Used by tests and
// by components constructed without metrics.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
