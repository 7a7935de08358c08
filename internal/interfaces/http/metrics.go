package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsRegistry holds the service's Prometheus metrics.
type MetricsRegistry struct {
	registry *prometheus.Registry

	RequestDuration *prometheus.HistogramVec
	RequestsTotal   *prometheus.CounterVec
	ScoresComputed  *prometheus.CounterVec
	IngestionRuns   *prometheus.CounterVec
}

// NewMetricsRegistry creates and registers the service metrics.
func NewMetricsRegistry() *MetricsRegistry {
	m := &MetricsRegistry{
		registry: prometheus.NewRegistry(),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fedscout_http_request_duration_seconds",
				Help:    "HTTP request latency by route and status",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
			},
			[]string{"route", "method", "status"},
		),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fedscout_http_requests_total",
				Help: "HTTP requests by route and status",
			},
			[]string{"route", "method", "status"},
		),
		ScoresComputed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fedscout_scores_computed_total",
				Help: "Scoring computations by kind",
			},
			[]string{"kind"},
		),
		IngestionRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fedscout_ingestion_runs_total",
				Help: "Triggered ingestion jobs by source",
			},
			[]string{"source"},
		),
	}

	m.registry.MustRegister(
		m.RequestDuration,
		m.RequestsTotal,
		m.ScoresComputed,
		m.IngestionRuns,
	)
	return m
}

// Handler serves the /metrics endpoint.
func (m *MetricsRegistry) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
