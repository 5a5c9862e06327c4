package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Metrics holds the Prometheus metrics for evaluations and config reloads.
type Metrics struct {
	evaluationsTotal   *prometheus.CounterVec
	evaluationDuration *prometheus.HistogramVec
	configReloads      *prometheus.CounterVec
	scopeVars          prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics instance on a private registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oxy_evaluations_total",
				Help: "Total number of program evaluations by outcome",
			},
			[]string{"outcome"},
		),

		evaluationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "oxy_evaluation_duration_seconds",
				Help:    "Program evaluation latency in seconds",
				Buckets: []float64{.0001, .0005, .001, .0025, .005, .01, .025, .05, .1},
			},
			[]string{"outcome"},
		),

		configReloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oxy_config_reloads_total",
				Help: "Total number of configuration reloads by status",
			},
			[]string{"status"},
		),

		scopeVars: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "oxy_scope_vars",
				Help: "Number of variables bound in the evaluation scope",
			},
		),

		registry: registry,
	}

	registry.MustRegister(
		m.evaluationsTotal,
		m.evaluationDuration,
		m.configReloads,
		m.scopeVars,
	)

	return m
}

// ObserveEvaluation records one evaluation in Prometheus and OpenTelemetry.
func (m *Metrics) ObserveEvaluation(outcome string, elapsed time.Duration) {
	m.evaluationsTotal.WithLabelValues(outcome).Inc()
	m.evaluationDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	RecordEvaluation(context.Background(), outcome, elapsed)
}

// RecordConfigReload counts a reload with status "success" or "error".
func (m *Metrics) RecordConfigReload(status string) {
	m.configReloads.WithLabelValues(status).Inc()
	RecordConfigReload(context.Background(), status)
}

// SetScopeVars reports how many variables the scope currently binds.
func (m *Metrics) SetScopeVars(n int) {
	m.scopeVars.Set(float64(n))
}

// Handler returns the Prometheus metrics HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Server builds an HTTP server exposing the registry at path, traced
// with otelhttp.
func (m *Metrics) Server(addr, path string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return &http.Server{
		Addr:              addr,
		Handler:           otelhttp.NewHandler(mux, "oxy.metrics"),
		ReadHeaderTimeout: 5 * time.Second,
	}
}
