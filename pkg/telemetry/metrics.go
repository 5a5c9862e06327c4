package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	metricsOnce         sync.Once
	metricsInitErr      error
	evaluationCounter   metric.Int64Counter
	evaluationHistogram metric.Float64Histogram
	reloadCounter       metric.Int64Counter
)

// RecordEvaluation emits the OpenTelemetry counter and latency histogram for
// one evaluation.
func RecordEvaluation(ctx context.Context, outcome string, elapsed time.Duration) {
	if err := ensureMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("oxy.expr.outcome", outcome))
	evaluationCounter.Add(ctx, 1, attrs)
	if elapsed > 0 {
		evaluationHistogram.Record(ctx, float64(elapsed)/float64(time.Millisecond), attrs)
	}
}

// RecordConfigReload counts a configuration reload attempt.
func RecordConfigReload(ctx context.Context, status string) {
	if err := ensureMetrics(); err != nil {
		return
	}
	reloadCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("oxy.config.status", status)))
}

func ensureMetrics() error {
	metricsOnce.Do(func() {
		meter := otel.GetMeterProvider().Meter("oxy.expr")

		evaluationCounter, metricsInitErr = meter.Int64Counter(
			"oxy.expr.evaluations_total",
			metric.WithDescription("Program evaluations partitioned by outcome"),
			metric.WithUnit("{count}"),
		)
		if metricsInitErr != nil {
			return
		}

		evaluationHistogram, metricsInitErr = meter.Float64Histogram(
			"oxy.expr.duration_ms",
			metric.WithDescription("Observed program evaluation latency"),
			metric.WithUnit("ms"),
		)
		if metricsInitErr != nil {
			return
		}

		reloadCounter, metricsInitErr = meter.Int64Counter(
			"oxy.config.reloads_total",
			metric.WithDescription("Configuration reloads partitioned by status"),
			metric.WithUnit("{count}"),
		)
	})

	return metricsInitErr
}

// RecordRunEvent attaches the run identifier and result type to span.
func RecordRunEvent(span trace.Span, runID string, resultType string) {
	if span == nil || !span.IsRecording() {
		return
	}

	attrs := []attribute.KeyValue{attribute.String("oxy.run.id", runID)}
	if resultType != "" {
		attrs = append(attrs, attribute.String("oxy.result.type", resultType))
	}

	span.AddEvent("oxy.run", trace.WithAttributes(attrs...))
}
