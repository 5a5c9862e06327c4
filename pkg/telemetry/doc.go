// Package telemetry wires OpenTelemetry tracing, OpenTelemetry meters and a
// Prometheus registry for oxy.
//
// Evaluations are reported through Metrics, which satisfies the evaluator's
// recorder interface and fans each observation out to both backends. The
// Prometheus registry is served over HTTP by the watch command.
package telemetry
