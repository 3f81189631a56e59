// Package telemetry wires Prometheus metrics and OpenTelemetry tracing.
//
// Metrics live on a private registry served at /metrics. Tracing is only
// enabled when an OTLP endpoint is configured.
package telemetry
