// Package infrastructure wires logging and telemetry.
//
// Logging is log/slog with a JSON (or text) handler that copies the
// request trace ID from the context onto every record. Telemetry is
// OpenTelemetry: an optional stdout span exporter, and a meter provider
// backed by a Prometheus registry that PrometheusHTTP serves. IngestMetrics
// holds the dataset instruments.
package infrastructure
