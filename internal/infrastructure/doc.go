// Package infrastructure carries the ambient plumbing of a merge run: the
// per-run log file, OpenTelemetry tracing and the Prometheus run metrics.
package infrastructure
