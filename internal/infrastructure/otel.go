package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"xlmerge/internal/config"
)

const (
	ServiceName = "xlmerge"
	TracerName  = "xlmerge"
	MeterName   = "xlmerge"
)

// ShutdownFunc flushes and releases telemetry resources
type ShutdownFunc func(ctx context.Context) error

// InitTracing installs the global tracer provider selected by cfg. With the
// "none" exporter the global no-op provider is left in place.
func InitTracing(cfg config.TelemetryConfig, version, runID string, logger *slog.Logger) (ShutdownFunc, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.TraceExporter {
	case "", "none":
		return func(context.Context) error { return nil }, nil
	case "stdout":
	default:
		return nil, fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	var (
		out    io.Writer = stdout
		closer io.Closer
	)
	if cfg.TraceFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.TraceFile), 0755); err != nil {
			return nil, fmt.Errorf("failed to create trace directory: %w", err)
		}
		file, err := os.OpenFile(cfg.TraceFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open trace file: %w", err)
		}
		out, closer = file, file
	}

	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(out),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(newResource(version, runID)),
	)
	otel.SetTracerProvider(tp)

	logger.Debug("Tracing initialized",
		slog.String("exporter", cfg.TraceExporter),
		slog.String("trace_file", cfg.TraceFile))

	return func(ctx context.Context) error {
		var errs []error
		if err := tp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
		if closer != nil {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("trace file close: %w", err))
			}
		}
		return errors.Join(errs...)
	}, nil
}

func newResource(version, runID string) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(version),
		attribute.String("service.instance.id", runID),
	)
}

// Tracer returns the tracer used for merge spans
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// TraceIDFromContext extracts trace ID from context for logging correlation
func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error, options ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.RecordError(err, options...)
	span.SetStatus(codes.Error, err.Error())
}
