package infrastructure

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// RunMetrics holds the counters of a single merge run. Instruments are
// recorded through OpenTelemetry and collected into a private Prometheus
// registry, which is written out in the node-exporter textfile format.
// Recording on a nil *RunMetrics is a no-op.
type RunMetrics struct {
	registry *prometheus.Registry
	provider *sdkmetric.MeterProvider

	filesDiscovered   metric.Int64Counter
	filesExtracted    metric.Int64Counter
	filesFailed       metric.Int64Counter
	rowsRead          metric.Int64Counter
	rowsWritten       metric.Int64Counter
	duplicatesRemoved metric.Int64Counter
	runDuration       metric.Float64Gauge
	lastSuccess       metric.Float64Gauge
}

// NewRunMetrics creates the run instruments on a fresh registry
func NewRunMetrics(version, runID string) (*RunMetrics, error) {
	registry := prometheus.NewRegistry()

	exporter, err := otelprom.New(
		otelprom.WithRegisterer(registry),
		otelprom.WithoutTargetInfo(),
		otelprom.WithoutScopeInfo(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(newResource(version, runID)),
	)
	meter := provider.Meter(MeterName, metric.WithInstrumentationVersion(version))

	m := &RunMetrics{registry: registry, provider: provider}

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.filesDiscovered, "xlmerge_files_discovered", "Workbooks matched by discovery"},
		{&m.filesExtracted, "xlmerge_files_extracted", "Workbooks whose region was read"},
		{&m.filesFailed, "xlmerge_files_failed", "Workbooks skipped because extraction failed"},
		{&m.rowsRead, "xlmerge_rows_read", "Data rows read from all workbooks"},
		{&m.rowsWritten, "xlmerge_rows_written", "Rows in the output after deduplication"},
		{&m.duplicatesRemoved, "xlmerge_duplicates_removed", "Rows dropped as duplicates"},
	}
	for _, c := range counters {
		if *c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc)); err != nil {
			return nil, err
		}
	}

	if m.runDuration, err = meter.Float64Gauge("xlmerge_run_duration_seconds",
		metric.WithDescription("Wall time of the last run")); err != nil {
		return nil, err
	}
	if m.lastSuccess, err = meter.Float64Gauge("xlmerge_last_success_timestamp_seconds",
		metric.WithDescription("Unix time of the last successful run")); err != nil {
		return nil, err
	}

	return m, nil
}

// Registry exposes the registry the instruments are collected into
func (m *RunMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// FilesDiscovered records the discovery result
func (m *RunMetrics) FilesDiscovered(ctx context.Context, n int) {
	if m == nil {
		return
	}
	m.filesDiscovered.Add(ctx, int64(n))
}

// FileExtracted records one successfully read workbook
func (m *RunMetrics) FileExtracted(ctx context.Context, rows int) {
	if m == nil {
		return
	}
	m.filesExtracted.Add(ctx, 1)
	m.rowsRead.Add(ctx, int64(rows))
}

// FileFailed records one workbook skipped after an extraction error
func (m *RunMetrics) FileFailed(ctx context.Context) {
	if m == nil {
		return
	}
	m.filesFailed.Add(ctx, 1)
}

// Consolidated records the output size and the rows dropped as duplicates
func (m *RunMetrics) Consolidated(ctx context.Context, rows, duplicates int) {
	if m == nil {
		return
	}
	m.rowsWritten.Add(ctx, int64(rows))
	m.duplicatesRemoved.Add(ctx, int64(duplicates))
}

// RunFinished records the run duration, and the finish time when it succeeded
func (m *RunMetrics) RunFinished(ctx context.Context, elapsed time.Duration, succeeded bool, now time.Time) {
	if m == nil {
		return
	}
	m.runDuration.Record(ctx, elapsed.Seconds())
	if succeeded {
		m.lastSuccess.Record(ctx, float64(now.Unix()))
	}
}

// WriteTextfile writes the current values to path
func (m *RunMetrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

// Shutdown releases the meter provider
func (m *RunMetrics) Shutdown(ctx context.Context) error {
	return m.provider.Shutdown(ctx)
}
