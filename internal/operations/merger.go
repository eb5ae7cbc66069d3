package operations

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"xlmerge/internal/config"
	"xlmerge/internal/dataprocessing"
	"xlmerge/internal/exporter"
	"xlmerge/internal/files"
	"xlmerge/internal/infrastructure"
	"xlmerge/pkg/contracts/domain"
)

// Locator finds the workbooks to merge
type Locator interface {
	FindWorkbooks(ctx context.Context) []files.FileInfo
}

// Extractor reads the configured region of one workbook
type Extractor interface {
	Extract(path string) (*domain.RecordSet, error)
}

// Writer persists the consolidated table
type Writer interface {
	Write(path string, table *domain.ConsolidatedTable) error
}

// ExtractResult is the outcome of reading one workbook. Exactly one of Set
// and Err is set.
type ExtractResult struct {
	Index   int // 1-based position in discovery order
	Path    string
	Size    int64
	ModTime time.Time
	Set     *domain.RecordSet
	Err     error
}

// Summary describes a finished run
type Summary struct {
	Discovered        int
	Succeeded         []ExtractResult
	Failed            []ExtractResult
	RowsRead          int
	RowsWritten       int
	DuplicatesRemoved int
	OutputPath        string
	OutputWritten     bool
	Steps             []*StepState
	Duration          time.Duration
}

// Failures returns the extraction errors of the run in discovery order
func (s *Summary) Failures() *ErrorList {
	list := &ErrorList{}
	for _, r := range s.Failed {
		var opErr *OperationError
		if errors.As(r.Err, &opErr) {
			list.Add(opErr)
		}
	}
	return list
}

// Step returns the state of the step with the given ID, or nil
func (s *Summary) Step(id string) *StepState {
	for _, st := range s.Steps {
		if st.ID == id {
			return st
		}
	}
	return nil
}

// Merger drives one merge run: discover, extract, consolidate, write
type Merger struct {
	cfg       config.MergeConfig
	locator   Locator
	extractor Extractor
	writer    Writer
	metrics   *infrastructure.RunMetrics
	logger    *slog.Logger
}

// NewMerger wires the file locator, extractor and writer described by cfg.
// metrics may be nil.
func NewMerger(cfg config.MergeConfig, logger *slog.Logger, metrics *infrastructure.RunMetrics) *Merger {
	if logger == nil {
		logger = slog.Default()
	}

	filter := files.Filter{
		Extension:   cfg.Extension,
		MustContain: cfg.MustContain,
		TempMarker:  cfg.TempMarker,
	}
	opts := dataprocessing.ExtractOptions{
		SheetName: cfg.SheetName,
		SkipRows:  cfg.SkipRows,
		RowCount:  cfg.RowCount,
	}

	return &Merger{
		cfg:       cfg,
		locator:   files.NewDiscovery(cfg.RootDir, filter, logger),
		extractor: dataprocessing.NewExtractor(opts, logger),
		writer:    exporter.NewWorkbookWriter(cfg.OutputSheet, logger),
		metrics:   metrics,
		logger:    infrastructure.WithComponent(logger, "merger"),
	}
}

// Run executes the merge. Files that cannot be read are logged and skipped.
// When no file could be read a warning is logged, no output is written and
// the error is nil. A schema mismatch, a write failure or cancellation is
// returned as an error; the summary is returned in every case.
func (m *Merger) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	ctx, span := infrastructure.Tracer().Start(ctx, "merge.run", trace.WithAttributes(
		attribute.String("merge.root", m.cfg.RootDir),
		attribute.String("merge.sheet", m.cfg.SheetName),
		attribute.String("merge.output", m.cfg.OutputPath)))
	defer span.End()

	summary := &Summary{OutputPath: m.cfg.OutputPath}
	err := m.run(ctx, summary)
	summary.Duration = time.Since(start)

	m.metrics.RunFinished(ctx, summary.Duration, err == nil, time.Now())
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return summary, err
	}

	span.SetAttributes(
		attribute.Int("merge.files_discovered", summary.Discovered),
		attribute.Int("merge.rows_written", summary.RowsWritten))
	return summary, nil
}

func (m *Merger) run(ctx context.Context, s *Summary) error {
	var found []files.FileInfo
	err := m.step(ctx, s, StepDiscover, func(ctx context.Context, st *StepState) error {
		found = m.locator.FindWorkbooks(ctx)
		s.Discovered = len(found)
		st.SetMetadata("files", len(found))
		m.metrics.FilesDiscovered(ctx, len(found))
		return nil
	})
	if err != nil {
		return err
	}

	err = m.step(ctx, s, StepExtract, func(ctx context.Context, st *StepState) error {
		results, err := m.extractAll(ctx, found)
		if err != nil {
			return err
		}
		m.collect(ctx, s, results)
		st.SetMetadata("succeeded", len(s.Succeeded))
		st.SetMetadata("failed", len(s.Failed))
		return nil
	})
	if err != nil {
		return err
	}

	if len(s.Succeeded) == 0 {
		m.logger.WarnContext(ctx, "No record sets to concatenate",
			slog.Int("discovered", s.Discovered),
			slog.Int("failed", len(s.Failed)))
		for _, id := range []string{StepConsolidate, StepWrite} {
			st := NewStepState(id)
			st.Skip("no record sets")
			s.Steps = append(s.Steps, st)
		}
		return nil
	}

	var table *domain.ConsolidatedTable
	err = m.step(ctx, s, StepConsolidate, func(ctx context.Context, st *StepState) error {
		sets := make([]*domain.RecordSet, len(s.Succeeded))
		for i, r := range s.Succeeded {
			sets[i] = r.Set
		}

		var err error
		table, err = dataprocessing.Consolidate(sets, m.cfg.Columns)
		if err != nil {
			return err
		}
		s.DuplicatesRemoved = table.DuplicatesRemoved
		st.SetMetadata("input_rows", table.InputRows)
		st.SetMetadata("duplicates_removed", table.DuplicatesRemoved)
		return nil
	})
	if err != nil {
		return err
	}

	err = m.step(ctx, s, StepWrite, func(ctx context.Context, st *StepState) error {
		if err := m.writer.Write(m.cfg.OutputPath, table); err != nil {
			return err
		}
		s.OutputWritten = true
		s.RowsWritten = table.Len()
		st.SetMetadata("rows", table.Len())
		m.metrics.Consolidated(ctx, table.Len(), table.DuplicatesRemoved)
		return nil
	})
	if err != nil {
		return err
	}

	m.logger.InfoContext(ctx, "Done",
		slog.Int("count", s.Discovered),
		slog.Int("rows", s.RowsWritten),
		slog.Int("duplicates_removed", s.DuplicatesRemoved),
		slog.String("output", m.cfg.OutputPath))
	return nil
}

// step runs fn under its own span and StepState
func (m *Merger) step(ctx context.Context, s *Summary, id string, fn func(context.Context, *StepState) error) error {
	st := NewStepState(id)
	s.Steps = append(s.Steps, st)

	ctx, span := infrastructure.Tracer().Start(ctx, "merge."+id)
	defer span.End()

	st.Start()
	if err := fn(ctx, st); err != nil {
		var opErr *OperationError
		if !errors.As(err, &opErr) {
			err = NewExecutionError(id, err)
		}
		st.Fail(err)
		infrastructure.RecordError(ctx, err)
		m.logger.ErrorContext(ctx, "Step failed",
			slog.String("step", id),
			slog.String("error", err.Error()))
		return err
	}

	st.Complete()
	m.logger.DebugContext(ctx, "Step completed",
		slog.String("step", id),
		slog.Duration("duration", st.Duration()))
	return nil
}

// extractAll reads every workbook with at most cfg.Workers in flight.
// Results keep discovery order regardless of completion order.
func (m *Merger) extractAll(ctx context.Context, found []files.FileInfo) ([]ExtractResult, error) {
	results := make([]ExtractResult, len(found))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(m.cfg.Workers, 1))
	for i, f := range found {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = m.extractOne(gctx, i+1, f)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, NewCancellationError(StepExtract, err)
	}
	return results, nil
}

func (m *Merger) extractOne(ctx context.Context, index int, f files.FileInfo) ExtractResult {
	ctx, span := infrastructure.Tracer().Start(ctx, "merge.extract.file", trace.WithAttributes(
		attribute.Int("file.index", index),
		attribute.String("file.path", f.Path),
		attribute.Int64("file.size", f.Size)))
	defer span.End()

	result := ExtractResult{Index: index, Path: f.Path, Size: f.Size, ModTime: f.ModTime}
	set, err := m.extractor.Extract(f.Path)
	if err != nil {
		result.Err = NewExtractionError(f.Path, err)
		infrastructure.RecordError(ctx, result.Err)
		return result
	}

	result.Set = set
	span.SetAttributes(attribute.Int("file.rows", set.Len()))
	return result
}

// collect partitions results and logs each one in discovery order
func (m *Merger) collect(ctx context.Context, s *Summary, results []ExtractResult) {
	for _, r := range results {
		if r.Err != nil {
			s.Failed = append(s.Failed, r)
			m.metrics.FileFailed(ctx)
			m.logger.ErrorContext(ctx, "Error processing file",
				slog.String("path", r.Path),
				slog.String("error", reason(r.Err)))
			continue
		}

		s.Succeeded = append(s.Succeeded, r)
		s.RowsRead += r.Set.Len()
		m.metrics.FileExtracted(ctx, r.Set.Len())
		m.logger.InfoContext(ctx, "Processed file",
			slog.Int("index", r.Index),
			slog.String("path", r.Path),
			slog.Int64("size_bytes", r.Size),
			slog.Time("modified", r.ModTime))
	}
}

// reason strips the extraction wrapper so the log shows the underlying cause
func reason(err error) string {
	if cause := errors.Unwrap(err); cause != nil {
		return cause.Error()
	}
	return err.Error()
}
