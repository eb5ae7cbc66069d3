// Package operations runs a merge as a fixed sequence of steps:
//
//	discover -> extract -> consolidate -> write
//
// Each step gets a StepState and an OpenTelemetry span. Extraction failures
// are isolated per workbook: they are logged, reported in the Summary and
// never stop the run. Consolidation and write failures are fatal and come
// back as an *OperationError whose cause is the application error raised by
// the failing component, so errors.IsType style checks still see the SCHEMA
// or STORAGE type underneath.
//
// Example usage:
//
//	merger := operations.NewMerger(cfg.Merge, logger, metrics)
//	summary, err := merger.Run(ctx)
//	if err != nil {
//	    // fatal, exit non-zero
//	}
//	if !summary.OutputWritten {
//	    // nothing could be read
//	}
package operations
