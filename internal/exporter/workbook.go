package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "xlmerge/internal/errors"
	"xlmerge/pkg/contracts/domain"
)

// DefaultSheet is the sheet name used when none is configured
const DefaultSheet = "Sheet1"

// WorkbookWriter writes a consolidated table to a single output file
type WorkbookWriter struct {
	sheet  string
	csv    *CSVWriter
	logger *slog.Logger
}

// NewWorkbookWriter creates a writer that puts the table on the named sheet
func NewWorkbookWriter(sheet string, logger *slog.Logger) *WorkbookWriter {
	if sheet == "" {
		sheet = DefaultSheet
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "writer"))
	return &WorkbookWriter{
		sheet:  sheet,
		csv:    NewCSVWriter(logger),
		logger: logger,
	}
}

// Write serializes the table to path, choosing the format from the
// extension. Any existing file is replaced; a failure part-way can leave a
// partial file behind.
func (w *WorkbookWriter) Write(path string, table *domain.ConsolidatedTable) error {
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		err = w.writeWorkbook(path, table)
	case ".csv":
		err = w.writeCSV(path, table)
	default:
		return apperrors.NewStorageError(
			fmt.Sprintf("unsupported output format %q", filepath.Ext(path)), nil).
			WithContext("file", path)
	}
	if err != nil {
		return apperrors.NewStorageError("failed to write output", err).
			WithContext("file", path)
	}

	w.logger.Info("Output written",
		slog.String("file", path),
		slog.Int("rows", table.Len()),
		slog.Int("columns", len(table.Columns)))
	return nil
}

func (w *WorkbookWriter) writeWorkbook(path string, table *domain.ConsolidatedTable) error {
	f := excelize.NewFile()
	defer f.Close()

	if w.sheet != DefaultSheet {
		if err := f.SetSheetName(DefaultSheet, w.sheet); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	header := make([]interface{}, len(table.Columns))
	for i, col := range table.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(w.sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for r, row := range table.Rows {
		for c, v := range row {
			if v.IsEmpty() {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(w.sheet, cell, v.Interface()); err != nil {
				return fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return f.SaveAs(path)
}

func (w *WorkbookWriter) writeCSV(path string, table *domain.ConsolidatedTable) error {
	records := make([][]string, len(table.Rows))
	for i, row := range table.Rows {
		record := make([]string, len(row))
		for j, v := range row {
			record[j] = v.String()
		}
		records[i] = record
	}
	return w.csv.WriteSimpleCSV(path, table.Columns, records)
}
