package dataprocessing

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "xlmerge/internal/errors"
	"xlmerge/pkg/contracts/domain"
)

// ExtractOptions fixes the region read from every workbook
type ExtractOptions struct {
	SheetName string
	SkipRows  int
	RowCount  int
}

// Extractor reads the configured region of a workbook into a RecordSet
type Extractor struct {
	opts   ExtractOptions
	logger *slog.Logger
}

// NewExtractor creates a new extractor
func NewExtractor(opts ExtractOptions, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		opts:   opts,
		logger: logger.With(slog.String("component", "extractor")),
	}
}

// Extract opens the workbook at filePath, skips SkipRows rows of the named
// sheet, takes the next row as the header and reads up to RowCount data rows.
// A sheet shorter than the region yields fewer rows; a missing sheet or an
// unreadable workbook is an error. The file is closed before returning.
func (e *Extractor) Extract(filePath string) (*domain.RecordSet, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open workbook", err).
			WithContext("file", filePath)
	}
	defer f.Close()

	if !hasSheet(f, e.opts.SheetName) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("sheet %q", e.opts.SheetName)).
			WithContext("file", filePath)
	}

	rows, err := f.GetRows(e.opts.SheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read sheet", err).
			WithContext("file", filePath).
			WithContext("sheet", e.opts.SheetName)
	}

	rs := &domain.RecordSet{Source: filePath}

	headerRow := e.opts.SkipRows
	if headerRow >= len(rows) {
		e.logger.Debug("Region starts past the end of the sheet",
			slog.String("file", filePath),
			slog.Int("sheet_rows", len(rows)))
		return rs, nil
	}

	end := headerRow + 1 + e.opts.RowCount
	if end > len(rows) {
		end = len(rows)
	}
	data := rows[headerRow+1 : end]

	width := len(rows[headerRow])
	for _, row := range data {
		if len(row) > width {
			width = len(row)
		}
	}
	rs.Columns = headerNames(rows[headerRow], width)

	cells := newCellReader(f, e.opts.SheetName)
	for i, row := range data {
		record := make(domain.Row, width)
		for c := 0; c < width && c < len(row); c++ {
			if row[c] == "" {
				continue
			}
			v, err := cells.value(c+1, headerRow+2+i, row[c])
			if err != nil {
				return nil, apperrors.NewParsingError("failed to read cell", err).
					WithContext("file", filePath).
					WithContext("sheet", e.opts.SheetName)
			}
			record[c] = v
		}
		rs.Rows = append(rs.Rows, record)
	}

	e.logger.Debug("Region extracted",
		slog.String("file", filePath),
		slog.Int("columns", len(rs.Columns)),
		slog.Int("rows", len(rs.Rows)))

	return rs, nil
}

// hasSheet matches the sheet name exactly; excelize lookups ignore case
func hasSheet(f *excelize.File, name string) bool {
	for _, sheet := range f.GetSheetList() {
		if sheet == name {
			return true
		}
	}
	return false
}

// headerNames turns the header row into unique column names. Empty cells
// become "Unnamed: <index>" and repeats get ".1", ".2" suffixes. A cell
// holding only whitespace is a real name and is kept as is.
func headerNames(header []string, width int) []string {
	names := make([]string, width)
	used := make(map[string]bool, width)
	counts := make(map[string]int, width)

	for i := 0; i < width; i++ {
		name := ""
		if i < len(header) {
			name = header[i]
		}
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}

		if used[name] {
			n := counts[name]
			candidate := fmt.Sprintf("%s.%d", name, n)
			for used[candidate] {
				n++
				candidate = fmt.Sprintf("%s.%d", name, n)
			}
			counts[name] = n + 1
			name = candidate
		} else {
			counts[name] = 1
		}

		used[name] = true
		names[i] = name
	}
	return names
}

// cellReader types raw cell strings using the cell type and number format
type cellReader struct {
	f         *excelize.File
	sheet     string
	date1904  bool
	dateStyle map[int]bool
}

func newCellReader(f *excelize.File, sheet string) *cellReader {
	r := &cellReader{f: f, sheet: sheet, dateStyle: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		r.date1904 = *props.Date1904
	}
	return r
}

func (r *cellReader) value(col, row int, raw string) (domain.Value, error) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return domain.Value{}, err
	}

	typ, err := r.f.GetCellType(r.sheet, cell)
	if err != nil {
		return domain.Value{}, err
	}

	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeError:
		return domain.TextValue(raw), nil
	case excelize.CellTypeBool:
		return domain.BoolValue(raw == "1" || strings.EqualFold(raw, "true")), nil
	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return domain.DateValue(t), nil
		}
		if t, err := time.Parse("2006-01-02T15:04:05", raw); err == nil {
			return domain.DateValue(t), nil
		}
		return domain.TextValue(raw), nil
	}

	num, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return domain.TextValue(raw), nil
	}

	if r.isDate(cell) {
		if t, err := excelize.ExcelDateToTime(num, r.date1904); err == nil {
			return domain.DateValue(t), nil
		}
	}
	return domain.NumberValue(num), nil
}

func (r *cellReader) isDate(cell string) bool {
	styleID, err := r.f.GetCellStyle(r.sheet, cell)
	if err != nil || styleID == 0 {
		return false
	}
	if known, ok := r.dateStyle[styleID]; ok {
		return known
	}

	isDate := false
	if style, err := r.f.GetStyle(styleID); err == nil && style != nil {
		if style.CustomNumFmt != nil {
			isDate = isDateFormatCode(*style.CustomNumFmt)
		} else {
			isDate = builtinDateFormats[style.NumFmt]
		}
	}
	r.dateStyle[styleID] = isDate
	return isDate
}

// builtinDateFormats lists the built-in number format IDs that render dates
// or times, including the East Asian variants.
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	45: true, 46: true, 47: true,
	50: true, 51: true, 52: true, 53: true, 54: true, 55: true, 56: true, 57: true, 58: true,
}

// isDateFormatCode reports whether a custom number format contains date or
// time tokens outside quoted literals and bracketed sections.
func isDateFormatCode(code string) bool {
	var b strings.Builder
	inQuote, inBracket, escaped := false, false, false
	for _, ch := range code {
		switch {
		case escaped:
			escaped = false
		case ch == '\\':
			escaped = true
		case ch == '"':
			inQuote = !inQuote
		case inQuote:
		case ch == '[':
			inBracket = true
		case ch == ']':
			inBracket = false
		case inBracket:
		default:
			b.WriteRune(ch)
		}
	}
	section := strings.SplitN(strings.ToLower(b.String()), ";", 2)[0]
	if section == "general" {
		return false
	}
	return strings.ContainsAny(section, "dmyhs")
}
