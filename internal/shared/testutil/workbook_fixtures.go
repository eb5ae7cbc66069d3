package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// SheetRows is the content of one sheet, row-major starting at A1.
// nil cells are left unset.
type SheetRows [][]interface{}

// WriteWorkbook saves a workbook with the given sheets at path. Sheets are
// created in the given order; the default sheet takes the first name.
func WriteWorkbook(t *testing.T, path string, order []string, sheets map[string]SheetRows) string {
	t.Helper()

	require := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("building workbook %s: %v", path, err)
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			require(f.SetSheetName(f.GetSheetName(0), name))
		} else {
			_, err := f.NewSheet(name)
			require(err)
		}

		for r, row := range sheets[name] {
			for c, val := range row {
				if val == nil {
					continue
				}
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				require(err)
				require(f.SetCellValue(name, cell, val))
			}
		}
	}

	require(os.MkdirAll(filepath.Dir(path), 0755))
	require(f.SaveAs(path))
	return path
}

// WriteSingleSheet is WriteWorkbook for the common one-sheet case
func WriteSingleSheet(t *testing.T, path, sheet string, rows SheetRows) string {
	t.Helper()
	return WriteWorkbook(t, path, []string{sheet}, map[string]SheetRows{sheet: rows})
}

// ReportRows builds a sheet with skip filler rows, a header and data rows,
// the layout of the reports being merged.
func ReportRows(skip int, header []string, data ...[]interface{}) SheetRows {
	rows := make(SheetRows, 0, skip+1+len(data))
	for i := 0; i < skip; i++ {
		rows = append(rows, []interface{}{"Report title"})
	}
	h := make([]interface{}, len(header))
	for i, name := range header {
		h[i] = name
	}
	rows = append(rows, h)
	return append(rows, data...)
}

// ReadSheet returns the formatted rows of a sheet in a saved workbook
func ReadSheet(t *testing.T, path, sheet string) [][]string {
	t.Helper()

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("reading sheet %s of %s: %v", sheet, path, err)
	}
	return rows
}
