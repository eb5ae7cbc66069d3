// Package dataprocessing turns source workbooks into one consolidated table.
//
// # Components
//
// 1. Extractor: reads a fixed region of a named sheet into a RecordSet
// 2. Consolidate: concatenates record sets, projects them onto the retained
// columns and removes duplicate rows
//
// # Usage
//
//	extractor := dataprocessing.NewExtractor(dataprocessing.ExtractOptions{
//	    SheetName: "Reg",
//	    SkipRows:  8,
//	    RowCount:  50,
//	}, logger)
//
//	rs, err := extractor.Extract("sales-july-2024.xlsm")
//	if err != nil {
//	    // the caller logs and drops this file
//	}
//
//	table, err := dataprocessing.Consolidate(sets, []string{"Column 1", "Column 2"})
//
// # Data Flow
//
//	Workbook → Extractor → RecordSet → Consolidate → ConsolidatedTable
//
// # Region Semantics
//
// SkipRows rows are skipped, the next row is the header and up to RowCount
// rows after it are data. Cells keep their type: text, number, bool, date
// (numeric cells with a date number format) or empty.
//
// # Error Handling
//
// Extraction errors are PARSING or NOT_FOUND application errors carrying the
// file path. A record set missing a retained column makes Consolidate fail
// with a SCHEMA error; there is no per-row recovery.
package dataprocessing
