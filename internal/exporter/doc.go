// Package exporter writes the consolidated table produced by a merge run.
//
// WorkbookWriter picks the output format from the destination extension:
// .xlsx/.xlsm go through excelize as a single sheet with a header row and
// no index column; .csv goes through CSVWriter, which prefixes a UTF-8 BOM
// so Excel opens it with the right encoding.
//
// Example usage:
//
//	writer := exporter.NewWorkbookWriter("Sheet1", logger)
//	if err := writer.Write("out/merged.xlsx", table); err != nil {
//	    // STORAGE error, fatal for the run
//	}
package exporter
