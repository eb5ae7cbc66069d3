// Package files provides workbook discovery for xlmerge.
//
// Discovery walks a root directory recursively and returns the files whose
// full path ends with the configured extension, contains the required
// substring and does not contain the temporary-file marker (the "~" of
// office lock files such as "~$report.xlsm").
//
// Example usage:
//
//	discovery := files.NewDiscovery("/path/to/reports", files.Filter{
//	    Extension:   ".xlsm",
//	    MustContain: "sales-",
//	    TempMarker:  "~",
//	}, logger)
//
//	for _, f := range discovery.FindWorkbooks(ctx) {
//	    // Process f.Path
//	}
package files
