// Package config provides the configuration value object for xlmerge.
// It is built once at process start and passed explicitly to every
// component; nothing in the module reads configuration as global state.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Default values (lowest priority)
//
// The YAML file is the one named by XLMERGE_CONFIG, or the first of
// xlmerge.yaml and configs/xlmerge.yaml found in the working directory.
//
// # Environment Variables
//
// Variables follow the pattern XLMERGE_<SECTION>_<FIELD>:
//
//	XLMERGE_MERGE_ROOT_DIR=/srv/reports
//	XLMERGE_MERGE_SHEET_NAME=Data
//	XLMERGE_MERGE_COLUMNS="Column 1,Column 2"
//	XLMERGE_LOGGING_OUTPUT=both
//	XLMERGE_TELEMETRY_METRICS_TEXTFILE=/var/lib/node_exporter/xlmerge.prom
//
// # Example File
//
//	merge:
//	  root_dir: C:/Users/me/Documents/Files
//	  must_contain: sales-
//	  extension: .xlsm
//	  sheet_name: Reg
//	  skip_rows: 8
//	  row_count: 50
//	  columns: [Column 1, Column 2, Column 3]
//	  output_path: merged.xlsx
//
// # Validation
//
// Load validates the result with go-playground/validator struct tags and
// returns a CONFIG application error listing the offending fields.
package config
