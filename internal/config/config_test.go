package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "xlmerge/internal/errors"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "xlmerge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ".xlsm", cfg.Merge.Extension)
	assert.Equal(t, "PLACEHOLDER", cfg.Merge.MustContain)
	assert.Equal(t, "~", cfg.Merge.TempMarker)
	assert.Equal(t, "SHEET_NAME2", cfg.Merge.SheetName)
	assert.Equal(t, 8, cfg.Merge.SkipRows)
	assert.Equal(t, 50, cfg.Merge.RowCount)
	assert.Equal(t, []string{"Column 1", "Column 2", "Column 3"}, cfg.Merge.Columns)
	assert.Equal(t, "Sheet1", cfg.Merge.OutputSheet)
	assert.Equal(t, 1, cfg.Merge.Workers)

	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "file", cfg.Logging.Output)
	assert.Equal(t, "logs", cfg.Logging.Dir)
	assert.Equal(t, "files_merge_script", cfg.Logging.RunName)
	assert.Equal(t, "none", cfg.Telemetry.TraceExporter)

	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		env         map[string]string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "no file uses defaults",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, Default(), cfg)
			},
		},
		{
			name: "file overrides defaults",
			file: `
merge:
  root_dir: /data/reports
  sheet_name: Reg
  skip_rows: 2
  columns: [Code, Name]
logging:
  output: both
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/data/reports", cfg.Merge.RootDir)
				assert.Equal(t, "Reg", cfg.Merge.SheetName)
				assert.Equal(t, 2, cfg.Merge.SkipRows)
				assert.Equal(t, []string{"Code", "Name"}, cfg.Merge.Columns)
				assert.Equal(t, "both", cfg.Logging.Output)
				// untouched keys keep their defaults
				assert.Equal(t, 50, cfg.Merge.RowCount)
				assert.Equal(t, ".xlsm", cfg.Merge.Extension)
			},
		},
		{
			name: "env takes precedence over file",
			file: `
merge:
  sheet_name: FromFile
  row_count: 10
`,
			env: map[string]string{
				"XLMERGE_MERGE_SHEET_NAME": "FromEnv",
				"XLMERGE_MERGE_COLUMNS":    "A, B ,C",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "FromEnv", cfg.Merge.SheetName)
				assert.Equal(t, 10, cfg.Merge.RowCount)
				assert.Equal(t, []string{"A", "B", "C"}, cfg.Merge.Columns)
			},
		},
		{
			name: "invalid yaml",
			file: "merge: [unterminated",
			wantErr: true,
		},
		{
			name:    "invalid row count",
			env:     map[string]string{"XLMERGE_MERGE_ROW_COUNT": "0"},
			wantErr: true,
		},
		{
			name:    "zero workers",
			env:     map[string]string{"XLMERGE_MERGE_WORKERS": "0"},
			wantErr: true,
		},
		{
			name:    "invalid env integer",
			env:     map[string]string{"XLMERGE_MERGE_SKIP_ROWS": "eight"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			cfg, err := LoadFile(path)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
				return
			}

			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestLoad_ConfigFileEnv(t *testing.T) {
	path := writeConfigFile(t, "merge:\n  sheet_name: Pointed\n")
	t.Setenv(ConfigFileEnv, path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "Pointed", cfg.Merge.SheetName)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"extension without dot", func(c *Config) { c.Merge.Extension = "xlsm" }, true},
		{"negative skip rows", func(c *Config) { c.Merge.SkipRows = -1 }, true},
		{"zero skip rows allowed", func(c *Config) { c.Merge.SkipRows = 0 }, false},
		{"no columns", func(c *Config) { c.Merge.Columns = nil }, true},
		{"blank column", func(c *Config) { c.Merge.Columns = []string{"A", ""} }, true},
		{"duplicate columns", func(c *Config) { c.Merge.Columns = []string{"A", "A"} }, true},
		{"missing sheet", func(c *Config) { c.Merge.SheetName = "" }, true},
		{"missing output", func(c *Config) { c.Merge.OutputPath = "" }, true},
		{"empty filters allowed", func(c *Config) { c.Merge.MustContain = ""; c.Merge.TempMarker = "" }, false},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }, true},
		{"unknown trace exporter", func(c *Config) { c.Telemetry.TraceExporter = "otlp" }, true},
		{"sheet name too long", func(c *Config) { c.Merge.OutputSheet = "abcdefghijklmnopqrstuvwxyz0123456789" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
