package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "xlmerge/internal/errors"
)

// EnvPrefix namespaces every environment variable read by Load
const EnvPrefix = "XLMERGE"

// ConfigFileEnv names the environment variable pointing at a YAML config file
const ConfigFileEnv = EnvPrefix + "_CONFIG"

// Config represents the complete application configuration
type Config struct {
	Merge     MergeConfig     `yaml:"merge" envconfig:"MERGE"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// MergeConfig describes which workbooks are merged and where the result goes
type MergeConfig struct {
	RootDir     string   `yaml:"root_dir" envconfig:"ROOT_DIR" validate:"required"`
	MustContain string   `yaml:"must_contain" envconfig:"MUST_CONTAIN"`
	TempMarker  string   `yaml:"temp_marker" envconfig:"TEMP_MARKER"`
	Extension   string   `yaml:"extension" envconfig:"EXTENSION" validate:"required,startswith=."`
	SheetName   string   `yaml:"sheet_name" envconfig:"SHEET_NAME" validate:"required"`
	SkipRows    int      `yaml:"skip_rows" envconfig:"SKIP_ROWS" validate:"min=0"`
	RowCount    int      `yaml:"row_count" envconfig:"ROW_COUNT" validate:"min=1"`
	Columns     []string `yaml:"columns" envconfig:"COLUMNS" validate:"required,min=1,unique,dive,required"`
	OutputPath  string   `yaml:"output_path" envconfig:"OUTPUT_PATH" validate:"required"`
	OutputSheet string   `yaml:"output_sheet" envconfig:"OUTPUT_SHEET" validate:"required,max=31"`
	// Workers bounds how many workbooks are read at once. The default of 1
	// reads strictly one file after another; higher values overlap reads
	// but results are still consumed in discovery order.
	Workers int `yaml:"workers" envconfig:"WORKERS" validate:"min=1,max=64"`
}

// LoggingConfig contains run log configuration
type LoggingConfig struct {
	Level   string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format  string `yaml:"format" envconfig:"FORMAT" validate:"oneof=text json"`
	Output  string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=file both"`
	Dir     string `yaml:"dir" envconfig:"DIR" validate:"required"`
	RunName string `yaml:"run_name" envconfig:"RUN_NAME" validate:"required"`
}

// TelemetryConfig contains tracing and metrics configuration
type TelemetryConfig struct {
	TraceExporter   string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=none stdout"`
	TraceFile       string `yaml:"trace_file" envconfig:"TRACE_FILE"`
	MetricsTextfile string `yaml:"metrics_textfile" envconfig:"METRICS_TEXTFILE"`
}

// Default returns the configuration the tool ships with
func Default() *Config {
	return &Config{
		Merge: MergeConfig{
			RootDir:     ".",
			MustContain: "PLACEHOLDER",
			TempMarker:  "~",
			Extension:   ".xlsm",
			SheetName:   "SHEET_NAME2",
			SkipRows:    8,
			RowCount:    50,
			Columns:     []string{"Column 1", "Column 2", "Column 3"},
			OutputPath:  "merged.xlsx",
			OutputSheet: "Sheet1",
			Workers:     1,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Format:  "text",
			Output:  "file",
			Dir:     "logs",
			RunName: "files_merge_script",
		},
		Telemetry: TelemetryConfig{
			TraceExporter: "none",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// XLMERGE_* environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	return LoadFile(getConfigFilePath())
}

// LoadFile is Load with an explicit config file; an empty path skips the file
func LoadFile(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).
				WithContext("file", configFile)
		}
	}

	// envconfig leaves fields untouched when their variable is unset, so
	// defaults and file values survive unless overridden.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile overlays YAML values onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// normalize trims incidental whitespace from list values read from env
func (c *Config) normalize() {
	for i, col := range c.Merge.Columns {
		c.Merge.Columns[i] = strings.TrimSpace(col)
	}
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Format = strings.ToLower(c.Logging.Format)
	c.Logging.Output = strings.ToLower(c.Logging.Output)
	c.Telemetry.TraceExporter = strings.ToLower(c.Telemetry.TraceExporter)
}

// Validate checks the configuration against its struct tags
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		var fields []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
		}
		return apperrors.NewConfigError("config validation failed", err).
			WithContext("fields", fields)
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if path := os.Getenv(ConfigFileEnv); path != "" {
		return path
	}

	locations := []string{
		"xlmerge.yaml",
		"configs/xlmerge.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}
