package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Database  DatabaseConfig  `yaml:"database" envconfig:"DB"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Source    SourceConfig    `yaml:"source" envconfig:"SOURCE"`
	Analysis  AnalysisConfig  `yaml:"analysis" envconfig:"ANALYSIS"`
}

// DatabaseConfig contains relational store connection settings.
// DSN, when set, is passed to the driver verbatim and overrides the discrete fields.
type DatabaseConfig struct {
	Driver         string        `yaml:"driver" validate:"oneof=mysql postgres sqlite"`
	Host           string        `yaml:"host" validate:"required_unless=Driver sqlite"`
	Port           int           `yaml:"port" validate:"min=0,max=65535"`
	User           string        `yaml:"user"`
	Password       string        `yaml:"password"`
	Name           string        `yaml:"name" validate:"required"`
	Params         string        `yaml:"params"`
	DSN            string        `yaml:"dsn"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" split_words:"true" validate:"gt=0"`
}

// PathsConfig contains file system locations, relative to BaseDir unless absolute
type PathsConfig struct {
	BaseDir      string `yaml:"base_dir" split_words:"true"`
	RawDir       string `yaml:"raw_dir" split_words:"true" validate:"required"`
	ProcessedDir string `yaml:"processed_dir" split_words:"true" validate:"required"`
	OutputsDir   string `yaml:"outputs_dir" split_words:"true" validate:"required"`
	LogsDir      string `yaml:"logs_dir" split_words:"true" validate:"required"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" split_words:"true"`
}

// TelemetryConfig controls tracing and the metrics textfile
type TelemetryConfig struct {
	ServiceName   string `yaml:"service_name" split_words:"true" validate:"required"`
	TraceExporter string `yaml:"trace_exporter" split_words:"true" validate:"oneof=stdout none"`
	MetricsFile   string `yaml:"metrics_file" split_words:"true"`
}

// SourceConfig selects where raw datasets are read from
type SourceConfig struct {
	Kind              string            `yaml:"kind" validate:"oneof=excel sheets"`
	CredentialsFile   string            `yaml:"credentials_file" split_words:"true" validate:"required_if=Kind sheets"`
	Spreadsheets      map[string]string `yaml:"spreadsheets"`
	SheetRange        string            `yaml:"sheet_range" split_words:"true"`
	RequestsPerMinute int               `yaml:"requests_per_minute" split_words:"true" validate:"gt=0"`
}

// AnalysisConfig tunes the analysis stage
type AnalysisConfig struct {
	MinPairs     int      `yaml:"min_pairs" split_words:"true" validate:"min=3"`
	OutlierLimit int      `yaml:"outlier_limit" split_words:"true" validate:"gt=0"`
	RankSize     int      `yaml:"rank_size" split_words:"true" validate:"gt=0"`
	Diseases     []string `yaml:"diseases"`
}

// Load reads configuration in increasing precedence: defaults, the YAML file,
// a .env file, then VAX_* environment variables.
// configFile may be empty, in which case the usual locations are searched.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := loadDotEnv(); err != nil {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file on top of cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// loadDotEnv loads .env from the working directory when present.
// Variables already set in the process environment win.
func loadDotEnv() error {
	if _, err := os.Stat(DotEnvFile); err != nil {
		return nil
	}
	return godotenv.Load(DotEnvFile)
}

// normalize fills values derived from other settings
func (c *Config) normalize() {
	c.Logging.Format = "json"
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Output = strings.ToLower(c.Logging.Output)
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = filepath.Join(c.Paths.LogsDir, DefaultLogFile)
	}
	if c.Telemetry.MetricsFile == "" {
		c.Telemetry.MetricsFile = filepath.Join(c.Paths.OutputsDir, MetricsFileName)
	}
	if c.Database.Port == 0 {
		switch c.Database.Driver {
		case "mysql":
			c.Database.Port = 3306
		case "postgres":
			c.Database.Port = 5432
		}
	}
	if len(c.Analysis.Diseases) == 0 {
		c.Analysis.Diseases = append([]string(nil), DefaultDiseases...)
	}
}

// Validate checks struct constraints
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	// Check for config file in common locations
	locations := []string{
		"vaxcli.yaml",
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:         "mysql",
			Host:           "localhost",
			Port:           3306,
			User:           "root",
			Name:           DefaultDatabaseName,
			ConnectTimeout: 10 * time.Second,
		},
		Paths: PathsConfig{
			RawDir:       DefaultRawDir,
			ProcessedDir: DefaultProcessedDir,
			OutputsDir:   DefaultOutputsDir,
			LogsDir:      DefaultLogsDir,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "both",
		},
		Telemetry: TelemetryConfig{
			ServiceName:   AppName,
			TraceExporter: "none",
		},
		Source: SourceConfig{
			Kind:              "excel",
			SheetRange:        "A:Z",
			RequestsPerMinute: 60,
		},
		Analysis: AnalysisConfig{
			MinPairs:     5,
			OutlierLimit: 50,
			RankSize:     10,
			Diseases:     append([]string(nil), DefaultDiseases...),
		},
	}
}
