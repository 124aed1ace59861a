// Package config provides configuration for the gisdb command processor.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	gisErrors "github.com/gisdb/gisdb/internal/errors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "GISDB_"

// Config holds the configuration for one gisdb run.
type Config struct {
	// DataDir is the base directory for generated files
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// Database configuration
	Database DatabaseConfig `json:"database" yaml:"database"`

	// Storage configuration for import sources
	Storage StorageConfig `json:"storage" yaml:"storage"`

	// Manifest configuration
	Manifest ManifestConfig `json:"manifest" yaml:"manifest"`

	// Bloom filter configuration
	Bloom BloomConfig `json:"bloom" yaml:"bloom"`

	// Report configuration
	Report ReportConfig `json:"report" yaml:"report"`
}

// DatabaseConfig holds record file configuration.
type DatabaseConfig struct {
	// Path is the record file path
	Path string `json:"path" yaml:"path"`

	// Reset truncates the record file when the run starts
	Reset bool `json:"reset" yaml:"reset"`
}

// StorageConfig holds storage configuration.
type StorageConfig struct {
	// Type is the storage type: local, s3
	Type string `json:"type" yaml:"type"`

	// Path is the base directory import names resolve against (for local type)
	Path string `json:"path" yaml:"path"`

	// S3 configuration (for s3 type)
	S3 S3Config `json:"s3" yaml:"s3"`
}

// S3Config holds S3 storage configuration.
type S3Config struct {
	// Bucket is the S3 bucket name
	Bucket string `json:"bucket" yaml:"bucket"`

	// Region is the AWS region
	Region string `json:"region" yaml:"region"`

	// Endpoint is the S3 endpoint (for S3-compatible storage)
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// UsePathStyle enables path-style addressing
	UsePathStyle bool `json:"use_path_style" yaml:"use_path_style"`

	// Prefix is prepended to import names
	Prefix string `json:"prefix" yaml:"prefix"`
}

// ManifestConfig holds import catalog configuration.
type ManifestConfig struct {
	// Enabled turns on import provenance recording
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Path is the SQLite catalog path
	Path string `json:"path" yaml:"path"`
}

// BloomConfig sizes the name pre-check filter.
type BloomConfig struct {
	ExpectedItems     int     `json:"expected_items" yaml:"expected_items"`
	FalsePositiveRate float64 `json:"false_positive_rate" yaml:"false_positive_rate"`
}

// ReportConfig holds report formatting options.
type ReportConfig struct {
	// SeparatorWidth is the length of the dashed line between commands
	SeparatorWidth int `json:"separator_width" yaml:"separator_width"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data/gisdb",
		Database: DatabaseConfig{
			Reset: true,
		},
		Storage: StorageConfig{
			Type: "local",
			Path: ".",
		},
		Manifest: ManifestConfig{
			Enabled: false,
		},
		Bloom: BloomConfig{
			ExpectedItems:     100000,
			FalsePositiveRate: 0.01,
		},
		Report: ReportConfig{
			SeparatorWidth: 80,
		},
	}
}

// Resolve fills paths left empty from DataDir.
func (c *Config) Resolve() {
	if c.DataDir == "" {
		c.DataDir = "./data/gisdb"
	}
	if c.Database.Path == "" {
		c.Database.Path = filepath.Join(c.DataDir, "records.txt")
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "."
	}
	if c.Manifest.Path == "" {
		c.Manifest.Path = filepath.Join(c.DataDir, "manifest.db")
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return invalid("data_dir is required")
	}
	if c.Storage.Type != "local" && c.Storage.Type != "s3" {
		return invalid(fmt.Sprintf("invalid storage type: %s (must be local or s3)", c.Storage.Type))
	}
	if c.Storage.Type == "s3" && c.Storage.S3.Bucket == "" {
		return invalid("s3.bucket is required when storage type is s3")
	}
	if c.Bloom.ExpectedItems <= 0 {
		return invalid(fmt.Sprintf("bloom.expected_items must be positive, got %d", c.Bloom.ExpectedItems))
	}
	if c.Bloom.FalsePositiveRate <= 0 || c.Bloom.FalsePositiveRate >= 1 {
		return invalid(fmt.Sprintf("bloom.false_positive_rate must be in (0, 1), got %g", c.Bloom.FalsePositiveRate))
	}
	if c.Report.SeparatorWidth < 1 {
		return invalid(fmt.Sprintf("report.separator_width must be positive, got %d", c.Report.SeparatorWidth))
	}
	return nil
}

func invalid(msg string) error {
	return gisErrors.NewValidationError(gisErrors.CodeInvalidConfig, msg)
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the GISDB_ prefix.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv(EnvPrefix + "DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	// Database configuration
	if v := os.Getenv(EnvPrefix + "DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv(EnvPrefix + "DATABASE_RESET"); v != "" {
		cfg.Database.Reset = v == "true" || v == "1"
	}

	// Storage configuration
	if v := os.Getenv(EnvPrefix + "STORAGE_TYPE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv(EnvPrefix + "STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv(EnvPrefix + "S3_BUCKET"); v != "" {
		cfg.Storage.S3.Bucket = v
	}
	if v := os.Getenv(EnvPrefix + "S3_REGION"); v != "" {
		cfg.Storage.S3.Region = v
	}
	if v := os.Getenv(EnvPrefix + "S3_ENDPOINT"); v != "" {
		cfg.Storage.S3.Endpoint = v
	}
	if v := os.Getenv(EnvPrefix + "S3_USE_PATH_STYLE"); v != "" {
		cfg.Storage.S3.UsePathStyle = v == "true" || v == "1"
	}
	if v := os.Getenv(EnvPrefix + "S3_PREFIX"); v != "" {
		cfg.Storage.S3.Prefix = v
	}

	// Manifest configuration
	if v := os.Getenv(EnvPrefix + "MANIFEST_ENABLED"); v != "" {
		cfg.Manifest.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv(EnvPrefix + "MANIFEST_PATH"); v != "" {
		cfg.Manifest.Path = v
	}

	// Bloom configuration
	if v := os.Getenv(EnvPrefix + "BLOOM_EXPECTED_ITEMS"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Bloom.ExpectedItems)
	}
	if v := os.Getenv(EnvPrefix + "BLOOM_FALSE_POSITIVE_RATE"); v != "" {
		fmt.Sscanf(v, "%g", &cfg.Bloom.FalsePositiveRate)
	}

	// Report configuration
	if v := os.Getenv(EnvPrefix + "REPORT_SEPARATOR_WIDTH"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Report.SeparatorWidth)
	}
}

// EnsureDirectories creates the directories that will hold generated files.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.DataDir, filepath.Dir(c.Database.Path)}
	if c.Manifest.Enabled {
		dirs = append(dirs, filepath.Dir(c.Manifest.Path))
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
