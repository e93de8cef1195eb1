// Package config loads and validates the runner configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file used when none is given.
const DefaultPath = "config.yml"

// DefaultSearchPattern matches every discovered file.
const DefaultSearchPattern = ".*"

// Config holds the runner settings.
type Config struct {
	// TestCasesDir is the discovery root.
	TestCasesDir string `yaml:"test_cases_dir_path" json:"test_cases_dir_path"`

	// FileSearchPattern filters discovered files by their full name.
	FileSearchPattern string `yaml:"file_search_pattern" json:"file_search_pattern"`

	// EvaluateURL is the endpoint of the evaluation service.
	EvaluateURL string `yaml:"evaluate_url" json:"evaluate_url"`

	// ReportFile receives one line per test.
	ReportFile string `yaml:"report_file" json:"report_file"`

	// TCKReportFile receives one line per test case.
	TCKReportFile string `yaml:"tck_report_file" json:"tck_report_file"`

	// StopOnFailure stops the run after the first failing test.
	StopOnFailure bool `yaml:"stop_on_failure" json:"stop_on_failure"`

	// HistoryDB is the SQLite run history. Empty disables history.
	HistoryDB string `yaml:"history_db,omitempty" json:"history_db,omitempty"`

	// RequestTimeout bounds each evaluation request, e.g. "30s".
	// Empty means no timeout.
	RequestTimeout string `yaml:"request_timeout,omitempty" json:"request_timeout,omitempty"`
}

// ValidationError describes one invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid configuration: " + e.Message
	}
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Message)
}

// IsValidationError reports whether err contains a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Load reads, decodes and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file '%s': %w", path, err)
	}
	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("configuration file '%s': %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a configuration document.
// Unknown fields are rejected.
func Parse(r io.Reader) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ValidationError{Message: "empty configuration"}
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.FileSearchPattern == "" {
		c.FileSearchPattern = DefaultSearchPattern
	}
}

// Validate checks the configuration against the schema and compiles the
// search pattern and timeout.
func (c *Config) Validate() error {
	if err := validateSchema(c); err != nil {
		return err
	}
	if _, err := regexp.Compile(c.FileSearchPattern); err != nil {
		return &ValidationError{Field: "file_search_pattern", Message: err.Error()}
	}
	if _, err := c.Timeout(); err != nil {
		return &ValidationError{Field: "request_timeout", Message: err.Error()}
	}
	return nil
}

// Pattern returns the compiled file search pattern.
func (c *Config) Pattern() (*regexp.Regexp, error) {
	return regexp.Compile(c.FileSearchPattern)
}

// Timeout returns the parsed request timeout, or 0 when unset.
func (c *Config) Timeout() (time.Duration, error) {
	if c.RequestTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", c.RequestTimeout)
	}
	return d, nil
}
