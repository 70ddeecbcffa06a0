package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Defaults used when a field is absent from the config file.
const (
	DefaultStorePath  = "data/store_public.db"
	DefaultOutputPath = "data/shs1300.csv"
	DefaultReportPath = "data/shs1300_report.html"
)

const maxFileSize = 1 * 1024 * 1024 // 1MB

// Config is the dataset export configuration. Fields omitted from the JSON
// file stay nil and the Get* methods supply defaults.
type Config struct {
	StorePath  *string `json:"store_path,omitempty" yaml:"store_path,omitempty"`
	OutputPath *string `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	ReportPath *string `json:"report_path,omitempty" yaml:"report_path,omitempty"`

	// Tertiary collapses "Match" into "Version" (three classes).
	Tertiary *bool `json:"tertiary,omitempty" yaml:"tertiary,omitempty"`
	// Lean restricts the annotation columns to label, nlabel and origin.
	Lean *bool `json:"lean,omitempty" yaml:"lean,omitempty"`
}

// Empty returns a Config with every field unset.
func Empty() *Config {
	return &Config{}
}

// Load reads a Config from a JSON or YAML file, chosen by extension
// (.json, .yaml or .yml). The file must be at most 1MB.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	ext := filepath.Ext(cleanPath)
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	if ext == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the values that are set, and that the effective output
// path does not point at the effective store path.
func (c *Config) Validate() error {
	if c.StorePath != nil && *c.StorePath == "" {
		return fmt.Errorf("store_path must not be empty")
	}
	if c.OutputPath != nil && *c.OutputPath == "" {
		return fmt.Errorf("output_path must not be empty")
	}
	// Compare effective paths so a default on either side is checked too.
	if filepath.Clean(c.GetStorePath()) == filepath.Clean(c.GetOutputPath()) {
		return fmt.Errorf("output_path %q would overwrite the store", c.GetOutputPath())
	}
	return nil
}

// GetStorePath returns the annotation store location.
func (c *Config) GetStorePath() string {
	if c.StorePath == nil {
		return DefaultStorePath
	}
	return *c.StorePath
}

// GetOutputPath returns the export destination.
func (c *Config) GetOutputPath() string {
	if c.OutputPath == nil {
		return DefaultOutputPath
	}
	return *c.OutputPath
}

// GetReportPath returns the HTML report destination.
func (c *Config) GetReportPath() string {
	if c.ReportPath == nil || *c.ReportPath == "" {
		return DefaultReportPath
	}
	return *c.ReportPath
}

// GetTertiary returns the tertiary toggle (default false).
func (c *Config) GetTertiary() bool {
	return c.Tertiary != nil && *c.Tertiary
}

// GetLean returns the lean toggle (default true).
func (c *Config) GetLean() bool {
	if c.Lean == nil {
		return true
	}
	return *c.Lean
}

// Override returns a copy of c with every non-nil field of o applied.
func (c *Config) Override(o *Config) *Config {
	out := *c
	if o == nil {
		return &out
	}
	if o.StorePath != nil {
		out.StorePath = o.StorePath
	}
	if o.OutputPath != nil {
		out.OutputPath = o.OutputPath
	}
	if o.ReportPath != nil {
		out.ReportPath = o.ReportPath
	}
	if o.Tertiary != nil {
		out.Tertiary = o.Tertiary
	}
	if o.Lean != nil {
		out.Lean = o.Lean
	}
	return &out
}

// Helper functions to create pointers
func String(v string) *string { return &v }
func Bool(v bool) *bool       { return &v }
