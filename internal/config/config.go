// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"label-scan/internal/analyzers/fuzzy"
	"label-scan/internal/analyzers/keywords"
	"label-scan/internal/analyzers/quality"
	"label-scan/internal/analyzers/scoring"
)

// Config represents the application configuration. Every knob the pipeline
// exposes to callers lives here; the analyzer packages receive values at
// construction and never read configuration themselves.
type Config struct {
	// Default settings
	Defaults struct {
		Format  string `yaml:"format"`
		Verbose bool   `yaml:"verbose"`
		Debug   bool   `yaml:"debug"`
		NoColor bool   `yaml:"no_color"`
		Policy  string `yaml:"policy"`
	} `yaml:"defaults"`

	// Analyzer thresholds
	Thresholds struct {
		Blur         float64            `yaml:"blur"`
		FuzzyMatch   int                `yaml:"fuzzy_match"`
		ForgeryError float64            `yaml:"forgery_error"`
		ReviewScore  float64            `yaml:"review_score"`
		QualityTiers quality.Boundaries `yaml:"quality_tiers"`
	} `yaml:"thresholds"`

	// OCR engine settings
	OCR struct {
		Languages      []string `yaml:"languages"`
		TimeoutSeconds int      `yaml:"timeout_seconds"`
	} `yaml:"ocr"`

	// Batch processing settings
	Batch struct {
		Workers  int `yaml:"workers"`
		MaxFiles int `yaml:"max_files"`
	} `yaml:"batch"`

	// Web server settings
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	// Mandatory-field table override. Empty means the built-in table.
	Fields []keywords.Field `yaml:"fields,omitempty"`

	// Fuzzy overlay table override. Empty means the built-in table.
	FuzzyKeywords []fuzzy.Keyword `yaml:"fuzzy_keywords,omitempty"`
}

// LoadConfig loads configuration from the specified file path. An empty path
// returns the defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	// Set default values
	config.Defaults.Format = "text"
	config.Defaults.Policy = "standard"
	config.Thresholds.Blur = 100.0
	config.Thresholds.FuzzyMatch = fuzzy.DefaultThreshold
	config.Thresholds.ForgeryError = 0.15
	config.Thresholds.ReviewScore = scoring.DefaultReviewThreshold
	config.Thresholds.QualityTiers = quality.DefaultBoundaries()
	config.OCR.Languages = []string{"eng"}
	config.OCR.TimeoutSeconds = 30
	config.Batch.Workers = 4
	config.Batch.MaxFiles = 50
	config.Server.Port = "8080"

	if configPath == "" {
		return config, nil
	}

	cleanPath := filepath.Clean(configPath)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// FindConfigFile looks for a configuration file in standard locations.
func FindConfigFile() string {
	for _, name := range []string{
		"config.yaml",
		"label-scan.yaml",
		"label-scan.yml",
		".label-scan.yaml",
		".label-scan.yml",
	} {
		if fileExists(name) {
			return name
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	homeConfig := filepath.Join(home, ".label-scan.yaml")
	if fileExists(homeConfig) {
		return homeConfig
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	xdgConfigFile := filepath.Join(xdgConfig, "label-scan", "config.yaml")
	if fileExists(xdgConfigFile) {
		return xdgConfigFile
	}

	return ""
}

// LoadConfigOrDefault loads configuration from configFile (or searches
// standard locations when configFile is empty). If loading fails, it returns
// a default configuration. This is the shared helper used by both the CLI
// and the web server.
func LoadConfigOrDefault(configFile string) *Config {
	configPath := configFile
	if configPath == "" {
		configPath = FindConfigFile()
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		// Fall back to defaults — callers should not crash on a missing/bad config file.
		cfg, _ = LoadConfig("")
	}
	return cfg
}

// ValidateConfig validates threshold and policy settings.
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	if _, err := scoring.New(config.Defaults.Policy, config.Thresholds.ReviewScore); err != nil {
		return err
	}

	if config.Thresholds.Blur <= 0 {
		return fmt.Errorf("blur threshold must be positive, got %v", config.Thresholds.Blur)
	}
	if config.Thresholds.FuzzyMatch < 0 || config.Thresholds.FuzzyMatch > 100 {
		return fmt.Errorf("fuzzy match threshold must be within [0,100], got %d", config.Thresholds.FuzzyMatch)
	}
	if config.Thresholds.ForgeryError <= 0 {
		return fmt.Errorf("forgery error threshold must be positive, got %v", config.Thresholds.ForgeryError)
	}
	if config.Thresholds.ReviewScore <= 0 || config.Thresholds.ReviewScore > 100 {
		return fmt.Errorf("review score threshold must be within (0,100], got %v", config.Thresholds.ReviewScore)
	}

	tiers := config.Thresholds.QualityTiers
	if !(tiers.Excellent > tiers.Good && tiers.Good > tiers.Fair && tiers.Fair > tiers.Poor && tiers.Poor > 0) {
		return fmt.Errorf("quality tier boundaries must be strictly decreasing and positive")
	}

	if config.OCR.TimeoutSeconds <= 0 {
		return fmt.Errorf("ocr timeout must be positive, got %d", config.OCR.TimeoutSeconds)
	}
	if config.Batch.Workers <= 0 {
		return fmt.Errorf("batch workers must be positive, got %d", config.Batch.Workers)
	}

	return nil
}

// MandatoryFields returns the configured field table, falling back to the
// built-in defaults.
func (c *Config) MandatoryFields() []keywords.Field {
	if len(c.Fields) > 0 {
		return c.Fields
	}
	return keywords.DefaultFields()
}

// FuzzyTable returns the configured fuzzy overlay table, falling back to the
// built-in defaults.
func (c *Config) FuzzyTable() []fuzzy.Keyword {
	if len(c.FuzzyKeywords) > 0 {
		return c.FuzzyKeywords
	}
	return fuzzy.DefaultKeywords()
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return info != nil && !info.IsDir()
}
