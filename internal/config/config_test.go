// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Defaults.Format != "text" {
		t.Errorf("expected default format=text, got %q", cfg.Defaults.Format)
	}
	if cfg.Defaults.Policy != "standard" {
		t.Errorf("expected default policy=standard, got %q", cfg.Defaults.Policy)
	}
	if cfg.Thresholds.Blur != 100 {
		t.Errorf("expected blur threshold 100, got %v", cfg.Thresholds.Blur)
	}
	if cfg.Thresholds.FuzzyMatch != 80 {
		t.Errorf("expected fuzzy threshold 80, got %d", cfg.Thresholds.FuzzyMatch)
	}
	if cfg.Thresholds.QualityTiers.Excellent != 500 {
		t.Errorf("expected excellent boundary 500, got %v", cfg.Thresholds.QualityTiers.Excellent)
	}
	if len(cfg.OCR.Languages) != 1 || cfg.OCR.Languages[0] != "eng" {
		t.Errorf("expected default languages [eng], got %v", cfg.OCR.Languages)
	}
	if cfg.Batch.MaxFiles != 50 {
		t.Errorf("expected batch cap 50, got %d", cfg.Batch.MaxFiles)
	}
}

func TestLoadConfig_ValidFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	content := `
defaults:
  format: json
  policy: enriched
thresholds:
  blur: 150
ocr:
  languages: [eng, tam]
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Defaults.Format != "json" {
		t.Errorf("expected format=json, got %q", cfg.Defaults.Format)
	}
	if cfg.Defaults.Policy != "enriched" {
		t.Errorf("expected policy=enriched, got %q", cfg.Defaults.Policy)
	}
	if cfg.Thresholds.Blur != 150 {
		t.Errorf("expected blur=150, got %v", cfg.Thresholds.Blur)
	}
	if len(cfg.OCR.Languages) != 2 || cfg.OCR.Languages[1] != "tam" {
		t.Errorf("expected languages [eng tam], got %v", cfg.OCR.Languages)
	}
	// Untouched settings keep their defaults.
	if cfg.Thresholds.ReviewScore != 70 {
		t.Errorf("expected review score default 70, got %v", cfg.Thresholds.ReviewScore)
	}
}

func TestLoadConfig_InvalidPolicy(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("defaults:\n  policy: lenient\n"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := LoadConfig(configPath); err == nil {
		t.Error("expected validation error for unknown policy")
	}
}

func TestLoadConfig_InvalidTiers(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
thresholds:
  quality_tiers:
    excellent: 100
    good: 200
    fair: 50
    poor: 25
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := LoadConfig(configPath); err == nil {
		t.Error("expected validation error for non-decreasing tier boundaries")
	}
}

func TestLoadConfigOrDefault_NonexistentFile(t *testing.T) {
	cfg := LoadConfigOrDefault("/nonexistent/path/config.yaml")
	if cfg == nil {
		t.Fatal("expected non-nil config (fallback to defaults)")
	}
	if cfg.Defaults.Format != "text" {
		t.Errorf("fallback config format = %q, want text", cfg.Defaults.Format)
	}
}

func TestMandatoryFields_Override(t *testing.T) {
	cfg, _ := LoadConfig("")
	if len(cfg.MandatoryFields()) != 5 {
		t.Errorf("default field table has %d entries, want 5", len(cfg.MandatoryFields()))
	}

	cfg.Fields = cfg.Fields[:0]
	cfg.Fields = append(cfg.Fields, cfg.MandatoryFields()[0])
	if len(cfg.MandatoryFields()) != 1 {
		t.Errorf("override not honored: %d fields", len(cfg.MandatoryFields()))
	}
}

func TestFuzzyTable_Default(t *testing.T) {
	cfg, _ := LoadConfig("")
	if len(cfg.FuzzyTable()) == 0 {
		t.Error("default fuzzy table empty")
	}
}
