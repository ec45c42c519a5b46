package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate, got: %v", err)
	}
	if cfg.Insights.TopCategories != 5 {
		t.Errorf("Default top_categories = %d, want 5", cfg.Insights.TopCategories)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Default logging level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
pipeline:
  raw_path: /data/raw/txns.csv
  bronze_path: gs://bucket/bronze/transactions.parquet
  silver_path: gs://bucket/silver/transactions_clean.parquet
  gold_dir: gs://bucket/gold
  source_system: card_core
insights:
  top_categories: 3
logging:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Pipeline.RawPath != "/data/raw/txns.csv" {
		t.Errorf("raw_path = %q", cfg.Pipeline.RawPath)
	}
	if cfg.Pipeline.BronzePath != "gs://bucket/bronze/transactions.parquet" {
		t.Errorf("bronze_path = %q", cfg.Pipeline.BronzePath)
	}
	if cfg.Pipeline.SourceSystem != "card_core" {
		t.Errorf("source_system = %q", cfg.Pipeline.SourceSystem)
	}
	if cfg.Insights.TopCategories != 3 {
		t.Errorf("top_categories = %d, want 3", cfg.Insights.TopCategories)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadKeepsDefaultsForUnsetFields(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: warn
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Pipeline.GoldDir != "data/gold" {
		t.Errorf("gold_dir = %q, want default data/gold", cfg.Pipeline.GoldDir)
	}
	if cfg.Insights.TopCategories != 5 {
		t.Errorf("top_categories = %d, want default 5", cfg.Insights.TopCategories)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"missing raw path", func(c *Config) { c.Pipeline.RawPath = "" }, ErrMissingRawPath},
		{"missing bronze path", func(c *Config) { c.Pipeline.BronzePath = "" }, ErrMissingBronzePath},
		{"missing silver path", func(c *Config) { c.Pipeline.SilverPath = "" }, ErrMissingSilverPath},
		{"missing gold dir", func(c *Config) { c.Pipeline.GoldDir = "" }, ErrMissingGoldDir},
		{"zero top categories", func(c *Config) { c.Insights.TopCategories = 0 }, ErrInvalidTopN},
		{"dataset without project", func(c *Config) { c.BigQuery.Dataset = "runs" }, ErrDatasetWithoutProject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
