// Package config provides configuration management for the pipeline.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrMissingRawPath        = errors.New("pipeline.raw_path is required")
	ErrMissingBronzePath     = errors.New("pipeline.bronze_path is required")
	ErrMissingSilverPath     = errors.New("pipeline.silver_path is required")
	ErrMissingGoldDir        = errors.New("pipeline.gold_dir is required")
	ErrInvalidTopN           = errors.New("insights.top_categories must be at least 1")
	ErrDatasetWithoutProject = errors.New("bigquery.dataset requires bigquery.project")
)

// Config represents the complete pipeline configuration.
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
	Insights InsightsConfig `yaml:"insights"`
	Logging  LoggingConfig  `yaml:"logging"`
	BigQuery BigQueryConfig `yaml:"bigquery"`
}

// PipelineConfig holds dataset locations and ingestion settings. Paths may
// be local files or gs:// URIs.
type PipelineConfig struct {
	RawPath      string `yaml:"raw_path"`
	BronzePath   string `yaml:"bronze_path"`
	SilverPath   string `yaml:"silver_path"`
	GoldDir      string `yaml:"gold_dir"`
	SourceSystem string `yaml:"source_system"`
}

// InsightsConfig controls the fraud-risk report.
type InsightsConfig struct {
	TopCategories int `yaml:"top_categories"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// BigQueryConfig enables the optional run ledger. Left empty, stage runs
// are not recorded anywhere.
type BigQueryConfig struct {
	Project string `yaml:"project"`
	Dataset string `yaml:"dataset"`
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			RawPath:      "data/raw/credit_card_transactions.csv",
			BronzePath:   "data/bronze/transactions.parquet",
			SilverPath:   "data/silver/transactions_clean.parquet",
			GoldDir:      "data/gold",
			SourceSystem: "credit_card_system",
		},
		Insights: InsightsConfig{TopCategories: 5},
		Logging:  LoggingConfig{Level: "info"},
	}
}

// Load reads and validates a YAML config file. Fields left unset in the
// file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Load: reading config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("Load: parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("Load: invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Pipeline.RawPath == "" {
		return ErrMissingRawPath
	}
	if c.Pipeline.BronzePath == "" {
		return ErrMissingBronzePath
	}
	if c.Pipeline.SilverPath == "" {
		return ErrMissingSilverPath
	}
	if c.Pipeline.GoldDir == "" {
		return ErrMissingGoldDir
	}
	if c.Insights.TopCategories < 1 {
		return ErrInvalidTopN
	}
	if c.BigQuery.Dataset != "" && c.BigQuery.Project == "" {
		return ErrDatasetWithoutProject
	}
	return nil
}
