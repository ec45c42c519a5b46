package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/medallion/internal/bronze"
	"github.com/dvloznov/medallion/internal/config"
	"github.com/dvloznov/medallion/internal/gold"
	"github.com/dvloznov/medallion/internal/insights"
	"github.com/dvloznov/medallion/internal/logger"
	"github.com/dvloznov/medallion/internal/runledger"
	"github.com/dvloznov/medallion/internal/silver"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional, defaults apply)")
	stage := flag.String("stage", "all", "Stage to run: bronze, silver, gold, insights or all")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log := logger.New()
			log.Fatal().Err(err).Msg("Loading config failed")
		}
		cfg = loaded
	}

	log := logger.NewWithLevel(cfg.Logging.Level)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	recorder := newRecorder(ctx, cfg, log)
	if closer, ok := recorder.(*runledger.BigQueryRecorder); ok {
		defer closer.Close()
	}

	if err := run(ctx, cfg, recorder, *stage); err != nil {
		log.Fatal().Err(err).Msg("Pipeline failed")
	}

	fmt.Println("Pipeline completed successfully.")
}

func newRecorder(ctx context.Context, cfg *config.Config, log zerolog.Logger) runledger.Recorder {
	if cfg.BigQuery.Project == "" {
		return runledger.Noop{}
	}

	rec, err := runledger.NewBigQueryRecorder(ctx, cfg.BigQuery.Project, cfg.BigQuery.Dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Creating BigQuery run recorder failed")
	}

	log.Info().
		Str("project", cfg.BigQuery.Project).
		Str("dataset", cfg.BigQuery.Dataset).
		Msg("Recording stage runs to BigQuery")

	return rec
}

func run(ctx context.Context, cfg *config.Config, rec runledger.Recorder, stage string) error {
	p := cfg.Pipeline

	stages := map[string]func(context.Context) error{
		"bronze": func(ctx context.Context) error {
			_, err := bronze.Ingest(ctx, p.RawPath, p.BronzePath, p.SourceSystem)
			return err
		},
		"silver": func(ctx context.Context) error {
			_, err := silver.NewStage().Transform(ctx, p.BronzePath, p.SilverPath)
			return err
		},
		"gold": func(ctx context.Context) error {
			_, err := gold.NewStage().Aggregate(ctx, p.SilverPath, p.GoldDir)
			return err
		},
		"insights": func(ctx context.Context) error {
			_, err := insights.Generate(ctx, p.GoldDir, cfg.Insights.TopCategories)
			return err
		},
	}

	if stage != "all" {
		fn, ok := stages[stage]
		if !ok {
			return fmt.Errorf("unknown stage %q (want bronze, silver, gold, insights or all)", stage)
		}
		return runStage(ctx, rec, stage, fn)
	}

	// Each stage reads the previous stage's persisted output, so a later
	// stage can be re-run on its own with -stage.
	for _, name := range []string{"bronze", "silver", "gold", "insights"} {
		if err := runStage(ctx, rec, name, stages[name]); err != nil {
			return err
		}
	}

	return nil
}

func runStage(ctx context.Context, rec runledger.Recorder, name string, fn func(context.Context) error) error {
	log := logger.FromContext(ctx)

	runID, err := rec.StartRun(ctx, name)
	if err != nil {
		// The ledger is observability, not control flow.
		log.Warn().Err(err).Str("stage", name).Msg("Recording stage start failed")
	}

	if err := fn(ctx); err != nil {
		if runID != "" {
			rec.FailRun(ctx, runID, err)
		}
		return fmt.Errorf("stage %s: %w", name, err)
	}

	if runID != "" {
		if err := rec.FinishRun(ctx, runID); err != nil {
			log.Warn().Err(err).Str("stage", name).Msg("Recording stage finish failed")
		}
	}

	return nil
}
