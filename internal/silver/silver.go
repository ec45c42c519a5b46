// Package silver cleans and validates bronze transaction data into an
// analytics-ready dataset. A structurally broken input aborts the stage;
// a row-level quality problem never does — it is recorded on the row as
// is_valid / quality_issues and processing continues.
package silver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dvloznov/medallion/internal/dataset"
	"github.com/dvloznov/medallion/internal/domain"
	"github.com/dvloznov/medallion/internal/logger"
)

// Stats summarizes one silver run. ValidRows + InvalidRows == TotalRows
// holds for every run.
type Stats struct {
	TotalRows   int
	ValidRows   int
	InvalidRows int
	ProcessedAt time.Time
	OutputFile  string
}

// Stage runs the silver transformation.
type Stage struct {
	validator *Validator
	now       func() time.Time
}

// NewStage creates a silver stage using the wall clock.
func NewStage() *Stage {
	return &Stage{validator: NewValidator(), now: time.Now}
}

// NewStageWithClock creates a silver stage with an injected clock, used by
// both the processing stamp and the future-date rule.
func NewStageWithClock(now func() time.Time) *Stage {
	return &Stage{validator: &Validator{Now: now}, now: now}
}

// Transform reads the bronze dataset, normalizes and validates every
// record, stamps a single processing timestamp shared by the whole run,
// and writes the silver dataset.
func (s *Stage) Transform(ctx context.Context, bronzeURI, silverURI string) (Stats, error) {
	log := logger.FromContext(ctx)
	log.Info().Str("source", bronzeURI).Msg("Starting silver transformation")

	records, err := dataset.ReadRows[domain.Record](ctx, bronzeURI)
	if err != nil {
		return Stats{}, fmt.Errorf("Transform: %w", err)
	}

	processedAt := s.now()

	txs := make([]domain.Transaction, 0, len(records))
	valid := 0
	for _, rec := range records {
		tx := Normalize(rec)

		ok, issues := s.validator.Validate(&tx)
		tx.IsValid = ok
		tx.QualityIssues = strings.Join(issues, ",")
		tx.SilverProcessedAt = processedAt
		if ok {
			valid++
		}

		txs = append(txs, tx)
	}

	if err := dataset.WriteRows(ctx, silverURI, txs); err != nil {
		return Stats{}, fmt.Errorf("Transform: %w", err)
	}

	stats := Stats{
		TotalRows:   len(txs),
		ValidRows:   valid,
		InvalidRows: len(txs) - valid,
		ProcessedAt: processedAt,
		OutputFile:  silverURI,
	}

	log.Info().
		Int("total_rows", stats.TotalRows).
		Int("valid_rows", stats.ValidRows).
		Int("invalid_rows", stats.InvalidRows).
		Str("output", silverURI).
		Msg("Silver transformation complete")

	return stats, nil
}
