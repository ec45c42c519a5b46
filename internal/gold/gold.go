// Package gold aggregates the validated silver dataset into the two
// business tables: customer_summary and merchant_category_analysis.
package gold

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dvloznov/medallion/internal/dataset"
	"github.com/dvloznov/medallion/internal/domain"
	"github.com/dvloznov/medallion/internal/logger"
)

// ErrNoValidRows is returned when the silver dataset contains no valid
// records; aggregation cannot produce meaningful groups from nothing and
// no output tables are written.
var ErrNoValidRows = errors.New("no valid rows in silver dataset")

// Gold table file names.
const (
	CustomerSummaryFile  = "customer_summary.parquet"
	CategoryAnalysisFile = "merchant_category_analysis.parquet"
)

// Stats summarizes one gold run.
type Stats struct {
	SourceRows    int
	ValidRowsUsed int
	Customers     int
	Categories    int
	CreatedAt     time.Time
	CustomerTable string
	CategoryTable string
}

// Stage runs the gold aggregation.
type Stage struct {
	now func() time.Time
}

// NewStage creates a gold stage using the wall clock.
func NewStage() *Stage {
	return &Stage{now: time.Now}
}

// Aggregate reads the silver dataset, keeps only valid records, runs both
// aggregators and writes the two gold tables under goldDir.
func (s *Stage) Aggregate(ctx context.Context, silverURI, goldDir string) (Stats, error) {
	log := logger.FromContext(ctx)
	log.Info().Str("source", silverURI).Msg("Starting gold aggregation")

	txs, err := dataset.ReadRows[domain.Transaction](ctx, silverURI)
	if err != nil {
		return Stats{}, fmt.Errorf("Aggregate: %w", err)
	}

	valid := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.IsValid {
			valid = append(valid, tx)
		}
	}

	log.Info().
		Int("valid_rows", len(valid)).
		Int("source_rows", len(txs)).
		Msg("Filtered silver dataset to valid records")

	if len(valid) == 0 {
		return Stats{}, fmt.Errorf("Aggregate: %s: %w", silverURI, ErrNoValidRows)
	}

	customers := SummarizeCustomers(valid)
	categories := AnalyzeCategories(valid)

	customerURI := dataset.JoinURI(goldDir, CustomerSummaryFile)
	categoryURI := dataset.JoinURI(goldDir, CategoryAnalysisFile)

	if err := dataset.WriteRows(ctx, customerURI, customers); err != nil {
		return Stats{}, fmt.Errorf("Aggregate: %w", err)
	}
	if err := dataset.WriteRows(ctx, categoryURI, categories); err != nil {
		return Stats{}, fmt.Errorf("Aggregate: %w", err)
	}

	stats := Stats{
		SourceRows:    len(txs),
		ValidRowsUsed: len(valid),
		Customers:     len(customers),
		Categories:    len(categories),
		CreatedAt:     s.now(),
		CustomerTable: customerURI,
		CategoryTable: categoryURI,
	}

	log.Info().
		Int("customers", stats.Customers).
		Int("categories", stats.Categories).
		Msg("Gold aggregation complete")

	return stats, nil
}
