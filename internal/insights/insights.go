// Package insights derives the fraud-risk report from the gold tables.
// It is a read-only consumer: it assumes nothing about row order beyond
// the category table's descending transaction count.
package insights

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/medallion/internal/dataset"
	"github.com/dvloznov/medallion/internal/domain"
	"github.com/dvloznov/medallion/internal/gold"
	"github.com/dvloznov/medallion/internal/logger"
)

// ReportFile is the report name written next to the gold tables.
const ReportFile = "insights_report.txt"

// Report holds the derived business insights.
type Report struct {
	TotalCustomers    int
	TotalCategories   int
	TotalTransactions int64
	TotalFraud        int64
	OverallFraudRate  float64
	TopRiskCategories []domain.CategoryAnalysis
	GeneratedAt       time.Time
}

// Build computes the report from in-memory gold tables. The topN highest
// fraud-rate categories are ranked; ties keep the tables' existing order.
func Build(customers []domain.CustomerSummary, categories []domain.CategoryAnalysis, topN int, generatedAt time.Time) Report {
	ranked := make([]domain.CategoryAnalysis, len(categories))
	copy(ranked, categories)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].FraudRate > ranked[j].FraudRate })
	if topN < len(ranked) {
		ranked = ranked[:topN]
	}

	var totalTxns, totalFraud int64
	for _, c := range categories {
		totalTxns += c.TotalTransactions
		totalFraud += c.FraudCount
	}

	rate := 0.0
	if totalTxns > 0 {
		r := decimal.NewFromInt(totalFraud * 100).DivRound(decimal.NewFromInt(totalTxns), 2)
		rate, _ = r.Float64()
	}

	return Report{
		TotalCustomers:    len(customers),
		TotalCategories:   len(categories),
		TotalTransactions: totalTxns,
		TotalFraud:        totalFraud,
		OverallFraudRate:  rate,
		TopRiskCategories: ranked,
		GeneratedAt:       generatedAt,
	}
}

// Render formats the report as the plain-text document written to disk.
func (r Report) Render() string {
	var b strings.Builder
	line := strings.Repeat("-", 80)

	b.WriteString("CREDIT CARD TRANSACTION INSIGHTS REPORT\n")
	b.WriteString(strings.Repeat("=", 80) + "\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", r.GeneratedAt.Format("2006-01-02 15:04:05"))

	b.WriteString("HIGH-RISK MERCHANT CATEGORIES\n")
	b.WriteString(line + "\n")
	for _, c := range r.TopRiskCategories {
		fmt.Fprintf(&b, "%-20s %6.2f%% fraud rate (%d fraudulent / %d total)\n",
			c.Category, c.FraudRate, c.FraudCount, c.TotalTransactions)
	}
	b.WriteString("\nRecommendation: implement enhanced verification for these high-risk categories.\n\n")

	b.WriteString("KEY METRICS\n")
	b.WriteString(line + "\n")
	fmt.Fprintf(&b, "Total Customers: %d\n", r.TotalCustomers)
	fmt.Fprintf(&b, "Total Merchant Categories: %d\n", r.TotalCategories)
	fmt.Fprintf(&b, "Total Transactions: %d\n", r.TotalTransactions)
	fmt.Fprintf(&b, "Total Fraudulent Transactions: %d\n", r.TotalFraud)
	fmt.Fprintf(&b, "Overall Fraud Rate: %.2f%%\n", r.OverallFraudRate)

	return b.String()
}

// Generate reads the two gold tables, builds the report, logs the
// headline numbers and writes the text report next to the tables.
func Generate(ctx context.Context, goldDir string, topN int) (Report, error) {
	log := logger.FromContext(ctx)

	customers, err := dataset.ReadRows[domain.CustomerSummary](ctx, dataset.JoinURI(goldDir, gold.CustomerSummaryFile))
	if err != nil {
		return Report{}, fmt.Errorf("Generate: %w", err)
	}
	categories, err := dataset.ReadRows[domain.CategoryAnalysis](ctx, dataset.JoinURI(goldDir, gold.CategoryAnalysisFile))
	if err != nil {
		return Report{}, fmt.Errorf("Generate: %w", err)
	}

	report := Build(customers, categories, topN, time.Now())

	for _, c := range report.TopRiskCategories {
		log.Info().
			Str("category", c.Category).
			Float64("fraud_rate", c.FraudRate).
			Int64("fraud_count", c.FraudCount).
			Int64("transactions", c.TotalTransactions).
			Msg("High-risk merchant category")
	}
	log.Info().
		Int("customers", report.TotalCustomers).
		Int("categories", report.TotalCategories).
		Int64("transactions", report.TotalTransactions).
		Float64("overall_fraud_rate", report.OverallFraudRate).
		Msg("Key metrics")

	reportURI := dataset.JoinURI(goldDir, ReportFile)
	if err := dataset.Put(ctx, reportURI, []byte(report.Render())); err != nil {
		return Report{}, fmt.Errorf("Generate: %w", err)
	}

	log.Info().Str("report", reportURI).Msg("Insights report written")

	return report, nil
}
