package gold

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/medallion/internal/domain"
)

// categoryGroup accumulates the per-category statistics in a single pass.
type categoryGroup struct {
	count     int64
	amounts   []decimal.Decimal
	fraud     int64
	customers map[string]struct{}
	merchants map[string]struct{}
}

// AnalyzeCategories groups valid transactions by merchant category and
// computes the merchant_category_analysis rows, ordered by transaction
// count descending (category name breaks ties, keeping re-runs stable).
func AnalyzeCategories(txs []domain.Transaction) []domain.CategoryAnalysis {
	groups := make(map[string]*categoryGroup)

	for i := range txs {
		tx := &txs[i]
		g := groups[tx.Category]
		if g == nil {
			g = &categoryGroup{
				customers: make(map[string]struct{}),
				merchants: make(map[string]struct{}),
			}
			groups[tx.Category] = g
		}

		g.count++
		g.amounts = append(g.amounts, decimal.NewFromFloat(*tx.Amt))
		g.fraud += tx.IsFraud
		g.customers[tx.CCNum] = struct{}{}
		g.merchants[tx.Merchant] = struct{}{}
	}

	rows := make([]domain.CategoryAnalysis, 0, len(groups))
	for category, g := range groups {
		total, avg, median := amountStats(g.amounts)
		rows = append(rows, domain.CategoryAnalysis{
			Category:          category,
			TotalTransactions: g.count,
			TotalAmount:       total,
			AvgAmount:         avg,
			MedianAmount:      median,
			FraudCount:        g.fraud,
			FraudRate:         percentRate(g.fraud, g.count),
			UniqueCustomers:   int64(len(g.customers)),
			UniqueMerchants:   int64(len(g.merchants)),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalTransactions != rows[j].TotalTransactions {
			return rows[i].TotalTransactions > rows[j].TotalTransactions
		}
		return rows[i].Category < rows[j].Category
	})

	return rows
}
