package gold

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/medallion/internal/domain"
)

// customerGroup accumulates the per-customer statistics in a single pass
// over the records.
type customerGroup struct {
	count     int64
	amounts   []decimal.Decimal
	fraud     int64
	minTS     time.Time
	maxTS     time.Time
	merchants map[string]struct{}

	// Attributes come from the group member with the lexicographically
	// smallest transaction id, so re-runs are deterministic regardless of
	// upstream record order.
	attrTransNum string
	fullName     string
	city         string
	state        string
	job          string
}

// SummarizeCustomers groups valid transactions by card number and computes
// the customer_summary rows, sorted by customer id. Callers must pass only
// valid records: amount and timestamp are guaranteed present on those.
func SummarizeCustomers(txs []domain.Transaction) []domain.CustomerSummary {
	groups := make(map[string]*customerGroup)

	for i := range txs {
		tx := &txs[i]
		g := groups[tx.CCNum]
		if g == nil {
			g = &customerGroup{merchants: make(map[string]struct{})}
			groups[tx.CCNum] = g
		}

		g.count++
		g.amounts = append(g.amounts, decimal.NewFromFloat(*tx.Amt))
		g.fraud += tx.IsFraud
		g.merchants[tx.Merchant] = struct{}{}

		ts := *tx.TransTime
		if g.count == 1 || ts.Before(g.minTS) {
			g.minTS = ts
		}
		if g.count == 1 || ts.After(g.maxTS) {
			g.maxTS = ts
		}

		if g.attrTransNum == "" || tx.TransNum < g.attrTransNum {
			g.attrTransNum = tx.TransNum
			g.fullName = tx.First + " " + tx.Last
			g.city = tx.City
			g.state = tx.State
			g.job = tx.Job
		}
	}

	rows := make([]domain.CustomerSummary, 0, len(groups))
	for id, g := range groups {
		total, avg, median := amountStats(g.amounts)
		rows = append(rows, domain.CustomerSummary{
			CustomerID:           id,
			FullName:             g.fullName,
			TotalTransactions:    g.count,
			TotalSpend:           total,
			AvgTransaction:       avg,
			MedianTransaction:    median,
			FraudCount:           g.fraud,
			FraudRate:            percentRate(g.fraud, g.count),
			FirstTransactionDate: g.minTS,
			LastTransactionDate:  g.maxTS,
			UniqueMerchants:      int64(len(g.merchants)),
			City:                 g.city,
			State:                g.state,
			Job:                  g.job,
			CustomerLifetimeDays: int64(g.maxTS.Sub(g.minTS) / (24 * time.Hour)),
		})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].CustomerID < rows[j].CustomerID })

	return rows
}
