package gold

import (
	"sort"

	"github.com/shopspring/decimal"
)

// amountStats computes the sum, mean and median of a group's amounts,
// each rounded to 2 decimals for output.
func amountStats(amounts []decimal.Decimal) (total, avg, median float64) {
	sum := decimal.Zero
	for _, a := range amounts {
		sum = sum.Add(a)
	}
	n := decimal.NewFromInt(int64(len(amounts)))

	return round2(sum), round2(sum.Div(n)), round2(medianOf(amounts))
}

// medianOf returns the median without mutating the input slice. For an
// even group size it averages the two middle values.
func medianOf(amounts []decimal.Decimal) decimal.Decimal {
	sorted := make([]decimal.Decimal, len(amounts))
	copy(sorted, amounts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return sorted[mid-1].Add(sorted[mid]).Div(decimal.NewFromInt(2))
}

// percentRate returns 100*part/total rounded to 2 decimals.
func percentRate(part, total int64) float64 {
	rate := decimal.NewFromInt(part * 100).DivRound(decimal.NewFromInt(total), 2)
	f, _ := rate.Float64()
	return f
}

func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
