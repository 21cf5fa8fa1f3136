package pipeline

import (
	"sort"

	"protquant/domain/quant"
)

// CorrectFDR converts raw p-values into Benjamini–Hochberg adjusted
// values over the complete result set and flags significance against
// the configured threshold. The procedure needs every test at once:
// p-values are ranked ascending, the raw adjusted value at rank i of m
// is p*m/i, and a running minimum from the largest rank downward
// enforces monotonicity, clipped to 1. Tied p-values receive identical
// adjusted values regardless of input order.
func CorrectFDR(results []quant.TestResult, fdrThreshold float64) []quant.DecisionRow {
	m := len(results)
	rows := make([]quant.DecisionRow, m)
	if m == 0 {
		return rows
	}

	order := make([]int, m)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return results[order[a]].PValue < results[order[b]].PValue
	})

	adjusted := make([]float64, m)
	running := 1.0
	for rank := m; rank >= 1; rank-- {
		idx := order[rank-1]
		raw := results[idx].PValue * float64(m) / float64(rank)
		if raw < running {
			running = raw
		}
		adjusted[idx] = running
	}

	for i, res := range results {
		rows[i] = quant.DecisionRow{
			TestResult:  res,
			FDR:         adjusted[i],
			Significant: adjusted[i] < fdrThreshold,
		}
	}
	return rows
}
