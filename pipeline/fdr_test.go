package pipeline

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"protquant/domain/quant"
)

func resultsWithPValues(ps ...float64) []quant.TestResult {
	out := make([]quant.TestResult, len(ps))
	for i, p := range ps {
		out[i] = quant.TestResult{ProteinID: string(rune('A' + i)), PValue: p}
	}
	return out
}

func TestCorrectFDR_KnownValues(t *testing.T) {
	// p*m/i for p = 0.005, 0.011, 0.02, 0.04 and m = 4:
	// 0.02, 0.022, 0.0267, 0.04 — already monotone, running min keeps them.
	rows := CorrectFDR(resultsWithPValues(0.005, 0.011, 0.02, 0.04), 0.05)
	require.Len(t, rows, 4)

	assert.InDelta(t, 0.02, rows[0].FDR, 1e-9)
	assert.InDelta(t, 0.022, rows[1].FDR, 1e-9)
	assert.InDelta(t, 0.02*4.0/3.0, rows[2].FDR, 1e-9)
	assert.InDelta(t, 0.04, rows[3].FDR, 1e-9)
}

func TestCorrectFDR_RunningMinimumEnforcesMonotonicity(t *testing.T) {
	// Raw adjusted values dip at higher ranks; the running minimum from
	// the top must pull earlier ranks down.
	rows := CorrectFDR(resultsWithPValues(0.01, 0.011, 0.012, 0.9), 0.05)
	require.Len(t, rows, 4)

	// Raw: 0.04, 0.022, 0.016, 0.9 → after running min: 0.016, 0.016, 0.016, 0.9
	assert.InDelta(t, 0.016, rows[0].FDR, 1e-9)
	assert.InDelta(t, 0.016, rows[1].FDR, 1e-9)
	assert.InDelta(t, 0.016, rows[2].FDR, 1e-9)
	assert.InDelta(t, 0.9, rows[3].FDR, 1e-9)
}

func TestCorrectFDR_MonotonicInRank(t *testing.T) {
	ps := []float64{0.3, 0.001, 0.04, 0.9, 0.02, 0.008, 0.55, 0.12, 0.07, 0.0005}
	rows := CorrectFDR(resultsWithPValues(ps...), 0.05)

	sorted := make([]quant.DecisionRow, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a].PValue < sorted[b].PValue })

	for i := 1; i < len(sorted); i++ {
		assert.GreaterOrEqual(t, sorted[i].FDR, sorted[i-1].FDR,
			"fdr must be non-decreasing along sorted p-values")
	}
}

func TestCorrectFDR_TiedPValuesGetEqualFDR(t *testing.T) {
	// Two proteins tied at p=0.02 among 10 tests must receive the same
	// fdr regardless of their input positions.
	ps := []float64{0.5, 0.02, 0.001, 0.3, 0.02, 0.7, 0.09, 0.15, 0.8, 0.04}
	rows := CorrectFDR(resultsWithPValues(ps...), 0.05)

	assert.Equal(t, rows[1].FDR, rows[4].FDR)
}

func TestCorrectFDR_ClippedAtOne(t *testing.T) {
	rows := CorrectFDR(resultsWithPValues(0.9, 0.95, 1.0), 0.05)
	for _, row := range rows {
		assert.LessOrEqual(t, row.FDR, 1.0)
	}
	assert.Equal(t, 1.0, rows[2].FDR)
}

func TestCorrectFDR_SignificanceThreshold(t *testing.T) {
	rows := CorrectFDR(resultsWithPValues(0.0001, 0.5), 0.01)
	assert.True(t, rows[0].Significant)
	assert.False(t, rows[1].Significant)
}

func TestCorrectFDR_Empty(t *testing.T) {
	rows := CorrectFDR(nil, 0.01)
	assert.Empty(t, rows)
}

func TestCorrectFDR_SingleTestKeepsRawP(t *testing.T) {
	rows := CorrectFDR(resultsWithPValues(0.03), 0.05)
	require.Len(t, rows, 1)
	assert.InDelta(t, 0.03, rows[0].FDR, 1e-12)
}
