package pipeline

import (
	"context"
	"math"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/semaphore"
	"gonum.org/v1/gonum/stat/distuv"

	"protquant/domain/quant"
)

// defaultTestWorkers bounds the per-protein test fan-out.
const defaultTestWorkers = 8

// DifferentialTester runs an independent two-sample, two-sided,
// equal-variance Student's t-test per protein row, comparing group B
// against group A in log2 space. Every row is tested in isolation, so
// the rows are mapped over with a bounded worker pool; results are
// written by index and never depend on execution order.
type DifferentialTester struct {
	layout     quant.SampleLayout
	confidence float64
	workers    int64
}

// NewDifferentialTester creates a tester for the given layout with a
// 95% confidence interval.
func NewDifferentialTester(layout quant.SampleLayout) *DifferentialTester {
	return &DifferentialTester{
		layout:     layout,
		confidence: 0.95,
		workers:    defaultTestWorkers,
	}
}

// TestAll tests every row and returns one TestResult per protein, in
// input order.
func (t *DifferentialTester) TestAll(ctx context.Context, rows []quant.ProteinQuantRow) ([]quant.TestResult, error) {
	results := make([]quant.TestResult, len(rows))
	sem := semaphore.NewWeighted(t.workers)

	for i, row := range rows {
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		go func(i int, row quant.ProteinQuantRow) {
			defer sem.Release(1)
			results[i] = t.Test(row)
		}(i, row)
	}

	// Draining the full weight waits for every in-flight test.
	if err := sem.Acquire(ctx, t.workers); err != nil {
		return nil, err
	}
	sem.Release(t.workers)

	return results, nil
}

// Test runs the t-test for a single protein row.
func (t *DifferentialTester) Test(row quant.ProteinQuantRow) quant.TestResult {
	groupA := t.logValues(row, quant.GroupA)
	groupB := t.logValues(row, quant.GroupB)

	meanA, _ := stats.Mean(groupA)
	meanB, _ := stats.Mean(groupB)
	varA, _ := stats.SampleVariance(groupA)
	varB, _ := stats.SampleVariance(groupB)

	n1 := float64(len(groupA))
	n2 := float64(len(groupB))
	diff := meanB - meanA
	df := n1 + n2 - 2

	pooled := ((n1-1)*varA + (n2-1)*varB) / df
	se := math.Sqrt(pooled * (1/n1 + 1/n2))

	result := quant.TestResult{ProteinID: row.ProteinID, Difference: diff}

	if se == 0 {
		// Both groups constant. With equal means there is no evidence
		// of a difference at all; with distinct means the statistic is
		// unbounded. Both are defined results, not numeric faults.
		if diff == 0 {
			result.PValue = 1
			result.CILow, result.CIHigh = 0, 0
		} else {
			result.PValue = 0
			result.CILow, result.CIHigh = diff, diff
		}
		return result
	}

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	tStat := diff / se

	p := 2 * (1 - tDist.CDF(math.Abs(tStat)))
	if p > 1 {
		p = 1
	}
	if p < 0 {
		p = 0
	}
	result.PValue = p

	alpha := 1 - t.confidence
	tCrit := tDist.Quantile(1 - alpha/2)
	result.CILow = diff - tCrit*se
	result.CIHigh = diff + tCrit*se

	return result
}

// logValues extracts the group's abundances in log2.
func (t *DifferentialTester) logValues(row quant.ProteinQuantRow, g quant.Group) []float64 {
	idx := t.layout.Indices(g)
	values := make([]float64, len(idx))
	for i, j := range idx {
		values[i] = math.Log2(row.Samples[j])
	}
	return values
}
