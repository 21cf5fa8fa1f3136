package pipeline

import (
	"math"

	"protquant/domain/quant"
)

// MinimumMagnitudeEffect reduces a confidence interval to the smallest
// change it still supports. An interval that straddles zero, or merely
// touches it at either bound, supports no change at all and collapses
// to 0; otherwise the bound closer to zero is the most conservative
// plausible effect. Thresholding on this value instead of the point
// estimate keeps noisy, wide intervals from producing relevance calls.
func MinimumMagnitudeEffect(ciLow, ciHigh float64) float64 {
	if ciLow == 0 || ciHigh == 0 {
		return 0
	}
	if (ciLow < 0) != (ciHigh < 0) {
		return 0
	}
	if math.Abs(ciLow) < math.Abs(ciHigh) {
		return ciLow
	}
	return ciHigh
}

// ApplyRelevance annotates each row with the biological-relevance call:
// the minimum-magnitude effect must exceed log2(foldThreshold).
func ApplyRelevance(rows []quant.DecisionRow, foldThreshold float64) []quant.DecisionRow {
	cutoff := math.Log2(foldThreshold)
	out := make([]quant.DecisionRow, len(rows))
	for i, row := range rows {
		effect := MinimumMagnitudeEffect(row.CILow, row.CIHigh)
		row.Relevant = math.Abs(effect) > cutoff
		out[i] = row
	}
	return out
}
