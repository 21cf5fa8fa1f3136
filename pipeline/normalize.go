package pipeline

import (
	"github.com/montanaflynn/stats"

	"protquant/domain/quant"
	"protquant/internal/errors"
)

// Normalizer rescales each sample column so that total abundance is
// comparable across samples: every column is divided by its correction
// factor, column_sum / mean(column_sums). After normalization every
// column sums to the mean of the original column sums.
type Normalizer struct{}

// NewNormalizer creates a normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize returns a fresh table with identical row count and key set.
// A zero column sum leaves the correction factor undefined and is
// rejected as malformed input.
func (n *Normalizer) Normalize(rows []quant.ProteinQuantRow) ([]quant.ProteinQuantRow, error) {
	if len(rows) == 0 {
		return []quant.ProteinQuantRow{}, nil
	}

	width := len(rows[0].Samples)
	colSums := make([]float64, width)
	for _, row := range rows {
		for j, v := range row.Samples {
			colSums[j] += v
		}
	}

	meanSum, err := stats.Mean(colSums)
	if err != nil {
		return nil, errors.Wrap(err, "failed to average column sums")
	}

	factors := make([]float64, width)
	for j, sum := range colSums {
		if sum == 0 {
			return nil, errors.MalformedInput("sample column %d has zero total abundance, correction factor undefined", j)
		}
		factors[j] = sum / meanSum
	}

	out := make([]quant.ProteinQuantRow, len(rows))
	for i, row := range rows {
		fresh := row.Clone()
		for j := range fresh.Samples {
			fresh.Samples[j] /= factors[j]
		}
		out[i] = fresh
	}
	return out, nil
}
