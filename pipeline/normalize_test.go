package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"protquant/domain/quant"
	"protquant/internal/errors"
)

func TestNormalizer_ColumnSumsEqualMeanAfter(t *testing.T) {
	n := NewNormalizer()
	rows := []quant.ProteinQuantRow{
		{ProteinID: "P1", Samples: []float64{2, 1, 4}},
		{ProteinID: "P2", Samples: []float64{2, 1, 4}},
	}

	out, err := n.Normalize(rows)
	require.NoError(t, err)
	require.Len(t, out, 2)

	// Input column sums: 4, 2, 8; mean 14/3. Every output column must
	// sum to that mean.
	meanSum := 14.0 / 3.0
	for j := 0; j < 3; j++ {
		sum := 0.0
		for _, row := range out {
			sum += row.Samples[j]
		}
		assert.InDelta(t, meanSum, sum, 1e-9)
	}
}

func TestNormalizer_PreservesWithinColumnOrdering(t *testing.T) {
	n := NewNormalizer()
	rows := []quant.ProteinQuantRow{
		{ProteinID: "P1", Samples: []float64{5, 1, 9}},
		{ProteinID: "P2", Samples: []float64{3, 8, 2}},
		{ProteinID: "P3", Samples: []float64{7, 4, 6}},
	}

	out, err := n.Normalize(rows)
	require.NoError(t, err)

	for j := 0; j < 3; j++ {
		for a := 0; a < len(rows); a++ {
			for b := 0; b < len(rows); b++ {
				before := rows[a].Samples[j] < rows[b].Samples[j]
				after := out[a].Samples[j] < out[b].Samples[j]
				assert.Equal(t, before, after, "ordering changed in column %d", j)
			}
		}
	}
}

func TestNormalizer_DoesNotMutateInput(t *testing.T) {
	n := NewNormalizer()
	rows := []quant.ProteinQuantRow{
		{ProteinID: "P1", Samples: []float64{2, 4}},
		{ProteinID: "P2", Samples: []float64{6, 4}},
	}

	_, err := n.Normalize(rows)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 4}, rows[0].Samples)
	assert.Equal(t, []float64{6, 4}, rows[1].Samples)
}

func TestNormalizer_ZeroColumnSumIsMalformed(t *testing.T) {
	n := NewNormalizer()
	rows := []quant.ProteinQuantRow{
		{ProteinID: "P1", Samples: []float64{1, 0}},
		{ProteinID: "P2", Samples: []float64{1, 0}},
	}

	_, err := n.Normalize(rows)
	require.Error(t, err)
	assert.Equal(t, errors.CodeMalformedInput, errors.GetCode(err))
}

func TestNormalizer_EmptyInput(t *testing.T) {
	n := NewNormalizer()
	out, err := n.Normalize(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}
