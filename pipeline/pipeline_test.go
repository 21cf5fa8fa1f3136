package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"protquant/domain/quant"
	"protquant/internal/testkit"
)

func TestPipeline_ConfigValidation(t *testing.T) {
	_, err := New(Config{Layout: testLayout(), FDRThreshold: 0, RelevanceFoldThreshold: 1.25})
	assert.Error(t, err)

	_, err = New(Config{Layout: testLayout(), FDRThreshold: 0.01, RelevanceFoldThreshold: 1})
	assert.Error(t, err)

	_, err = New(Config{Layout: quant.SampleLayout{{Name: "a", Group: quant.GroupA}}, FDRThreshold: 0.01, RelevanceFoldThreshold: 1.25})
	assert.Error(t, err)

	_, err = New(DefaultConfig(testLayout()))
	assert.NoError(t, err)
}

func TestPipeline_AllFlatProteins(t *testing.T) {
	// Six identical proteins measured at 10 everywhere: no difference,
	// no evidence, nothing significant or relevant.
	pipe, err := New(DefaultConfig(testLayout()))
	require.NoError(t, err)

	var records []quant.PeptideRecord
	for _, id := range []string{"P1", "P2", "P3", "P4", "P5", "P6"} {
		records = append(records, quant.PeptideRecord{
			Sequence:  "SEQ" + id,
			ProteinID: id,
			Samples:   samples(10, 10, 10, 10, 10, 10),
		})
	}

	rows, manifest, err := pipe.Run(context.Background(), records)
	require.NoError(t, err)
	require.Len(t, rows, 6)

	for _, row := range rows {
		assert.Equal(t, 0.0, row.Difference)
		assert.Equal(t, 1.0, row.PValue)
		assert.Equal(t, 1.0, row.FDR)
		assert.False(t, row.Significant)
		assert.False(t, row.Relevant)
	}

	assert.Equal(t, 6, manifest.Proteins)
	assert.Equal(t, 0, manifest.DroppedIncomplete)
	assert.Equal(t, 0, manifest.Significant)
	assert.Equal(t, 0, manifest.Relevant)
	assert.NotEmpty(t, manifest.RunID)
}

func TestPipeline_RecoversTrueChanges(t *testing.T) {
	layout := testLayout()
	pipe, err := New(Config{
		Layout:                 layout,
		FDRThreshold:           0.05,
		RelevanceFoldThreshold: 1.25,
	})
	require.NoError(t, err)

	spec := testkit.DatasetSpec{
		Proteins:           120,
		PeptidesPerProtein: 4,
		Increased:          8,
		Decreased:          8,
		FoldChange:         4.0,
		ReplicateCV:        0.03,
		MissingRate:        0,
	}
	records := testkit.NewGenerator(7, layout).GeneratePeptides(spec)

	rows, manifest, err := pipe.Run(context.Background(), records)
	require.NoError(t, err)
	require.Len(t, rows, spec.Proteins)
	assert.Equal(t, 0, manifest.DroppedIncomplete)

	hits := map[string]quant.DecisionRow{}
	for _, row := range rows {
		if row.Significant && row.Relevant {
			hits[row.ProteinID] = row
		}
	}

	// Every true change is a strong 4-fold shift with tiny noise; all
	// sixteen must be recovered with the right direction.
	for p := 0; p < spec.Increased; p++ {
		id := testkit.ProteinID(p)
		row, ok := hits[id]
		require.True(t, ok, "expected %s to be called", id)
		assert.Greater(t, row.Difference, 0.0)
	}
	for p := spec.Increased; p < spec.Increased+spec.Decreased; p++ {
		id := testkit.ProteinID(p)
		row, ok := hits[id]
		require.True(t, ok, "expected %s to be called", id)
		assert.Less(t, row.Difference, 0.0)
	}
}

func TestPipeline_CountsDroppedRows(t *testing.T) {
	pipe, err := New(DefaultConfig(testLayout()))
	require.NoError(t, err)

	records := []quant.PeptideRecord{
		{Sequence: "AAA", ProteinID: "P1", Samples: samples(10, 10, 10, 20, 20, 20)},
		{Sequence: "BBB", ProteinID: "P2", Samples: withAbsent(samples(10, 10, 10, 20, 20, 20), 5)},
	}

	rows, manifest, err := pipe.Run(context.Background(), records)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, 1, manifest.DroppedIncomplete)
	assert.Equal(t, 2, manifest.InputPeptides)
}
