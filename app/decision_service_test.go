package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"

	"protquant/domain/quant"
	"protquant/pipeline"
)

type fakeSource struct {
	records []quant.PeptideRecord
	err     error
}

func (f *fakeSource) ReadPeptides() ([]quant.PeptideRecord, error) {
	return f.records, f.err
}

type fakeAnnotations struct {
	mapping map[string]quant.Annotation
	err     error
}

func (f *fakeAnnotations) ReadAnnotations() (map[string]quant.Annotation, error) {
	return f.mapping, f.err
}

type fakeSink struct {
	decisions []quant.DecisionRow
	lists     []quant.DecisionRow
	manifest  *pipeline.RunManifest
}

func (f *fakeSink) WriteDecisions(rows []quant.DecisionRow) error {
	f.decisions = rows
	return nil
}

func (f *fakeSink) WriteIdentifierLists(rows []quant.DecisionRow) error {
	f.lists = rows
	return nil
}

func (f *fakeSink) WriteReport(manifest *pipeline.RunManifest, rows []quant.DecisionRow) error {
	f.manifest = manifest
	return nil
}

func testLayout() quant.SampleLayout {
	return quant.DefaultLayout("control", "treated")
}

func testRecords() []quant.PeptideRecord {
	samples := func(values ...float64) []null.Float {
		out := make([]null.Float, len(values))
		for i, v := range values {
			out[i] = null.FloatFrom(v)
		}
		return out
	}
	return []quant.PeptideRecord{
		{Sequence: "AAA", ProteinID: "P1", Samples: samples(10, 11, 9, 40, 41, 39)},
		{Sequence: "BBB", ProteinID: "P2", Samples: samples(10, 10, 10, 10, 10, 10)},
	}
}

func newTestPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()
	p, err := pipeline.New(pipeline.DefaultConfig(testLayout()))
	require.NoError(t, err)
	return p
}

func TestDecisionService_Run(t *testing.T) {
	sink := &fakeSink{}
	svc := NewDecisionService(
		&fakeSource{records: testRecords()},
		&fakeAnnotations{mapping: map[string]quant.Annotation{
			"P1": {ProteinID: "P1", Name: null.StringFrom("GENE1"), Description: null.StringFrom("first")},
		}},
		sink,
		newTestPipeline(t),
	)

	manifest, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, manifest)
	assert.Equal(t, 2, manifest.Proteins)

	require.Len(t, sink.decisions, 2)
	assert.Equal(t, sink.decisions, sink.lists)
	assert.Same(t, manifest, sink.manifest)

	byID := map[string]quant.DecisionRow{}
	for _, row := range sink.decisions {
		byID[row.ProteinID] = row
	}

	// Left-outer join: the mapped protein carries its annotation, the
	// unmapped one survives with nulls.
	assert.Equal(t, "GENE1", byID["P1"].Name.String)
	assert.True(t, byID["P1"].Name.Valid)
	assert.False(t, byID["P2"].Name.Valid)
	assert.False(t, byID["P2"].Description.Valid)
}

func TestDecisionService_NilAnnotationSource(t *testing.T) {
	sink := &fakeSink{}
	svc := NewDecisionService(&fakeSource{records: testRecords()}, nil, sink, newTestPipeline(t))

	_, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, sink.decisions, 2)
	for _, row := range sink.decisions {
		assert.False(t, row.Name.Valid)
	}
}

func TestDecisionService_SourceErrorPropagates(t *testing.T) {
	svc := NewDecisionService(&fakeSource{err: assert.AnError}, nil, &fakeSink{}, newTestPipeline(t))

	_, err := svc.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load peptide table")
}

func TestDecisionService_AnnotationErrorPropagates(t *testing.T) {
	svc := NewDecisionService(
		&fakeSource{records: testRecords()},
		&fakeAnnotations{err: assert.AnError},
		&fakeSink{},
		newTestPipeline(t),
	)

	_, err := svc.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load annotations")
}
