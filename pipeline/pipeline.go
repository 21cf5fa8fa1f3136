package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"protquant/domain/quant"
	"protquant/internal"
	"protquant/internal/errors"
)

// Default decision thresholds.
const (
	DefaultFDRThreshold           = 0.01
	DefaultRelevanceFoldThreshold = 1.25
)

// Config parameterizes a pipeline run.
type Config struct {
	Layout                 quant.SampleLayout
	FDRThreshold           float64
	RelevanceFoldThreshold float64
}

// DefaultConfig returns a config with the standard thresholds for the
// given layout.
func DefaultConfig(layout quant.SampleLayout) Config {
	return Config{
		Layout:                 layout,
		FDRThreshold:           DefaultFDRThreshold,
		RelevanceFoldThreshold: DefaultRelevanceFoldThreshold,
	}
}

// Validate checks the config invariants.
func (c Config) Validate() error {
	if err := c.Layout.Validate(); err != nil {
		return errors.Wrap(err, "invalid sample layout")
	}
	if c.FDRThreshold <= 0 || c.FDRThreshold >= 1 {
		return errors.ConfigInvalid("FDR threshold must be in (0,1)")
	}
	if c.RelevanceFoldThreshold <= 1 {
		return errors.ConfigInvalid("relevance fold threshold must be > 1")
	}
	return nil
}

// RunManifest records what a run did: identifiers, thresholds, row
// counts at each stage, and the dropped-row diagnostics the aggregation
// step is required to surface.
type RunManifest struct {
	RunID                  string    `json:"run_id"`
	StartedAt              time.Time `json:"started_at"`
	RuntimeMs              int64     `json:"runtime_ms"`
	FDRThreshold           float64   `json:"fdr_threshold"`
	RelevanceFoldThreshold float64   `json:"relevance_fold_threshold"`

	InputPeptides     int `json:"input_peptides"`
	SequenceGroups    int `json:"sequence_groups"`
	Proteins          int `json:"proteins"`
	DroppedIncomplete int `json:"dropped_incomplete"`
	Significant       int `json:"significant"`
	Relevant          int `json:"relevant"`
}

// Pipeline composes the five stages of the protein abundance decision
// pipeline. Each stage is a pure function from one table to the next;
// data flows strictly forward keyed by protein identifier.
type Pipeline struct {
	cfg        Config
	aggregator *Aggregator
	normalizer *Normalizer
	tester     *DifferentialTester
	log        *internal.Logger
}

// New creates a pipeline after validating the config.
func New(cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:        cfg,
		aggregator: NewAggregator(cfg.Layout),
		normalizer: NewNormalizer(),
		tester:     NewDifferentialTester(cfg.Layout),
		log:        internal.DefaultLogger,
	}, nil
}

// Run executes aggregation, normalization, differential testing, FDR
// correction, and effect-size filtering over the loaded peptide table.
func (p *Pipeline) Run(ctx context.Context, records []quant.PeptideRecord) ([]quant.DecisionRow, *RunManifest, error) {
	start := time.Now()
	manifest := &RunManifest{
		RunID:                  uuid.NewString(),
		StartedAt:              start,
		FDRThreshold:           p.cfg.FDRThreshold,
		RelevanceFoldThreshold: p.cfg.RelevanceFoldThreshold,
	}

	aggregated, aggReport, err := p.aggregator.Aggregate(records)
	if err != nil {
		return nil, nil, errors.Wrap(err, "aggregation failed")
	}
	manifest.InputPeptides = aggReport.InputPeptides
	manifest.SequenceGroups = aggReport.SequenceGroups
	manifest.Proteins = aggReport.Proteins
	manifest.DroppedIncomplete = aggReport.DroppedIncomplete
	p.log.Info("[Pipeline] aggregated %d peptides into %d proteins (%d dropped incomplete)",
		aggReport.InputPeptides, aggReport.Proteins, aggReport.DroppedIncomplete)

	normalized, err := p.normalizer.Normalize(aggregated)
	if err != nil {
		return nil, nil, errors.Wrap(err, "normalization failed")
	}

	results, err := p.tester.TestAll(ctx, normalized)
	if err != nil {
		return nil, nil, errors.Wrap(err, "differential testing failed")
	}

	rows := CorrectFDR(results, p.cfg.FDRThreshold)
	rows = ApplyRelevance(rows, p.cfg.RelevanceFoldThreshold)

	for _, row := range rows {
		if row.Significant {
			manifest.Significant++
		}
		if row.Relevant {
			manifest.Relevant++
		}
	}
	manifest.RuntimeMs = time.Since(start).Milliseconds()
	p.log.Info("[Pipeline] run %s: %d tested, %d significant, %d relevant (%.0fms)",
		manifest.RunID, len(rows), manifest.Significant, manifest.Relevant, float64(manifest.RuntimeMs))

	return rows, manifest, nil
}
