package app

import (
	"context"

	"gopkg.in/guregu/null.v3"

	"protquant/domain/quant"
	"protquant/internal"
	"protquant/internal/errors"
	"protquant/pipeline"
	"protquant/ports"
)

// DecisionService orchestrates a full decision run: load the peptide
// table, run the pipeline, attach annotations, and hand the terminal
// table to the sink. The annotation join is left-outer on the decision
// side: every decision row is preserved and rows without a mapping keep
// null name and description.
type DecisionService struct {
	source      ports.PeptideSource
	annotations ports.AnnotationSource // optional
	sink        ports.DecisionSink
	pipeline    *pipeline.Pipeline
	log         *internal.Logger
}

// NewDecisionService wires a service. annotations may be nil when no
// mapping file is configured.
func NewDecisionService(source ports.PeptideSource, annotations ports.AnnotationSource, sink ports.DecisionSink, p *pipeline.Pipeline) *DecisionService {
	return &DecisionService{
		source:      source,
		annotations: annotations,
		sink:        sink,
		pipeline:    p,
		log:         internal.DefaultLogger,
	}
}

// Run executes the full load→decide→annotate→write sequence and
// returns the run manifest.
func (s *DecisionService) Run(ctx context.Context) (*pipeline.RunManifest, error) {
	records, err := s.source.ReadPeptides()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load peptide table")
	}
	s.log.Info("[DecisionService] loaded %d peptide records", len(records))

	rows, manifest, err := s.pipeline.Run(ctx, records)
	if err != nil {
		return nil, err
	}

	rows, err = s.annotate(rows)
	if err != nil {
		return nil, err
	}

	if err := s.sink.WriteDecisions(rows); err != nil {
		return nil, errors.Wrap(err, "failed to write decision table")
	}
	if err := s.sink.WriteIdentifierLists(rows); err != nil {
		return nil, errors.Wrap(err, "failed to write identifier lists")
	}
	if err := s.sink.WriteReport(manifest, rows); err != nil {
		return nil, errors.Wrap(err, "failed to write run report")
	}
	return manifest, nil
}

// annotate joins names and descriptions onto the decision rows.
func (s *DecisionService) annotate(rows []quant.DecisionRow) ([]quant.DecisionRow, error) {
	if s.annotations == nil {
		return rows, nil
	}
	mapping, err := s.annotations.ReadAnnotations()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load annotations")
	}

	matched := 0
	out := make([]quant.DecisionRow, len(rows))
	for i, row := range rows {
		if ann, ok := mapping[row.ProteinID]; ok {
			row.Name = ann.Name
			row.Description = ann.Description
			matched++
		} else {
			row.Name = null.String{}
			row.Description = null.String{}
		}
		out[i] = row
	}
	s.log.Info("[DecisionService] annotated %d/%d proteins", matched, len(rows))
	return out, nil
}
