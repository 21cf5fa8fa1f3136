package ports

import (
	"protquant/domain/quant"
	"protquant/pipeline"
)

// PeptideSource loads the raw peptide quantification table. Records are
// immutable once returned; the loader owns all format concerns.
type PeptideSource interface {
	ReadPeptides() ([]quant.PeptideRecord, error)
}

// AnnotationSource maps protein identifiers to names and descriptions,
// keyed by protein ID.
type AnnotationSource interface {
	ReadAnnotations() (map[string]quant.Annotation, error)
}

// DecisionSink consumes the terminal decision table: the full annotated
// table, the derived foreground/background identifier lists, and the
// run report.
type DecisionSink interface {
	WriteDecisions(rows []quant.DecisionRow) error
	WriteIdentifierLists(rows []quant.DecisionRow) error
	WriteReport(manifest *pipeline.RunManifest, rows []quant.DecisionRow) error
}
