package testkit

import (
	"fmt"
	"math"
	"math/rand"

	"gopkg.in/guregu/null.v3"

	"protquant/domain/quant"
)

// Generator produces deterministic synthetic peptide datasets for the
// simulate command and for end-to-end tests. All randomness flows from
// the seed; the same seed yields the same dataset.
type Generator struct {
	rng    *rand.Rand
	layout quant.SampleLayout
}

// NewGenerator creates a seeded generator for the given layout.
func NewGenerator(seed int64, layout quant.SampleLayout) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed)), layout: layout}
}

// DatasetSpec describes the shape of a synthetic dataset.
type DatasetSpec struct {
	Proteins           int
	PeptidesPerProtein int
	Increased          int     // proteins with a true fold increase in group B
	Decreased          int     // proteins with a true fold decrease in group B
	FoldChange         float64 // true fold change for the changed proteins
	ReplicateCV        float64 // multiplicative replicate noise, e.g. 0.05
	MissingRate        float64 // chance of an absent measurement per cell
}

// DefaultSpec is a small dataset with a handful of true changes.
func DefaultSpec() DatasetSpec {
	return DatasetSpec{
		Proteins:           200,
		PeptidesPerProtein: 4,
		Increased:          10,
		Decreased:          10,
		FoldChange:         2.0,
		ReplicateCV:        0.05,
		MissingRate:        0.01,
	}
}

// ProteinID returns the identifier the generator assigns to the p-th
// protein (zero-based).
func ProteinID(p int) string {
	return fmt.Sprintf("P%05d", p+1)
}

// GeneratePeptides builds the peptide table. The first spec.Increased
// proteins carry a true increase in group B, the following
// spec.Decreased a true decrease; the rest are unchanged.
func (g *Generator) GeneratePeptides(spec DatasetSpec) []quant.PeptideRecord {
	records := make([]quant.PeptideRecord, 0, spec.Proteins*spec.PeptidesPerProtein)

	for p := 0; p < spec.Proteins; p++ {
		proteinID := ProteinID(p)
		fold := 1.0
		if p < spec.Increased {
			fold = spec.FoldChange
		} else if p < spec.Increased+spec.Decreased {
			fold = 1 / spec.FoldChange
		}

		for q := 0; q < spec.PeptidesPerProtein; q++ {
			// Peptide baselines span a few orders of magnitude, as in
			// real intensity data.
			base := math.Pow(2, 16+6*g.rng.Float64())
			rec := quant.PeptideRecord{
				Sequence:  fmt.Sprintf("SEQ%05d_%02d", p+1, q+1),
				ProteinID: proteinID,
				Samples:   make([]null.Float, len(g.layout)),
			}
			for j, col := range g.layout {
				if g.rng.Float64() < spec.MissingRate {
					rec.Samples[j] = null.Float{}
					continue
				}
				value := base * g.noise(spec.ReplicateCV)
				if col.Group == quant.GroupB {
					value *= fold
				}
				rec.Samples[j] = null.FloatFrom(value)
			}
			records = append(records, rec)
		}
	}
	return records
}

// GenerateAnnotations builds a mapping covering every generated protein.
func (g *Generator) GenerateAnnotations(spec DatasetSpec) map[string]quant.Annotation {
	out := make(map[string]quant.Annotation, spec.Proteins)
	for p := 0; p < spec.Proteins; p++ {
		id := ProteinID(p)
		out[id] = quant.Annotation{
			ProteinID:   id,
			Name:        null.StringFrom(fmt.Sprintf("GENE%d", p+1)),
			Description: null.StringFrom(fmt.Sprintf("synthetic protein %d", p+1)),
		}
	}
	return out
}

// noise draws a multiplicative log-normal factor with the given CV.
func (g *Generator) noise(cv float64) float64 {
	if cv <= 0 {
		return 1
	}
	sigma := math.Sqrt(math.Log(1 + cv*cv))
	return math.Exp(g.rng.NormFloat64()*sigma - sigma*sigma/2)
}
