package quant

import (
	"fmt"

	"gopkg.in/guregu/null.v3"
)

// Group labels the experimental condition a sample column belongs to.
type Group string

const (
	GroupA Group = "A"
	GroupB Group = "B"
)

// SampleColumn pairs a quantification column name with its condition group.
type SampleColumn struct {
	Name  string `json:"name"`
	Group Group  `json:"group"`
}

// SampleLayout is the ordered set of quantification columns. The order
// fixes the position of every abundance slice flowing through the
// pipeline; group membership is carried explicitly per column rather
// than assumed from position.
type SampleLayout []SampleColumn

// DefaultLayout builds the common two-condition, three-replicate layout:
// prefixA_1..3 assigned to group A followed by prefixB_1..3 assigned to
// group B.
func DefaultLayout(prefixA, prefixB string) SampleLayout {
	layout := make(SampleLayout, 0, 6)
	for i := 1; i <= 3; i++ {
		layout = append(layout, SampleColumn{Name: fmt.Sprintf("%s_%d", prefixA, i), Group: GroupA})
	}
	for i := 1; i <= 3; i++ {
		layout = append(layout, SampleColumn{Name: fmt.Sprintf("%s_%d", prefixB, i), Group: GroupB})
	}
	return layout
}

// Validate checks layout invariants: both groups present, at least two
// replicates per group (one degree of freedom for the pooled test), and
// no duplicate column names.
func (l SampleLayout) Validate() error {
	counts := map[Group]int{}
	seen := map[string]bool{}
	for _, col := range l {
		if col.Name == "" {
			return fmt.Errorf("sample column name must be set")
		}
		if col.Group != GroupA && col.Group != GroupB {
			return fmt.Errorf("sample column %q has unknown group %q", col.Name, col.Group)
		}
		if seen[col.Name] {
			return fmt.Errorf("duplicate sample column %q", col.Name)
		}
		seen[col.Name] = true
		counts[col.Group]++
	}
	if counts[GroupA] < 2 || counts[GroupB] < 2 {
		return fmt.Errorf("each group needs at least 2 replicates, got A=%d B=%d", counts[GroupA], counts[GroupB])
	}
	return nil
}

// Indices returns the positions of the columns assigned to g, in layout order.
func (l SampleLayout) Indices(g Group) []int {
	var idx []int
	for i, col := range l {
		if col.Group == g {
			idx = append(idx, i)
		}
	}
	return idx
}

// Names returns the column names in layout order.
func (l SampleLayout) Names() []string {
	names := make([]string, len(l))
	for i, col := range l {
		names[i] = col.Name
	}
	return names
}

// PeptideRecord is one measured peptide row as loaded from the
// quantification export. A missing abundance is an explicit absent
// value (null.Float with Valid=false), never zero. Records are
// immutable once loaded.
type PeptideRecord struct {
	Sequence     string
	Modification string
	ProteinID    string
	Samples      []null.Float // one per layout column
}

// ProteinQuantRow is a complete protein-level quantification: one value
// per layout column, no absences. Aggregation drops any protein that
// cannot satisfy this.
type ProteinQuantRow struct {
	ProteinID string
	Samples   []float64
}

// Clone returns a copy with an independent sample slice. Stages hand
// each other fresh tables instead of mutating shared rows.
func (r ProteinQuantRow) Clone() ProteinQuantRow {
	samples := make([]float64, len(r.Samples))
	copy(samples, r.Samples)
	return ProteinQuantRow{ProteinID: r.ProteinID, Samples: samples}
}

// TestResult holds the per-protein outcome of the differential test.
// Difference and the confidence interval are in log2 units,
// mean(group B) − mean(group A).
type TestResult struct {
	ProteinID  string  `json:"protein_id"`
	PValue     float64 `json:"p_value"`
	Difference float64 `json:"difference"`
	CILow      float64 `json:"ci_low"`
	CIHigh     float64 `json:"ci_high"`
}

// Validate checks result invariants.
func (t TestResult) Validate() error {
	if t.ProteinID == "" {
		return fmt.Errorf("protein id must be set")
	}
	if t.PValue < 0 || t.PValue > 1 {
		return fmt.Errorf("p-value must be in [0,1], got %f", t.PValue)
	}
	if t.CILow > t.CIHigh {
		return fmt.Errorf("confidence interval inverted: [%f, %f]", t.CILow, t.CIHigh)
	}
	return nil
}

// DecisionRow is the terminal entity: a TestResult annotated with the
// FDR-corrected significance call, the relevance call from the
// CI-derived effect, and optional annotation fields from the
// identifier mapping (null when no mapping row matched).
type DecisionRow struct {
	TestResult
	FDR         float64     `json:"fdr"`
	Significant bool        `json:"significant"`
	Relevant    bool        `json:"relevant"`
	Name        null.String `json:"name"`
	Description null.String `json:"description"`
}

// Annotation maps a protein identifier to a human-readable name and
// description, loaded from the secondary annotation input.
type Annotation struct {
	ProteinID   string
	Name        null.String
	Description null.String
}
