package pipeline

import (
	"sort"

	"github.com/montanaflynn/stats"
	"gopkg.in/guregu/null.v3"

	"protquant/domain/quant"
)

// Aggregator collapses peptide-level measurements into one complete
// quantification row per protein. Two grouping passes: duplicate
// peptide-modification rows are summed per (sequence, protein), then
// the sequence-level sums are reduced to a per-column median per
// protein. Rows that still carry an absent value after the median step
// are dropped, not imputed.
type Aggregator struct {
	layout quant.SampleLayout
}

// NewAggregator creates an aggregator for the given sample layout.
func NewAggregator(layout quant.SampleLayout) *Aggregator {
	return &Aggregator{layout: layout}
}

// AggregateReport carries the diagnostics the aggregation step must
// expose: how many sequence groups were formed, how many proteins
// survived, and how many were dropped for incompleteness.
type AggregateReport struct {
	InputPeptides     int
	SequenceGroups    int
	Proteins          int
	DroppedIncomplete int
}

type sequenceKey struct {
	sequence  string
	proteinID string
}

// Aggregate runs both grouping passes and returns one complete row per
// protein, sorted by protein identifier for deterministic output.
func (a *Aggregator) Aggregate(records []quant.PeptideRecord) ([]quant.ProteinQuantRow, AggregateReport, error) {
	width := len(a.layout)
	report := AggregateReport{InputPeptides: len(records)}

	// Pass 1: sum duplicate peptide-modification rows per (sequence,
	// protein). Addition propagates absence: absent + x = absent.
	sums := make(map[sequenceKey][]null.Float)
	for _, rec := range records {
		key := sequenceKey{sequence: rec.Sequence, proteinID: rec.ProteinID}
		sum, ok := sums[key]
		if !ok {
			sum = make([]null.Float, width)
			for j := range sum {
				sum[j] = null.FloatFrom(0)
			}
			sums[key] = sum
		}
		for j := 0; j < width; j++ {
			if !sum[j].Valid {
				continue
			}
			if j >= len(rec.Samples) || !rec.Samples[j].Valid {
				sum[j] = null.Float{}
				continue
			}
			sum[j] = null.FloatFrom(sum[j].Float64 + rec.Samples[j].Float64)
		}
	}
	report.SequenceGroups = len(sums)

	// Pass 2: per-protein, per-column median across the sequence sums.
	// An absent sequence sum makes the whole column median absent,
	// which in turn drops the protein. A single contributing sequence
	// is its own median.
	byProtein := make(map[string][][]null.Float)
	for key, sum := range sums {
		byProtein[key.proteinID] = append(byProtein[key.proteinID], sum)
	}

	proteinIDs := make([]string, 0, len(byProtein))
	for id := range byProtein {
		proteinIDs = append(proteinIDs, id)
	}
	sort.Strings(proteinIDs)

	rows := make([]quant.ProteinQuantRow, 0, len(proteinIDs))
	for _, id := range proteinIDs {
		group := byProtein[id]
		row := quant.ProteinQuantRow{ProteinID: id, Samples: make([]float64, width)}
		complete := true
		for j := 0; j < width && complete; j++ {
			values := make([]float64, 0, len(group))
			for _, sum := range group {
				if !sum[j].Valid {
					complete = false
					break
				}
				values = append(values, sum[j].Float64)
			}
			if !complete {
				break
			}
			median, err := stats.Median(values)
			if err != nil {
				return nil, report, err
			}
			row.Samples[j] = median
		}
		if !complete {
			report.DroppedIncomplete++
			continue
		}
		rows = append(rows, row)
	}
	report.Proteins = len(rows)

	return rows, report, nil
}
