package tsv

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"

	"gopkg.in/guregu/null.v3"

	"protquant/domain/quant"
	"protquant/internal/errors"
)

// Required identity columns in the peptide export.
const (
	ColumnSequence      = "Sequence"
	ColumnModifications = "Modifications"
	ColumnProtein       = "master_protein"
)

// PeptideReader loads a tab-separated peptide quantification export.
// The header row is matched against the three identity columns plus the
// layout's sample columns; everything else in the file is ignored.
type PeptideReader struct {
	path   string
	layout quant.SampleLayout
}

// NewPeptideReader creates a reader for the given file and layout.
func NewPeptideReader(path string, layout quant.SampleLayout) *PeptideReader {
	return &PeptideReader{path: path, layout: layout}
}

// ReadPeptides parses the file into immutable peptide records.
func (r *PeptideReader) ReadPeptides() ([]quant.PeptideRecord, error) {
	file, err := os.Open(r.path)
	if err != nil {
		return nil, errors.IOError(err, "failed to open peptide file "+r.path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.IOError(err, "failed to read peptide file "+r.path)
	}
	if len(rows) < 2 {
		return nil, errors.MalformedInput("peptide file %s needs a header row and at least one data row", r.path)
	}

	return ParseRecords(rows[0], rows[1:], r.layout)
}

// ParseRecords converts a header row plus string data rows into peptide
// records. Shared by the TSV and spreadsheet loaders. A missing
// required column or a non-numeric quantification cell is malformed
// input and aborts the load.
func ParseRecords(header []string, rows [][]string, layout quant.SampleLayout) ([]quant.PeptideRecord, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	required := []string{ColumnSequence, ColumnModifications, ColumnProtein}
	required = append(required, layout.Names()...)
	for _, name := range required {
		if _, ok := index[name]; !ok {
			return nil, errors.MalformedInput("required column %q not found in header", name)
		}
	}

	sampleIdx := make([]int, len(layout))
	for j, name := range layout.Names() {
		sampleIdx[j] = index[name]
	}

	records := make([]quant.PeptideRecord, 0, len(rows))
	for i, row := range rows {
		rec := quant.PeptideRecord{
			Sequence:     cell(row, index[ColumnSequence]),
			Modification: cell(row, index[ColumnModifications]),
			ProteinID:    cell(row, index[ColumnProtein]),
			Samples:      make([]null.Float, len(layout)),
		}
		if rec.Sequence == "" || rec.ProteinID == "" {
			return nil, errors.MalformedInput("row %d is missing a sequence or protein identifier", i+2)
		}
		for j, col := range sampleIdx {
			value, err := parseAbundance(cell(row, col))
			if err != nil {
				return nil, errors.MalformedInput("row %d column %q: %v", i+2, layout[j].Name, err)
			}
			rec.Samples[j] = value
		}
		records = append(records, rec)
	}
	return records, nil
}

// parseAbundance turns a quantification cell into an optional value.
// Empty cells and NA-style markers are explicit absences; anything else
// must parse as a number.
func parseAbundance(s string) (null.Float, error) {
	switch strings.TrimSpace(s) {
	case "", "NA", "NaN", "n/a":
		return null.Float{}, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return null.Float{}, err
	}
	return null.FloatFrom(v), nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
