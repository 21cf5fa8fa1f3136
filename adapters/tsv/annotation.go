package tsv

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/gocarina/gocsv"
	"gopkg.in/guregu/null.v3"

	"protquant/domain/quant"
	"protquant/internal/errors"
)

// annotationRow mirrors the fixed schema of the identifier mapping file.
type annotationRow struct {
	ProteinID   string `csv:"protein_id"`
	Name        string `csv:"name"`
	Description string `csv:"description"`
}

// AnnotationReader loads the tab-separated protein-identifier mapping
// used to attach names and descriptions to decision rows.
type AnnotationReader struct {
	path string
}

// NewAnnotationReader creates a reader for the given mapping file.
func NewAnnotationReader(path string) *AnnotationReader {
	return &AnnotationReader{path: path}
}

// ReadAnnotations parses the mapping keyed by protein identifier. Empty
// name or description cells stay null.
func (r *AnnotationReader) ReadAnnotations() (map[string]quant.Annotation, error) {
	file, err := os.Open(r.path)
	if err != nil {
		return nil, errors.IOError(err, "failed to open annotation file "+r.path)
	}
	defer file.Close()

	// Tell gocsv to use tab as the delimiter
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		reader := csv.NewReader(in)
		reader.Comma = '\t'
		reader.LazyQuotes = true
		return reader
	})

	var rows []*annotationRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, errors.MalformedInput("failed to parse annotation file %s: %v", r.path, err)
	}

	out := make(map[string]quant.Annotation, len(rows))
	for _, row := range rows {
		if row.ProteinID == "" {
			continue
		}
		out[row.ProteinID] = quant.Annotation{
			ProteinID:   row.ProteinID,
			Name:        nullString(row.Name),
			Description: nullString(row.Description),
		}
	}
	return out, nil
}

func nullString(s string) null.String {
	if s == "" {
		return null.String{}
	}
	return null.StringFrom(s)
}
