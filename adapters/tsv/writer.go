package tsv

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"protquant/domain/quant"
	"protquant/internal/errors"
	"protquant/internal/report"
	"protquant/pipeline"
)

// Output file names inside the output directory.
const (
	DecisionFile   = "protein_decisions.tsv"
	IncreasedFile  = "significant_increase.txt"
	DecreasedFile  = "significant_decrease.txt"
	BackgroundFile = "background.txt"
)

// DecisionWriter writes the terminal decision table and the derived
// identifier lists into an output directory.
type DecisionWriter struct {
	outDir string
}

// NewDecisionWriter creates a writer rooted at outDir.
func NewDecisionWriter(outDir string) *DecisionWriter {
	return &DecisionWriter{outDir: outDir}
}

// WriteDecisions writes the full annotated table, one row per protein.
// Null annotation fields are written as NA, matching the input's
// missing-value convention.
func (w *DecisionWriter) WriteDecisions(rows []quant.DecisionRow) error {
	if err := os.MkdirAll(w.outDir, 0o755); err != nil {
		return errors.IOError(err, "failed to create output directory")
	}
	path := filepath.Join(w.outDir, DecisionFile)
	file, err := os.Create(path)
	if err != nil {
		return errors.IOError(err, "failed to create "+path)
	}
	defer file.Close()

	out := csv.NewWriter(file)
	out.Comma = '\t'

	header := []string{"protein_id", "name", "description", "p_value", "difference", "ci_low", "ci_high", "fdr", "significant", "relevant"}
	if err := out.Write(header); err != nil {
		return errors.IOError(err, "failed to write decision header")
	}
	for _, row := range rows {
		record := []string{
			row.ProteinID,
			nullOrNA(row.Name.Ptr()),
			nullOrNA(row.Description.Ptr()),
			formatFloat(row.PValue),
			formatFloat(row.Difference),
			formatFloat(row.CILow),
			formatFloat(row.CIHigh),
			formatFloat(row.FDR),
			strconv.FormatBool(row.Significant),
			strconv.FormatBool(row.Relevant),
		}
		if err := out.Write(record); err != nil {
			return errors.IOError(err, "failed to write decision row")
		}
	}
	out.Flush()
	return errors.Wrap(out.Error(), "failed to flush decision table")
}

// WriteIdentifierLists writes the three newline-delimited lists: the
// foreground split into significant-and-relevant increases and
// decreases, and the background of every tested protein.
func (w *DecisionWriter) WriteIdentifierLists(rows []quant.DecisionRow) error {
	if err := os.MkdirAll(w.outDir, 0o755); err != nil {
		return errors.IOError(err, "failed to create output directory")
	}

	var increased, decreased, background []string
	for _, row := range rows {
		background = append(background, row.ProteinID)
		if !row.Significant || !row.Relevant {
			continue
		}
		if row.Difference > 0 {
			increased = append(increased, row.ProteinID)
		} else if row.Difference < 0 {
			decreased = append(decreased, row.ProteinID)
		}
	}

	lists := map[string][]string{
		IncreasedFile:  increased,
		DecreasedFile:  decreased,
		BackgroundFile: background,
	}
	for name, ids := range lists {
		path := filepath.Join(w.outDir, name)
		content := strings.Join(ids, "\n")
		if len(ids) > 0 {
			content += "\n"
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return errors.IOError(err, "failed to write "+path)
		}
	}
	return nil
}

// WriteReport renders the run summary as markdown and HTML next to the
// decision table.
func (w *DecisionWriter) WriteReport(manifest *pipeline.RunManifest, rows []quant.DecisionRow) error {
	return report.Write(w.outDir, manifest, rows)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func nullOrNA(s *string) string {
	if s == nil {
		return "NA"
	}
	return *s
}
