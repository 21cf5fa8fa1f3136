package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"protquant/domain/quant"
	"protquant/internal/errors"
	"protquant/pipeline"
)

// Report file names inside the output directory.
const (
	MarkdownFile = "run_report.md"
	HTMLFile     = "run_report.html"
)

// Build renders the run summary as markdown: thresholds, per-stage row
// counts (including the dropped-row diagnostics), and the proteins
// called both significant and relevant.
func Build(manifest *pipeline.RunManifest, rows []quant.DecisionRow) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Protein abundance decision run %s\n\n", manifest.RunID)
	fmt.Fprintf(&b, "Started %s, finished in %dms.\n\n", manifest.StartedAt.Format("2006-01-02 15:04:05"), manifest.RuntimeMs)

	b.WriteString("## Parameters\n\n")
	fmt.Fprintf(&b, "| Parameter | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| FDR threshold | %g |\n", manifest.FDRThreshold)
	fmt.Fprintf(&b, "| Relevance fold threshold | %g |\n\n", manifest.RelevanceFoldThreshold)

	b.WriteString("## Row counts\n\n")
	fmt.Fprintf(&b, "| Stage | Rows |\n|---|---|\n")
	fmt.Fprintf(&b, "| Input peptides | %d |\n", manifest.InputPeptides)
	fmt.Fprintf(&b, "| Sequence groups | %d |\n", manifest.SequenceGroups)
	fmt.Fprintf(&b, "| Complete proteins | %d |\n", manifest.Proteins)
	fmt.Fprintf(&b, "| Dropped incomplete | %d |\n", manifest.DroppedIncomplete)
	fmt.Fprintf(&b, "| Significant (FDR) | %d |\n", manifest.Significant)
	fmt.Fprintf(&b, "| Relevant (effect) | %d |\n\n", manifest.Relevant)

	var hits []quant.DecisionRow
	for _, row := range rows {
		if row.Significant && row.Relevant {
			hits = append(hits, row)
		}
	}
	fmt.Fprintf(&b, "## Significant and relevant proteins (%d)\n\n", len(hits))
	if len(hits) > 0 {
		b.WriteString("| Protein | Difference (log2) | 95% CI | FDR |\n|---|---|---|---|\n")
		for _, row := range hits {
			fmt.Fprintf(&b, "| %s | %.3f | [%.3f, %.3f] | %.3g |\n",
				row.ProteinID, row.Difference, row.CILow, row.CIHigh, row.FDR)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderHTML converts the markdown report to a standalone HTML fragment.
func RenderHTML(md string) []byte {
	extensions := parser.CommonExtensions | parser.Tables
	p := parser.NewWithExtensions(extensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(md), p, renderer)
}

// Write renders the report in both formats into outDir.
func Write(outDir string, manifest *pipeline.RunManifest, rows []quant.DecisionRow) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return errors.IOError(err, "failed to create output directory")
	}
	md := Build(manifest, rows)
	if err := os.WriteFile(filepath.Join(outDir, MarkdownFile), []byte(md), 0o644); err != nil {
		return errors.IOError(err, "failed to write markdown report")
	}
	if err := os.WriteFile(filepath.Join(outDir, HTMLFile), RenderHTML(md), 0o644); err != nil {
		return errors.IOError(err, "failed to write html report")
	}
	return nil
}
