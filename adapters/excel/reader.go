package excel

import (
	"os"
	"time"

	"github.com/xuri/excelize/v2"

	"protquant/adapters/tsv"
	"protquant/domain/quant"
	"protquant/internal"
	"protquant/internal/errors"
)

// PeptideReader loads a peptide quantification table from an xlsx
// workbook. Proteome Discoverer exports frequently arrive as
// spreadsheets rather than flat TSVs; the first sheet is treated as the
// table, with the same column rules as the TSV loader.
type PeptideReader struct {
	path   string
	layout quant.SampleLayout
	log    *internal.Logger
}

// NewPeptideReader creates a reader for the given workbook and layout.
func NewPeptideReader(path string, layout quant.SampleLayout) *PeptideReader {
	return &PeptideReader{path: path, layout: layout, log: internal.DefaultLogger}
}

// ReadPeptides reads the first sheet into immutable peptide records.
func (r *PeptideReader) ReadPeptides() ([]quant.PeptideRecord, error) {
	if _, err := os.Stat(r.path); os.IsNotExist(err) {
		return nil, errors.IOError(err, "workbook not found: "+r.path)
	}

	start := time.Now()
	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return nil, errors.IOError(err, "failed to open workbook "+r.path)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.MalformedInput("workbook %s has no sheets", r.path)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.IOError(err, "failed to read sheet "+sheet)
	}
	r.log.Debug("[ExcelReader] sheet %q read in %.2fms (%d rows)",
		sheet, float64(time.Since(start).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, errors.MalformedInput("workbook %s needs a header row and at least one data row", r.path)
	}

	return tsv.ParseRecords(rows[0], rows[1:], r.layout)
}
