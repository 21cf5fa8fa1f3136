package tsv

import (
	"encoding/csv"
	"os"

	"protquant/domain/quant"
	"protquant/internal/errors"
)

// WritePeptides writes a peptide table in the same tab-separated format
// the reader accepts. Absent abundances are written as NA. Used by the
// simulate command to persist synthetic datasets.
func WritePeptides(path string, layout quant.SampleLayout, records []quant.PeptideRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.IOError(err, "failed to create "+path)
	}
	defer file.Close()

	out := csv.NewWriter(file)
	out.Comma = '\t'

	header := []string{ColumnSequence, ColumnModifications, ColumnProtein}
	header = append(header, layout.Names()...)
	if err := out.Write(header); err != nil {
		return errors.IOError(err, "failed to write peptide header")
	}

	for _, rec := range records {
		row := []string{rec.Sequence, rec.Modification, rec.ProteinID}
		for _, v := range rec.Samples {
			if !v.Valid {
				row = append(row, "NA")
			} else {
				row = append(row, formatFloat(v.Float64))
			}
		}
		if err := out.Write(row); err != nil {
			return errors.IOError(err, "failed to write peptide row")
		}
	}
	out.Flush()
	return errors.Wrap(out.Error(), "failed to flush peptide table")
}
