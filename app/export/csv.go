// Package export writes tables back out of the pipeline: generic CSV that
// the loader can re-read, plus XLSX and JSON for downstream tooling. Exports
// always see the table they are handed, so callers choose whether that is
// the full or the filtered dataset.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"sweepview/app/dataset"
)

// WriteCSV writes t as generic delimited CSV: one header line, one line per
// row. Numeric cells use the shortest round-trip decimal form; missing cells
// are written empty, which the generic parser reads back as missing.
func WriteCSV(w io.Writer, t *dataset.Table) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(t.Columns()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, t.NumColumns())
	for i := 0; i < t.RowCount(); i++ {
		for j := 0; j < t.NumColumns(); j++ {
			record[j] = t.ColumnAt(j).Text(i)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes t as CSV to path, creating or truncating it.
func WriteCSVFile(path string, t *dataset.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	if err := WriteCSV(f, t); err != nil {
		f.Close()
		return fmt.Errorf("export %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}
