package fileloader

import (
	"sweepview/app/dataset"
)

// cellAt reads field j of a possibly short record, padding with empty text.
func cellAt(rec []string, j int) string {
	if j < len(rec) {
		return rec[j]
	}
	return ""
}

// buildNumericColumns builds a table where every column is numerically
// coerced, the way the instrument formats are read: cells that do not parse
// as numbers become NaN, absent trailing cells too.
func buildNumericColumns(names []string, rows [][]string) (*dataset.Table, error) {
	cols := make([]*dataset.Column, len(names))
	for j, name := range names {
		vals := make([]float64, len(rows))
		for i, rec := range rows {
			vals[i] = dataset.CoerceNumber(cellAt(rec, j))
		}
		cols[j] = &dataset.Column{Name: name, Kind: dataset.KindNumeric, Floats: vals}
	}
	return dataset.NewTable(cols)
}

// buildInferredColumns builds a table with per-column type inference: a
// column is numeric when all of its non-missing cells parse as numbers,
// otherwise the raw cell text is kept as a string column.
func buildInferredColumns(names []string, rows [][]string) (*dataset.Table, error) {
	cols := make([]*dataset.Column, len(names))
	for j, name := range names {
		numeric := true
		for _, rec := range rows {
			if _, ok := dataset.ParseNumber(cellAt(rec, j)); !ok {
				numeric = false
				break
			}
		}

		if numeric {
			vals := make([]float64, len(rows))
			for i, rec := range rows {
				vals[i], _ = dataset.ParseNumber(cellAt(rec, j))
			}
			cols[j] = &dataset.Column{Name: name, Kind: dataset.KindNumeric, Floats: vals}
		} else {
			vals := make([]string, len(rows))
			for i, rec := range rows {
				vals[i] = cellAt(rec, j)
			}
			cols[j] = &dataset.Column{Name: name, Kind: dataset.KindString, Strings: vals}
		}
	}
	return dataset.NewTable(cols)
}
