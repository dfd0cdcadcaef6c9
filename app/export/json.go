package export

import (
	"fmt"
	"os"

	"github.com/ohler55/ojg/oj"

	"sweepview/app/dataset"
)

// TableDocument is the JSON shape of an exported table. Rows hold float64 or
// string cells; missing numeric cells become null, so the document never
// carries NaN.
type TableDocument struct {
	Columns  []string        `json:"columns"`
	Kinds    []string        `json:"kinds"`
	Metadata []dataset.Entry `json:"metadata"`
	Rows     [][]any         `json:"rows"`
}

// BuildDocument converts a table and its metadata into the export document.
func BuildDocument(t *dataset.Table, meta *dataset.Metadata) *TableDocument {
	doc := &TableDocument{
		Columns: t.Columns(),
		Kinds:   make([]string, t.NumColumns()),
		Rows:    make([][]any, t.RowCount()),
	}
	for j := 0; j < t.NumColumns(); j++ {
		doc.Kinds[j] = t.ColumnAt(j).Kind.String()
	}
	if meta != nil {
		doc.Metadata = meta.Entries()
	}

	for i := 0; i < t.RowCount(); i++ {
		row := make([]any, t.NumColumns())
		for j := 0; j < t.NumColumns(); j++ {
			col := t.ColumnAt(j)
			switch {
			case col.Kind == dataset.KindString:
				row[j] = col.Strings[i]
			case col.IsMissing(i):
				row[j] = nil
			default:
				row[j] = col.Floats[i]
			}
		}
		doc.Rows[i] = row
	}
	return doc
}

// WriteJSONFile writes the table document as indented JSON to path.
func WriteJSONFile(path string, t *dataset.Table, meta *dataset.Metadata) error {
	data, err := oj.Marshal(BuildDocument(t, meta), 2)
	if err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}
