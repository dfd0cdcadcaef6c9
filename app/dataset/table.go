// Package dataset defines the uniform in-memory table model shared by the
// file loaders, the filter engine and the grid processor: named typed columns
// of equal length, plus the metadata extracted from a file's header region.
package dataset

import (
	"fmt"
	"math"
	"strconv"
)

// Kind identifies the value type of a column.
type Kind int

const (
	KindNumeric Kind = iota
	KindString
)

// String returns the string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Column is a single named column. Numeric columns store float64 cells with
// NaN as the missing marker; string columns store the raw cell text.
type Column struct {
	Name    string
	Kind    Kind
	Floats  []float64 // populated when Kind is KindNumeric
	Strings []string  // populated when Kind is KindString
}

// Len returns the number of cells in the column.
func (c *Column) Len() int {
	if c.Kind == KindNumeric {
		return len(c.Floats)
	}
	return len(c.Strings)
}

// Value returns the cell at row i as a float64 or string.
func (c *Column) Value(i int) any {
	if c.Kind == KindNumeric {
		return c.Floats[i]
	}
	return c.Strings[i]
}

// IsMissing reports whether the cell at row i holds the missing marker.
// String columns have no missing marker.
func (c *Column) IsMissing(i int) bool {
	return c.Kind == KindNumeric && math.IsNaN(c.Floats[i])
}

// Text renders the cell at row i for display and export. Numeric cells use
// the shortest decimal form that round-trips; missing cells render empty.
func (c *Column) Text(i int) string {
	if c.Kind == KindString {
		return c.Strings[i]
	}
	v := c.Floats[i]
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Table is a set of equal-length named columns. Tables are never mutated in
// place; loading a new file replaces the whole table.
type Table struct {
	cols   []*Column
	byName map[string]int
}

// NewTable builds a table from columns, validating that every column has a
// unique non-empty name and that all columns have the same length.
func NewTable(cols []*Column) (*Table, error) {
	byName := make(map[string]int, len(cols))
	rows := -1
	for i, col := range cols {
		if col.Name == "" {
			return nil, fmt.Errorf("column %d has no name", i)
		}
		if _, exists := byName[col.Name]; exists {
			return nil, fmt.Errorf("duplicate column name %q", col.Name)
		}
		byName[col.Name] = i
		if rows == -1 {
			rows = col.Len()
		} else if col.Len() != rows {
			return nil, fmt.Errorf("column %q has %d rows, want %d", col.Name, col.Len(), rows)
		}
	}
	return &Table{cols: cols, byName: byName}, nil
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int {
	return len(t.cols)
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int {
	if len(t.cols) == 0 {
		return 0
	}
	return t.cols[0].Len()
}

// Column returns the named column and whether it exists.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.byName[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

// ColumnAt returns the column at position i.
func (t *Table) ColumnAt(i int) *Column {
	return t.cols[i]
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// Select returns a new table holding the rows whose indices appear in rowIdx,
// in the given order. Cell storage is copied, so the selection and the source
// never alias each other.
func (t *Table) Select(rowIdx []int) *Table {
	cols := make([]*Column, len(t.cols))
	for i, src := range t.cols {
		dst := &Column{Name: src.Name, Kind: src.Kind}
		if src.Kind == KindNumeric {
			dst.Floats = make([]float64, len(rowIdx))
			for j, r := range rowIdx {
				dst.Floats[j] = src.Floats[r]
			}
		} else {
			dst.Strings = make([]string, len(rowIdx))
			for j, r := range rowIdx {
				dst.Strings[j] = src.Strings[r]
			}
		}
		cols[i] = dst
	}
	return t.withColumns(cols)
}

// Slice returns rows [start, end) as a new table with copied cell storage.
func (t *Table) Slice(start, end int) *Table {
	cols := make([]*Column, len(t.cols))
	for i, src := range t.cols {
		dst := &Column{Name: src.Name, Kind: src.Kind}
		if src.Kind == KindNumeric {
			dst.Floats = make([]float64, end-start)
			copy(dst.Floats, src.Floats[start:end])
		} else {
			dst.Strings = make([]string, end-start)
			copy(dst.Strings, src.Strings[start:end])
		}
		cols[i] = dst
	}
	return t.withColumns(cols)
}

// withColumns rebuilds a table around derived columns, reusing the already
// validated name index.
func (t *Table) withColumns(cols []*Column) *Table {
	byName := make(map[string]int, len(t.byName))
	for name, i := range t.byName {
		byName[name] = i
	}
	return &Table{cols: cols, byName: byName}
}
