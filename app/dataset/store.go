package dataset

import (
	"errors"
	"fmt"
)

// ErrNoTable is returned by operations that need a loaded dataset.
var ErrNoTable = errors.New("no dataset loaded")

// DefaultChunkSize is the page size used when a chunk request does not name one.
const DefaultChunkSize = 1000

// Source identifies where the current table came from.
type Source struct {
	Path   string `json:"path"`
	Format string `json:"format"`
	Hash   string `json:"hash"`
}

// Store owns the single active table. Loading a file replaces the whole
// table; nothing mutates it in place.
type Store struct {
	table *Table
	meta  *Metadata
	src   Source
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{meta: NewMetadata()}
}

// Replace swaps in a freshly parsed table together with its metadata and
// source information.
func (s *Store) Replace(t *Table, meta *Metadata, src Source) {
	if meta == nil {
		meta = NewMetadata()
	}
	s.table = t
	s.meta = meta
	s.src = src
}

// Clear drops the current table.
func (s *Store) Clear() {
	s.table = nil
	s.meta = NewMetadata()
	s.src = Source{}
}

// Loaded reports whether a table is present.
func (s *Store) Loaded() bool {
	return s.table != nil
}

// Table returns the current table, or nil when nothing is loaded.
func (s *Store) Table() *Table {
	return s.table
}

// Meta returns the metadata of the current table.
func (s *Store) Meta() *Metadata {
	return s.meta
}

// Source returns the source information of the current table.
func (s *Store) Source() Source {
	return s.src
}

// Columns returns the column names of the current table, or nil when nothing
// is loaded.
func (s *Store) Columns() []string {
	if s.table == nil {
		return nil
	}
	return s.table.Columns()
}

// RowCount returns the number of rows in the current table.
func (s *Store) RowCount() int {
	if s.table == nil {
		return 0
	}
	return s.table.RowCount()
}

// Chunk returns rows [start, start+size) of the current table and whether the
// returned page is the final one. A non-positive size selects
// DefaultChunkSize; a start at or past the end yields an empty final page.
func (s *Store) Chunk(start, size int) (*Table, bool, error) {
	if s.table == nil {
		return nil, false, ErrNoTable
	}
	if start < 0 {
		return nil, false, fmt.Errorf("chunk start %d is negative", start)
	}
	if size <= 0 {
		size = DefaultChunkSize
	}
	total := s.table.RowCount()
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	return s.table.Slice(start, end), end >= total, nil
}
