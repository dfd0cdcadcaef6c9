// Package filter keeps the per-column predicates applied to the loaded
// dataset and evaluates their conjunction into filtered views. A column
// carries at most one predicate at a time; adding a second one for the same
// column replaces the first, whichever kind it is.
package filter

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"sweepview/app/dataset"
)

// Tolerances for approximate numeric equality. A cell a matches a filter
// value b when |a-b| <= absTolerance + relTolerance*|b|, so the comparison
// absorbs floating-point noise without collapsing distinct sweep points.
const (
	relTolerance = 1e-5
	absTolerance = 1e-8
)

var (
	ErrUnknownColumn = errors.New("unknown column")
	ErrNotNumeric    = errors.New("column is not numeric")
)

// Range is an inclusive numeric interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Summary is a read-only snapshot of the active predicates and their effect
// on the current table.
type Summary struct {
	ValueFilters map[string]any   `json:"valueFilters"`
	RangeFilters map[string]Range `json:"rangeFilters"`
	FilteredRows int              `json:"filteredRows"`
	TotalRows    int              `json:"totalRows"`
}

// Engine holds the active predicates, keyed by column name, and evaluates
// them against the store's table. Predicates are validated against the table
// that is loaded when they are added; replacing the table is expected to go
// through a path that clears them.
type Engine struct {
	store  *dataset.Store
	values map[string]any
	ranges map[string]Range
}

// NewEngine returns an engine with no active predicates.
func NewEngine(store *dataset.Store) *Engine {
	return &Engine{
		store:  store,
		values: make(map[string]any),
		ranges: make(map[string]Range),
	}
}

// AddValueFilter stores an equality predicate for column. Numeric columns
// take a numeric value and match within tolerance; string columns take a
// string and match exactly. Any prior predicate on the column is replaced.
func (e *Engine) AddValueFilter(column string, value any) error {
	col, err := e.lookup(column)
	if err != nil {
		return err
	}

	switch v := value.(type) {
	case float64:
		if col.Kind != dataset.KindNumeric {
			return fmt.Errorf("value filter on %q: numeric value against %s column", column, col.Kind)
		}
		delete(e.ranges, column)
		e.values[column] = v
	case int:
		if col.Kind != dataset.KindNumeric {
			return fmt.Errorf("value filter on %q: numeric value against %s column", column, col.Kind)
		}
		delete(e.ranges, column)
		e.values[column] = float64(v)
	case string:
		if col.Kind != dataset.KindString {
			return fmt.Errorf("value filter on %q: string value against %s column", column, col.Kind)
		}
		delete(e.ranges, column)
		e.values[column] = v
	default:
		return fmt.Errorf("value filter on %q: unsupported value type %T", column, value)
	}
	return nil
}

// AddRangeFilter stores an inclusive range predicate for a numeric column.
// Reversed bounds are swapped silently. Any prior predicate on the column is
// replaced.
func (e *Engine) AddRangeFilter(column string, min, max float64) error {
	col, err := e.lookup(column)
	if err != nil {
		return err
	}
	if col.Kind != dataset.KindNumeric {
		return fmt.Errorf("range filter on %q: %w", column, ErrNotNumeric)
	}
	if min > max {
		min, max = max, min
	}
	delete(e.values, column)
	e.ranges[column] = Range{Min: min, Max: max}
	return nil
}

// Clear removes the predicate on column, if any.
func (e *Engine) Clear(column string) {
	delete(e.values, column)
	delete(e.ranges, column)
}

// ClearAll removes every predicate.
func (e *Engine) ClearAll() {
	e.values = make(map[string]any)
	e.ranges = make(map[string]Range)
}

// Active reports whether any predicate is set.
func (e *Engine) Active() bool {
	return len(e.values) > 0 || len(e.ranges) > 0
}

// Apply evaluates the conjunction of all active predicates over the store's
// table and returns the matching rows as a new table. With no predicates the
// source table itself is returned; it is immutable by convention, so sharing
// is safe.
func (e *Engine) Apply() (*dataset.Table, error) {
	t := e.store.Table()
	if t == nil {
		return nil, dataset.ErrNoTable
	}
	if !e.Active() {
		return t, nil
	}

	preds, err := e.resolve(t)
	if err != nil {
		return nil, err
	}

	rows := make([]int, 0, t.RowCount())
	for i := 0; i < t.RowCount(); i++ {
		if matchesAll(preds, i) {
			rows = append(rows, i)
		}
	}
	return t.Select(rows), nil
}

// predicate is a resolved filter bound to a concrete column of the table
// being evaluated.
type predicate struct {
	col      *dataset.Column
	value    any
	rng      Range
	hasRange bool
}

// resolve binds the active predicates to t's columns, in deterministic
// column-name order. A predicate naming a column absent from t fails the
// whole evaluation.
func (e *Engine) resolve(t *dataset.Table) ([]predicate, error) {
	names := make([]string, 0, len(e.values)+len(e.ranges))
	for col := range e.values {
		names = append(names, col)
	}
	for col := range e.ranges {
		names = append(names, col)
	}
	sort.Strings(names)

	preds := make([]predicate, 0, len(names))
	for _, name := range names {
		col, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
		}
		if r, isRange := e.ranges[name]; isRange {
			preds = append(preds, predicate{col: col, rng: r, hasRange: true})
		} else {
			preds = append(preds, predicate{col: col, value: e.values[name]})
		}
	}
	return preds, nil
}

func matchesAll(preds []predicate, row int) bool {
	for _, p := range preds {
		if !p.matches(row) {
			return false
		}
	}
	return true
}

func (p *predicate) matches(row int) bool {
	if p.hasRange {
		v := p.col.Floats[row]
		return v >= p.rng.Min && v <= p.rng.Max
	}
	switch want := p.value.(type) {
	case float64:
		return approxEqual(p.col.Floats[row], want)
	case string:
		return p.col.Strings[row] == want
	default:
		return false
	}
}

// approxEqual reports whether a equals the filter value b within tolerance.
// NaN cells never match.
func approxEqual(a, b float64) bool {
	return math.Abs(a-b) <= absTolerance+relTolerance*math.Abs(b)
}

// UniqueValues returns the distinct values of column across the unfiltered
// table, sorted ascending. Missing numeric cells are excluded.
func (e *Engine) UniqueValues(column string) ([]any, error) {
	col, err := e.lookup(column)
	if err != nil {
		return nil, err
	}

	if col.Kind == dataset.KindNumeric {
		seen := make(map[float64]struct{})
		for _, v := range col.Floats {
			if math.IsNaN(v) {
				continue
			}
			seen[v] = struct{}{}
		}
		floats := make([]float64, 0, len(seen))
		for v := range seen {
			floats = append(floats, v)
		}
		sort.Float64s(floats)
		out := make([]any, len(floats))
		for i, v := range floats {
			out[i] = v
		}
		return out, nil
	}

	seen := make(map[string]struct{})
	for _, s := range col.Strings {
		seen[s] = struct{}{}
	}
	strs := make([]string, 0, len(seen))
	for s := range seen {
		strs = append(strs, s)
	}
	sort.Strings(strs)
	out := make([]any, len(strs))
	for i, s := range strs {
		out[i] = s
	}
	return out, nil
}

// ColumnBounds returns the minimum and maximum of a numeric column over the
// unfiltered table, ignoring missing cells.
func (e *Engine) ColumnBounds(column string) (float64, float64, error) {
	col, err := e.lookup(column)
	if err != nil {
		return 0, 0, err
	}
	if col.Kind != dataset.KindNumeric {
		return 0, 0, fmt.Errorf("bounds of %q: %w", column, ErrNotNumeric)
	}

	min, max := math.NaN(), math.NaN()
	for _, v := range col.Floats {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(min) || v < min {
			min = v
		}
		if math.IsNaN(max) || v > max {
			max = v
		}
	}
	if math.IsNaN(min) {
		return 0, 0, fmt.Errorf("bounds of %q: no non-missing values", column)
	}
	return min, max, nil
}

// Summary snapshots the active predicates together with the filtered and
// total row counts. The maps are copies; mutating them does not touch the
// engine.
func (e *Engine) Summary() (Summary, error) {
	s := Summary{
		ValueFilters: make(map[string]any, len(e.values)),
		RangeFilters: make(map[string]Range, len(e.ranges)),
		TotalRows:    e.store.RowCount(),
	}
	for col, v := range e.values {
		s.ValueFilters[col] = v
	}
	for col, r := range e.ranges {
		s.RangeFilters[col] = r
	}
	if !e.store.Loaded() {
		return s, nil
	}

	filtered, err := e.Apply()
	if err != nil {
		return Summary{}, err
	}
	s.FilteredRows = filtered.RowCount()
	return s, nil
}

// Signature renders the active predicates as a canonical string, sorted by
// column, for use in cache keys. The empty string means no predicates.
func (e *Engine) Signature() string {
	if !e.Active() {
		return ""
	}
	parts := make([]string, 0, len(e.values)+len(e.ranges))
	for col, v := range e.values {
		switch val := v.(type) {
		case float64:
			parts = append(parts, "value:"+col+"="+formatFloat(val))
		case string:
			parts = append(parts, "value:"+col+"="+strconv.Quote(val))
		}
	}
	for col, r := range e.ranges {
		parts = append(parts, "range:"+col+"=["+formatFloat(r.Min)+","+formatFloat(r.Max)+"]")
	}
	sort.Strings(parts)
	return strings.Join(parts, ";")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (e *Engine) lookup(column string) (*dataset.Column, error) {
	t := e.store.Table()
	if t == nil {
		return nil, dataset.ErrNoTable
	}
	col, ok := t.Column(column)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	return col, nil
}

// RestrictRange returns the rows of t whose value in column lies in the
// inclusive interval [min, max], without touching any engine state. Reversed
// bounds are swapped. Used for range-restricted export.
func RestrictRange(t *dataset.Table, column string, min, max float64) (*dataset.Table, error) {
	col, ok := t.Column(column)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	if col.Kind != dataset.KindNumeric {
		return nil, fmt.Errorf("range restriction on %q: %w", column, ErrNotNumeric)
	}
	if min > max {
		min, max = max, min
	}

	rows := make([]int, 0, col.Len())
	for i, v := range col.Floats {
		if v >= min && v <= max {
			rows = append(rows, i)
		}
	}
	return t.Select(rows), nil
}
