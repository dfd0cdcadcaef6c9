// Package grid turns the filtered table into the dense 2D representation the
// heatmap is drawn from. The grid is rebuilt from scratch on each request and
// memoized in the view cache; the processor invalidates the cache whenever
// the axis selection changes.
package grid

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"sweepview/app/cache"
	"sweepview/app/dataset"
	"sweepview/app/filter"
)

// Processor builds grids, ranges and cross-sections for the current axis
// selection. It reads the table through the filter engine, so every derived
// product reflects the active predicates.
type Processor struct {
	store  *dataset.Store
	engine *filter.Engine
	cache  *cache.ViewCache

	x, y, value string
	axesSet     bool

	builds int // number of full grid constructions, for cache verification
}

// NewProcessor returns a processor with no axis selection.
func NewProcessor(store *dataset.Store, engine *filter.Engine, viewCache *cache.ViewCache) *Processor {
	return &Processor{store: store, engine: engine, cache: viewCache}
}

// SetAxes selects the x, y and value columns. All three must be numeric
// columns of the current table and x must differ from y. A failed call
// leaves the previous selection untouched; a changed selection drops every
// cached view.
func (p *Processor) SetAxes(x, y, value string) error {
	t := p.store.Table()
	if t == nil {
		return dataset.ErrNoTable
	}
	for _, name := range []string{x, y, value} {
		col, ok := t.Column(name)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownColumn, name)
		}
		if col.Kind != dataset.KindNumeric {
			return fmt.Errorf("axis column %q: %w", name, ErrNotNumeric)
		}
	}
	if x == y {
		return fmt.Errorf("%w: %q", ErrAxesEqual, x)
	}

	changed := !p.axesSet || x != p.x || y != p.y || value != p.value
	p.x, p.y, p.value = x, y, value
	p.axesSet = true
	if changed {
		p.cache.Invalidate("axes changed")
	}
	return nil
}

// ResetAxes clears the axis selection, as on dataset reload.
func (p *Processor) ResetAxes() {
	p.x, p.y, p.value = "", "", ""
	p.axesSet = false
}

// Axes returns the current selection and whether one is set.
func (p *Processor) Axes() (x, y, value string, ok bool) {
	return p.x, p.y, p.value, p.axesSet
}

// Builds returns how many times a grid was actually constructed rather than
// served from the cache.
func (p *Processor) Builds() int {
	return p.builds
}

// BuildGrid constructs the mesh for the current axes over the filtered
// table. Axis coordinates are the sorted unique x and y values; each data
// row is placed by index lookup, later rows overwriting earlier ones that
// land on the same cell. The returned grid is the caller's to keep.
func (p *Processor) BuildGrid() (*Grid, error) {
	if !p.axesSet {
		return nil, ErrAxesUnset
	}

	key := p.key("grid")
	if v, ok := p.cache.Get(key); ok {
		return copyGrid(v.(*Grid)), nil
	}

	src, err := p.engine.Apply()
	if err != nil {
		return nil, err
	}
	if src.RowCount() == 0 {
		return nil, ErrNoData
	}

	xcol, ycol, vcol, err := p.axisColumns(src)
	if err != nil {
		return nil, err
	}

	xs := sortedUnique(xcol.Floats)
	ys := sortedUnique(ycol.Floats)
	if len(xs) == 0 || len(ys) == 0 {
		return nil, ErrNoData
	}

	g := &Grid{
		XValues: xs,
		YValues: ys,
		X:       make([][]float64, len(ys)),
		Y:       make([][]float64, len(ys)),
		Z:       make([][]float64, len(ys)),
	}
	for i := range ys {
		g.X[i] = append([]float64(nil), xs...)
		g.Y[i] = make([]float64, len(xs))
		g.Z[i] = make([]float64, len(xs))
		for j := range xs {
			g.Y[i][j] = ys[i]
			g.Z[i][j] = math.NaN()
		}
	}

	xIndex := make(map[float64]int, len(xs))
	for j, v := range xs {
		xIndex[v] = j
	}
	yIndex := make(map[float64]int, len(ys))
	for i, v := range ys {
		yIndex[v] = i
	}

	// Rows with a NaN coordinate miss both index maps and are skipped.
	for r := 0; r < src.RowCount(); r++ {
		xi, okX := xIndex[xcol.Floats[r]]
		yi, okY := yIndex[ycol.Floats[r]]
		if okX && okY {
			g.Z[yi][xi] = vcol.Floats[r]
		}
	}

	p.builds++
	p.cache.Put(key, g)
	return copyGrid(g), nil
}

// ValueRange returns the minimum and maximum of the value column over the
// filtered table, ignoring missing entries.
func (p *Processor) ValueRange() (float64, float64, error) {
	if !p.axesSet {
		return 0, 0, ErrAxesUnset
	}
	return p.columnRange("value_range", p.value)
}

// AxisRange returns the minimum and maximum of the selected axis column over
// the filtered table.
func (p *Processor) AxisRange(axis Axis) (float64, float64, error) {
	if !p.axesSet {
		return 0, 0, ErrAxesUnset
	}
	column := p.x
	if axis == AxisY {
		column = p.y
	}
	return p.columnRange("axis_range_"+axis.String(), column)
}

func (p *Processor) columnRange(op, column string) (float64, float64, error) {
	key := p.key(op)
	if v, ok := p.cache.Get(key); ok {
		r := v.([2]float64)
		return r[0], r[1], nil
	}

	src, err := p.engine.Apply()
	if err != nil {
		return 0, 0, err
	}
	if src.RowCount() == 0 {
		return 0, 0, ErrNoData
	}
	col, ok := src.Column(column)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownColumn, column)
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
		return 0, 0, ErrNoData
	}

	p.cache.Put(key, [2]float64{min, max})
	return min, max, nil
}

// CrossSection returns the profile that varies along axis, holding the other
// axis at its grid coordinate nearest to coordinate. Nearest means minimum
// absolute difference, ties going to the lower coordinate.
func (p *Processor) CrossSection(axis Axis, coordinate float64) (*Profile, error) {
	g, err := p.BuildGrid()
	if err != nil {
		return nil, err
	}

	if axis == AxisX {
		i := nearestIndex(g.YValues, coordinate)
		return &Profile{
			Axis:   AxisX,
			Fixed:  g.YValues[i],
			Coords: g.XValues,
			Values: g.Z[i],
		}, nil
	}

	j := nearestIndex(g.XValues, coordinate)
	values := make([]float64, len(g.YValues))
	for i := range g.YValues {
		values[i] = g.Z[i][j]
	}
	return &Profile{
		Axis:   AxisY,
		Fixed:  g.XValues[j],
		Coords: g.YValues,
		Values: values,
	}, nil
}

// nearestIndex finds the entry of vals closest to target. vals is sorted
// ascending, so keeping the first minimum breaks ties toward the lower
// coordinate.
func nearestIndex(vals []float64, target float64) int {
	best := 0
	bestDist := math.Abs(vals[0] - target)
	for i := 1; i < len(vals); i++ {
		if d := math.Abs(vals[i] - target); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// sortedUnique returns the distinct non-NaN values of vals in ascending
// order.
func sortedUnique(vals []float64) []float64 {
	seen := make(map[float64]struct{}, len(vals))
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Float64s(out)
	return out
}

func (p *Processor) axisColumns(t *dataset.Table) (xcol, ycol, vcol *dataset.Column, err error) {
	var ok bool
	if xcol, ok = t.Column(p.x); !ok {
		return nil, nil, nil, fmt.Errorf("%w: %q", ErrUnknownColumn, p.x)
	}
	if ycol, ok = t.Column(p.y); !ok {
		return nil, nil, nil, fmt.Errorf("%w: %q", ErrUnknownColumn, p.y)
	}
	if vcol, ok = t.Column(p.value); !ok {
		return nil, nil, nil, fmt.Errorf("%w: %q", ErrUnknownColumn, p.value)
	}
	return xcol, ycol, vcol, nil
}

// key assembles the cache key for a derived product under the current axes,
// predicates and table.
func (p *Processor) key(op string) cache.Key {
	return cache.Key{
		Op:          op,
		XColumn:     p.x,
		YColumn:     p.y,
		ValueColumn: p.value,
		Filters:     p.engine.Signature(),
		DataSig:     p.dataSig(),
	}
}

// dataSig is the structural fingerprint of the loaded table: source hash,
// row count and column names.
func (p *Processor) dataSig() string {
	t := p.store.Table()
	if t == nil {
		return ""
	}
	return p.store.Source().Hash + ":" + strconv.Itoa(t.RowCount()) + ":" + strings.Join(t.Columns(), "|")
}
