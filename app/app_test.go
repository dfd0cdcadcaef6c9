package app

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"sweepview/app/dataset"
	"sweepview/app/grid"
)

type testLogger struct {
	lines []string
}

func (l *testLogger) Log(level, message string) {
	l.lines = append(l.lines, level+" "+message)
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	a, err := New(filepath.Join(t.TempDir(), "sweepview.yml"), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return a
}

func writeDataFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// sweepFixture is a complete 2x2 tagged-row sweep.
const sweepFixture = "TestParameter,Channel.Unit,SMU1\n" +
	"MetaData,Wafer,W7\n" +
	"DataName,Vg,Vd,Id\n" +
	"DataValue,1,10,0.1\n" +
	"DataValue,2,10,0.2\n" +
	"DataValue,1,20,0.3\n" +
	"DataValue,2,20,0.4\n"

func loadSweep(t *testing.T, a *App) LoadResult {
	t.Helper()
	res, err := a.Load(writeDataFile(t, "sweep.csv", sweepFixture), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return res
}

func TestLoadEndToEnd(t *testing.T) {
	a := newTestApp(t)
	res := loadSweep(t, a)

	if res.Format != "tagged-row" {
		t.Errorf("format = %q, want tagged-row", res.Format)
	}
	if res.Rows != 4 {
		t.Errorf("rows = %d, want 4", res.Rows)
	}
	if !reflect.DeepEqual(res.Columns, []string{"Vg", "Vd", "Id"}) {
		t.Errorf("columns = %v, want [Vg Vd Id]", res.Columns)
	}
	if res.Hash == "" {
		t.Error("empty dataset hash")
	}

	meta, err := a.GetMetadata()
	if err != nil {
		t.Fatalf("GetMetadata() error = %v", err)
	}
	want := []dataset.Entry{
		{Key: "TestParameter", Value: "Channel.Unit,SMU1"},
		{Key: "MetaData", Value: "Wafer,W7"},
	}
	if !reflect.DeepEqual(meta, want) {
		t.Errorf("metadata = %v, want %v", meta, want)
	}

	if err := a.SetAxes("Vg", "Vd", "Id"); err != nil {
		t.Fatalf("SetAxes() error = %v", err)
	}
	g, err := a.GetGrid()
	if err != nil {
		t.Fatalf("GetGrid() error = %v", err)
	}
	if g.Rows() != 2 || g.Cols() != 2 {
		t.Fatalf("grid shape = (%d, %d), want (2, 2)", g.Rows(), g.Cols())
	}
	if g.Z[0][0] != 0.1 || g.Z[1][1] != 0.4 {
		t.Errorf("Z = %v, misplaced values", g.Z)
	}

	vr, err := a.GetValueRange()
	if err != nil {
		t.Fatalf("GetValueRange() error = %v", err)
	}
	if vr != [2]float64{0.1, 0.4} {
		t.Errorf("value range = %v, want [0.1 0.4]", vr)
	}

	prof, err := a.GetCrossSection("x", 20)
	if err != nil {
		t.Fatalf("GetCrossSection() error = %v", err)
	}
	if prof.Fixed != 20 || !reflect.DeepEqual(prof.Coords, []float64{1, 2}) {
		t.Errorf("profile = %+v, want x cut at Vd=20", prof)
	}
}

func TestLoadFailureKeepsState(t *testing.T) {
	a := newTestApp(t)
	loadSweep(t, a)
	if err := a.SetAxes("Vg", "Vd", "Id"); err != nil {
		t.Fatalf("SetAxes() error = %v", err)
	}
	if err := a.AddValueFilter("Vd", 10.0); err != nil {
		t.Fatalf("AddValueFilter() error = %v", err)
	}

	if _, err := a.Load(filepath.Join(t.TempDir(), "missing.csv"), ""); err == nil {
		t.Fatal("expected error loading a missing file")
	}
	// A structurally broken file must not clobber state either.
	broken := writeDataFile(t, "broken.csv", "DataName,V1\nDataValue,1,2,3\n")
	if _, err := a.Load(broken, ""); err == nil {
		t.Fatal("expected error loading a broken file")
	}

	cols, err := a.GetColumns()
	if err != nil {
		t.Fatalf("GetColumns() error = %v", err)
	}
	if !reflect.DeepEqual(cols, []string{"Vg", "Vd", "Id"}) {
		t.Errorf("columns = %v, prior dataset lost", cols)
	}
	sum, err := a.GetFilterSummary()
	if err != nil {
		t.Fatalf("GetFilterSummary() error = %v", err)
	}
	if len(sum.ValueFilters) != 1 || sum.FilteredRows != 2 {
		t.Errorf("summary = %+v, prior filter lost", sum)
	}
	if _, err := a.GetGrid(); err != nil {
		t.Errorf("GetGrid() after failed load error = %v", err)
	}
}

func TestLoadResetsFiltersAndAxes(t *testing.T) {
	a := newTestApp(t)
	loadSweep(t, a)
	if err := a.SetAxes("Vg", "Vd", "Id"); err != nil {
		t.Fatalf("SetAxes() error = %v", err)
	}
	if err := a.AddValueFilter("Vd", 10.0); err != nil {
		t.Fatalf("AddValueFilter() error = %v", err)
	}

	loadSweep(t, a)

	sum, err := a.GetFilterSummary()
	if err != nil {
		t.Fatalf("GetFilterSummary() error = %v", err)
	}
	if len(sum.ValueFilters) != 0 || len(sum.RangeFilters) != 0 {
		t.Errorf("summary = %+v, want no predicates after reload", sum)
	}
	if _, err := a.GetGrid(); !errors.Is(err, grid.ErrAxesUnset) {
		t.Errorf("GetGrid() error = %v, want ErrAxesUnset after reload", err)
	}
}

func TestGridCachedAcrossCalls(t *testing.T) {
	a := newTestApp(t)
	loadSweep(t, a)
	if err := a.SetAxes("Vg", "Vd", "Id"); err != nil {
		t.Fatalf("SetAxes() error = %v", err)
	}

	if _, err := a.GetGrid(); err != nil {
		t.Fatalf("GetGrid() error = %v", err)
	}
	if _, err := a.GetGrid(); err != nil {
		t.Fatalf("GetGrid() error = %v", err)
	}
	if builds := a.processor.Builds(); builds != 1 {
		t.Errorf("builds = %d, want 1 for consecutive calls", builds)
	}
	stats := a.GetCacheStats()
	if stats.Hits == 0 {
		t.Errorf("stats = %+v, want at least one hit", stats)
	}

	// Each mutation forces the next call to rebuild.
	if err := a.AddRangeFilter("Vg", 0, 10); err != nil {
		t.Fatalf("AddRangeFilter() error = %v", err)
	}
	if _, err := a.GetGrid(); err != nil {
		t.Fatalf("GetGrid() error = %v", err)
	}
	if builds := a.processor.Builds(); builds != 2 {
		t.Errorf("builds = %d, want 2 after filter change", builds)
	}

	a.ClearFilters()
	if _, err := a.GetGrid(); err != nil {
		t.Fatalf("GetGrid() error = %v", err)
	}
	if builds := a.processor.Builds(); builds != 3 {
		t.Errorf("builds = %d, want 3 after clearing filters", builds)
	}

	loadSweep(t, a)
	if err := a.SetAxes("Vg", "Vd", "Id"); err != nil {
		t.Fatalf("SetAxes() error = %v", err)
	}
	if _, err := a.GetGrid(); err != nil {
		t.Fatalf("GetGrid() error = %v", err)
	}
	if builds := a.processor.Builds(); builds != 4 {
		t.Errorf("builds = %d, want 4 after reload", builds)
	}
}

func TestExportRoundTrip(t *testing.T) {
	a := newTestApp(t)
	loadSweep(t, a)
	if err := a.AddValueFilter("Vd", 10.0); err != nil {
		t.Fatalf("AddValueFilter() error = %v", err)
	}

	out := filepath.Join(t.TempDir(), "export.csv")
	if err := a.ExportCSV(out); err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}

	b := newTestApp(t)
	res, err := b.Load(out, "")
	if err != nil {
		t.Fatalf("reload error = %v", err)
	}
	if res.Format != "generic" {
		t.Errorf("format = %q, want generic", res.Format)
	}
	if res.Rows != 2 {
		t.Errorf("rows = %d, want the 2 filtered rows", res.Rows)
	}
	if !reflect.DeepEqual(res.Columns, []string{"Vg", "Vd", "Id"}) {
		t.Errorf("columns = %v, want [Vg Vd Id]", res.Columns)
	}
}

func TestExportRangeCSV(t *testing.T) {
	a := newTestApp(t)
	loadSweep(t, a)

	out := filepath.Join(t.TempDir(), "range.csv")
	if err := a.ExportRangeCSV(out, "Id", 0.4, 0.2); err != nil {
		t.Fatalf("ExportRangeCSV() error = %v", err)
	}

	b := newTestApp(t)
	res, err := b.Load(out, "")
	if err != nil {
		t.Fatalf("reload error = %v", err)
	}
	if res.Rows != 3 {
		t.Errorf("rows = %d, want 3 in [0.2, 0.4]", res.Rows)
	}

	// The range restriction is not a filter; the engine stays empty.
	sum, err := a.GetFilterSummary()
	if err != nil {
		t.Fatalf("GetFilterSummary() error = %v", err)
	}
	if len(sum.RangeFilters) != 0 {
		t.Errorf("summary = %+v, want no predicates", sum)
	}
}

func TestGetTablePageUsesConfiguredChunkSize(t *testing.T) {
	dir := t.TempDir()
	settingsPath := filepath.Join(dir, "sweepview.yml")
	if err := os.WriteFile(settingsPath, []byte("chunk_size: 3\n"), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	a, err := New(settingsPath, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	loadSweep(t, a)

	page, err := a.GetTablePage(0, 0)
	if err != nil {
		t.Fatalf("GetTablePage() error = %v", err)
	}
	if len(page.Rows) != 3 || page.ReachedEnd {
		t.Errorf("page = %d rows, reachedEnd %v; want 3 rows, false", len(page.Rows), page.ReachedEnd)
	}
	if page.Total != 4 {
		t.Errorf("total = %d, want 4", page.Total)
	}
	if page.Rows[0][0] != 1.0 {
		t.Errorf("rows[0][0] = %v, want 1", page.Rows[0][0])
	}

	page, err = a.GetTablePage(3, 0)
	if err != nil {
		t.Fatalf("GetTablePage() error = %v", err)
	}
	if len(page.Rows) != 1 || !page.ReachedEnd {
		t.Errorf("page = %d rows, reachedEnd %v; want 1 row, true", len(page.Rows), page.ReachedEnd)
	}
}

func TestViewCacheDisabledBySettings(t *testing.T) {
	dir := t.TempDir()
	settingsPath := filepath.Join(dir, "sweepview.yml")
	if err := os.WriteFile(settingsPath, []byte("enable_view_cache: false\n"), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	a, err := New(settingsPath, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	loadSweep(t, a)
	if err := a.SetAxes("Vg", "Vd", "Id"); err != nil {
		t.Fatalf("SetAxes() error = %v", err)
	}

	if _, err := a.GetGrid(); err != nil {
		t.Fatalf("GetGrid() error = %v", err)
	}
	if _, err := a.GetGrid(); err != nil {
		t.Fatalf("GetGrid() error = %v", err)
	}
	if builds := a.processor.Builds(); builds != 2 {
		t.Errorf("builds = %d, want 2 with the cache disabled", builds)
	}
}

func TestUniqueValuesAndBounds(t *testing.T) {
	a := newTestApp(t)
	loadSweep(t, a)

	vals, err := a.GetUniqueValues("Vd")
	if err != nil {
		t.Fatalf("GetUniqueValues() error = %v", err)
	}
	if !reflect.DeepEqual(vals, []any{10.0, 20.0}) {
		t.Errorf("unique = %v, want [10 20]", vals)
	}

	bounds, err := a.GetColumnBounds("Id")
	if err != nil {
		t.Fatalf("GetColumnBounds() error = %v", err)
	}
	if bounds != [2]float64{0.1, 0.4} {
		t.Errorf("bounds = %v, want [0.1 0.4]", bounds)
	}
}

func TestEpsilonFilterScenario(t *testing.T) {
	a := newTestApp(t)
	content := "c0,c1,c2\n1,4,5.0000001\n2,5,5.0\n3,6,7.0\n"
	if _, err := a.Load(writeDataFile(t, "generic.csv", content), ""); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := a.SetAxes("c0", "c1", "c2"); err != nil {
		t.Fatalf("SetAxes() error = %v", err)
	}
	if err := a.AddValueFilter("c2", 5.0); err != nil {
		t.Fatalf("AddValueFilter() error = %v", err)
	}

	sum, err := a.GetFilterSummary()
	if err != nil {
		t.Fatalf("GetFilterSummary() error = %v", err)
	}
	if sum.FilteredRows != 2 {
		t.Errorf("filtered rows = %d, want 2 within tolerance of 5.0", sum.FilteredRows)
	}
}

func TestExportJSONAndXLSX(t *testing.T) {
	a := newTestApp(t)
	loadSweep(t, a)

	jsonPath := filepath.Join(t.TempDir(), "out.json")
	if err := a.ExportJSON(jsonPath); err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "\"Vg\"") || !strings.Contains(string(data), "TestParameter") {
		t.Error("JSON export missing columns or metadata")
	}

	xlsxPath := filepath.Join(t.TempDir(), "out.xlsx")
	if err := a.ExportXLSX(xlsxPath); err != nil {
		t.Fatalf("ExportXLSX() error = %v", err)
	}
	b := newTestApp(t)
	res, err := b.Load(xlsxPath, "")
	if err != nil {
		t.Fatalf("reload xlsx error = %v", err)
	}
	if res.Rows != 4 {
		t.Errorf("rows = %d, want 4", res.Rows)
	}
}

func TestListDataFiles(t *testing.T) {
	a := newTestApp(t)
	dir := t.TempDir()
	for _, name := range []string{"a.csv", "b.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x\n1\n"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	files, err := a.ListDataFiles(dir)
	if err != nil {
		t.Fatalf("ListDataFiles() error = %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "a.csv" {
		t.Errorf("files = %v, want just a.csv", files)
	}
}

func TestQueriesBeforeLoad(t *testing.T) {
	a := newTestApp(t)

	if _, err := a.GetColumns(); !errors.Is(err, dataset.ErrNoTable) {
		t.Errorf("GetColumns() error = %v, want ErrNoTable", err)
	}
	if err := a.SetAxes("a", "b", "c"); !errors.Is(err, dataset.ErrNoTable) {
		t.Errorf("SetAxes() error = %v, want ErrNoTable", err)
	}
	if _, err := a.GetGrid(); !errors.Is(err, grid.ErrAxesUnset) {
		t.Errorf("GetGrid() error = %v, want ErrAxesUnset", err)
	}
	if _, err := a.GetUniqueValues("a"); !errors.Is(err, dataset.ErrNoTable) {
		t.Errorf("GetUniqueValues() error = %v, want ErrNoTable", err)
	}
}

func TestLoggerReceivesPipelineEvents(t *testing.T) {
	logger := &testLogger{}
	a, err := New(filepath.Join(t.TempDir(), "sweepview.yml"), logger)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	loadSweep(t, a)

	found := false
	for _, line := range logger.lines {
		if strings.Contains(line, "[LOAD]") {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("no [LOAD] line in %v", logger.lines)
	}
}

func TestValueFilterTolerance(t *testing.T) {
	// Direct check of the documented comparison at the facade boundary.
	a := newTestApp(t)
	content := "x,y,v\n1,1,1e-6\n2,1,1.0000001e-6\n3,1,2e-6\n"
	if _, err := a.Load(writeDataFile(t, "tol.csv", content), ""); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := a.AddValueFilter("v", 1e-6); err != nil {
		t.Fatalf("AddValueFilter() error = %v", err)
	}
	sum, err := a.GetFilterSummary()
	if err != nil {
		t.Fatalf("GetFilterSummary() error = %v", err)
	}
	if sum.FilteredRows != 2 {
		t.Errorf("filtered rows = %d, want 2", sum.FilteredRows)
	}
	if math.Abs(float64(sum.TotalRows)-3) > 0 {
		t.Errorf("total rows = %d, want 3", sum.TotalRows)
	}
}
