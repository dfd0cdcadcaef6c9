// Package app wires the data pipeline together behind the call surface the
// presentation layer uses: load a file, pick axes, adjust filters, read the
// derived grid products, export. It owns the invalidation discipline; every
// mutating call here drops the view cache before returning.
package app

import (
	"fmt"

	"sweepview/app/cache"
	"sweepview/app/dataset"
	"sweepview/app/export"
	"sweepview/app/fileloader"
	"sweepview/app/filter"
	"sweepview/app/grid"
	"sweepview/app/settings"
)

// App struct
type App struct {
	logger Logger

	settingsService *settings.Service
	conf            settings.Settings

	store     *dataset.Store
	engine    *filter.Engine
	processor *grid.Processor
	viewCache *cache.ViewCache
}

// New creates the pipeline with settings from settingsPath (empty selects
// the per-user default location). logger may be nil.
func New(settingsPath string, logger Logger) (*App, error) {
	svc, err := settings.NewService(settingsPath)
	if err != nil {
		return nil, err
	}
	conf, err := svc.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	a := &App{
		logger:          logger,
		settingsService: svc,
		conf:            conf,
		store:           dataset.NewStore(),
	}
	a.viewCache = cache.NewWithLogger(logger)
	a.viewCache.SetEnabled(conf.EnableViewCache)
	a.engine = filter.NewEngine(a.store)
	a.processor = grid.NewProcessor(a.store, a.engine, a.viewCache)

	// A missing instance ID is inconvenient, not fatal; the config dir may
	// be read-only.
	if id, err := svc.EnsureInstanceID(); err != nil {
		a.log("warning", fmt.Sprintf("[SETTINGS] Could not persist instance ID: %v", err))
	} else {
		a.log("debug", fmt.Sprintf("[SETTINGS] Instance %s", id))
	}

	return a, nil
}

func (a *App) log(level, message string) {
	if a.logger != nil {
		a.logger.Log(level, message)
	}
}

// Load parses the file at path and makes it the active dataset. formatHint
// may name a parser ("generic", "tagged-row", "column-table") or be empty
// for auto-detection. On failure the previous dataset, filters and axes all
// stay in place.
func (a *App) Load(path, formatHint string) (LoadResult, error) {
	format, err := fileloader.ParseFileFormat(formatHint)
	if err != nil {
		return LoadResult{}, err
	}

	res, err := fileloader.Load(path, fileloader.Options{Format: format})
	if err != nil {
		a.log("error", fmt.Sprintf("[LOAD] %s: %v", path, err))
		return LoadResult{}, err
	}

	a.store.Replace(res.Table, res.Meta, dataset.Source{
		Path:   res.Path,
		Format: res.Format.String(),
		Hash:   res.Hash,
	})
	a.engine.ClearAll()
	a.processor.ResetAxes()
	a.invalidate("dataset loaded")

	a.log("info", fmt.Sprintf("[LOAD] %s: %d rows, %d columns (%s)",
		path, res.Table.RowCount(), res.Table.NumColumns(), res.Format))

	return LoadResult{
		Path:        res.Path,
		Format:      res.Format.String(),
		Compression: res.Compression.String(),
		Hash:        res.Hash,
		Columns:     res.Table.Columns(),
		Rows:        res.Table.RowCount(),
	}, nil
}

// GetColumns returns the column names of the active dataset.
func (a *App) GetColumns() ([]string, error) {
	if !a.store.Loaded() {
		return nil, dataset.ErrNoTable
	}
	return a.store.Columns(), nil
}

// GetMetadata returns the header metadata of the active dataset in file
// order.
func (a *App) GetMetadata() ([]dataset.Entry, error) {
	if !a.store.Loaded() {
		return nil, dataset.ErrNoTable
	}
	return a.store.Meta().Entries(), nil
}

// GetTablePage returns rows [start, start+size) of the unfiltered dataset.
// A non-positive size selects the configured chunk size.
func (a *App) GetTablePage(start, size int) (TablePage, error) {
	if size <= 0 {
		size = a.conf.ChunkSize
	}
	page, isLast, err := a.store.Chunk(start, size)
	if err != nil {
		return TablePage{}, err
	}
	return TablePage{
		Columns:    page.Columns(),
		Rows:       tableRows(page),
		Start:      start,
		ReachedEnd: isLast,
		Total:      a.store.RowCount(),
	}, nil
}

// SetAxes selects the x, y and value columns for grid construction.
func (a *App) SetAxes(x, y, value string) error {
	if err := a.processor.SetAxes(x, y, value); err != nil {
		return err
	}
	a.log("info", fmt.Sprintf("[AXES] x=%s y=%s value=%s", x, y, value))
	return nil
}

// AddValueFilter adds an equality predicate; numbers match within tolerance.
func (a *App) AddValueFilter(column string, value any) error {
	if err := a.engine.AddValueFilter(column, value); err != nil {
		return err
	}
	a.invalidate("filter changed")
	a.log("info", fmt.Sprintf("[FILTER] %s = %v", column, value))
	return nil
}

// AddRangeFilter adds an inclusive range predicate on a numeric column.
func (a *App) AddRangeFilter(column string, min, max float64) error {
	if err := a.engine.AddRangeFilter(column, min, max); err != nil {
		return err
	}
	a.invalidate("filter changed")
	a.log("info", fmt.Sprintf("[FILTER] %s in [%g, %g]", column, min, max))
	return nil
}

// ClearFilter removes the predicate on column, if any.
func (a *App) ClearFilter(column string) {
	a.engine.Clear(column)
	a.invalidate("filter cleared")
	a.log("info", fmt.Sprintf("[FILTER] cleared %s", column))
}

// ClearFilters removes every predicate.
func (a *App) ClearFilters() {
	a.engine.ClearAll()
	a.invalidate("filters cleared")
	a.log("info", "[FILTER] cleared all")
}

// GetUniqueValues returns the sorted distinct values of column over the
// unfiltered dataset, for filter pickers.
func (a *App) GetUniqueValues(column string) ([]any, error) {
	return a.engine.UniqueValues(column)
}

// GetColumnBounds returns the (min, max) of a numeric column over the
// unfiltered dataset.
func (a *App) GetColumnBounds(column string) ([2]float64, error) {
	min, max, err := a.engine.ColumnBounds(column)
	if err != nil {
		return [2]float64{}, err
	}
	return [2]float64{min, max}, nil
}

// GetFilterSummary returns the active predicates and their row counts.
func (a *App) GetFilterSummary() (filter.Summary, error) {
	return a.engine.Summary()
}

// GetGrid builds (or serves from cache) the heatmap grid for the current
// axes and filters.
func (a *App) GetGrid() (*grid.Grid, error) {
	return a.processor.BuildGrid()
}

// GetValueRange returns the (min, max) of the value column over the
// filtered dataset.
func (a *App) GetValueRange() ([2]float64, error) {
	min, max, err := a.processor.ValueRange()
	if err != nil {
		return [2]float64{}, err
	}
	return [2]float64{min, max}, nil
}

// GetAxisRange returns the (min, max) of the named axis ("x" or "y") over
// the filtered dataset.
func (a *App) GetAxisRange(axis string) ([2]float64, error) {
	ax, err := grid.ParseAxis(axis)
	if err != nil {
		return [2]float64{}, err
	}
	min, max, err := a.processor.AxisRange(ax)
	if err != nil {
		return [2]float64{}, err
	}
	return [2]float64{min, max}, nil
}

// GetCrossSection returns the profile varying along axis ("x" or "y") with
// the other axis held at its grid coordinate nearest to coordinate.
func (a *App) GetCrossSection(axis string, coordinate float64) (*grid.Profile, error) {
	ax, err := grid.ParseAxis(axis)
	if err != nil {
		return nil, err
	}
	return a.processor.CrossSection(ax, coordinate)
}

// ExportCSV writes the filtered dataset as generic CSV to path.
func (a *App) ExportCSV(path string) error {
	t, err := a.engine.Apply()
	if err != nil {
		return err
	}
	if err := export.WriteCSVFile(path, t); err != nil {
		return err
	}
	a.log("info", fmt.Sprintf("[EXPORT] %s: %d rows (csv)", path, t.RowCount()))
	return nil
}

// ExportRangeCSV writes the filtered rows whose value in column lies in
// [min, max] as generic CSV to path. The active predicates are not touched.
func (a *App) ExportRangeCSV(path, column string, min, max float64) error {
	t, err := a.engine.Apply()
	if err != nil {
		return err
	}
	restricted, err := filter.RestrictRange(t, column, min, max)
	if err != nil {
		return err
	}
	if err := export.WriteCSVFile(path, restricted); err != nil {
		return err
	}
	a.log("info", fmt.Sprintf("[EXPORT] %s: %d rows (range csv)", path, restricted.RowCount()))
	return nil
}

// ExportXLSX writes the filtered dataset as a workbook to path.
func (a *App) ExportXLSX(path string) error {
	t, err := a.engine.Apply()
	if err != nil {
		return err
	}
	if err := export.WriteXLSXFile(path, t); err != nil {
		return err
	}
	a.log("info", fmt.Sprintf("[EXPORT] %s: %d rows (xlsx)", path, t.RowCount()))
	return nil
}

// ExportJSON writes the filtered dataset, with the file metadata, as JSON
// to path.
func (a *App) ExportJSON(path string) error {
	t, err := a.engine.Apply()
	if err != nil {
		return err
	}
	if err := export.WriteJSONFile(path, t, a.store.Meta()); err != nil {
		return err
	}
	a.log("info", fmt.Sprintf("[EXPORT] %s: %d rows (json)", path, t.RowCount()))
	return nil
}

// ListDataFiles scans dir for data files using the configured pattern and
// file cap.
func (a *App) ListDataFiles(dir string) ([]string, error) {
	return fileloader.DiscoverDataFiles(dir, a.conf.DataFilePattern, a.conf.MaxDataFiles)
}

// GetCacheStats returns the view cache counters.
func (a *App) GetCacheStats() cache.Stats {
	return a.viewCache.Stats()
}

// GetSettings returns the effective settings.
func (a *App) GetSettings() settings.Settings {
	return a.conf
}

// UpdateSettings persists in and applies it to the running pipeline.
func (a *App) UpdateSettings(in settings.Settings) error {
	if err := a.settingsService.Save(in); err != nil {
		return err
	}
	conf, err := a.settingsService.Load()
	if err != nil {
		return err
	}
	a.conf = conf
	a.viewCache.SetEnabled(conf.EnableViewCache)
	a.log("info", "[SETTINGS] updated")
	return nil
}

// invalidate is the single entry point for dropping derived views; every
// mutator funnels through it (SetAxes invalidates inside the processor).
func (a *App) invalidate(reason string) {
	a.viewCache.Invalidate(reason)
}

// tableRows converts table cells for JSON transport: float64 or string,
// with nil for missing numeric cells.
func tableRows(t *dataset.Table) [][]any {
	rows := make([][]any, t.RowCount())
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
		rows[i] = row
	}
	return rows
}
