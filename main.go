package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"sweepview/app"
)

// consoleLogger forwards pipeline events to the process log.
type consoleLogger struct{}

func (consoleLogger) Log(level, message string) {
	log.Printf("%s %s", strings.ToUpper(level), message)
}

func main() {
	var (
		settingsPath = flag.String("settings", "", "settings file (default: per-user config dir)")
		format       = flag.String("format", "", "input format: generic, tagged-row or column-table (default: auto-detect)")
		xCol         = flag.String("x", "", "x axis column")
		yCol         = flag.String("y", "", "y axis column")
		valueCol     = flag.String("value", "", "value column")
		cut          = flag.String("cut", "", "print a cross-section, e.g. x:1.5 (profile along x nearest y=1.5)")
		exportPath   = flag.String("export", "", "write the filtered dataset to this file (.csv, .xlsx or .json)")
		listDir      = flag.String("list", "", "list data files under this directory and exit")
		verbose      = flag.Bool("v", false, "log pipeline events")
	)
	var filters []string
	flag.Func("filter", "predicate, col=value or col=min:max (repeatable)", func(s string) error {
		filters = append(filters, s)
		return nil
	})
	flag.Parse()

	log.SetFlags(0)

	var logger app.Logger
	if *verbose {
		logger = consoleLogger{}
	}
	a, err := app.New(*settingsPath, logger)
	if err != nil {
		log.Fatalf("init: %v", err)
	}

	if *listDir != "" {
		files, err := a.ListDataFiles(*listDir)
		if err != nil {
			log.Fatalf("list %s: %v", *listDir, err)
		}
		for _, f := range files {
			fmt.Println(f)
		}
		return
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: sweepview [flags] <datafile>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	res, err := a.Load(flag.Arg(0), *format)
	if err != nil {
		log.Fatalf("load: %v", err)
	}
	fmt.Printf("%s: %d rows, %d columns (%s", res.Path, res.Rows, len(res.Columns), res.Format)
	if res.Compression != "none" {
		fmt.Printf(", %s", res.Compression)
	}
	fmt.Println(")")
	fmt.Printf("columns: %s\n", strings.Join(res.Columns, ", "))
	if meta, err := a.GetMetadata(); err == nil {
		for _, e := range meta {
			fmt.Printf("  %s: %s\n", e.Key, e.Value)
		}
	}

	for _, f := range filters {
		if err := applyFilter(a, f); err != nil {
			log.Fatalf("filter %q: %v", f, err)
		}
	}
	if len(filters) > 0 {
		sum, err := a.GetFilterSummary()
		if err != nil {
			log.Fatalf("filter summary: %v", err)
		}
		fmt.Printf("filtered: %d of %d rows\n", sum.FilteredRows, sum.TotalRows)
	}

	if *xCol != "" && *yCol != "" && *valueCol != "" {
		if err := a.SetAxes(*xCol, *yCol, *valueCol); err != nil {
			log.Fatalf("axes: %v", err)
		}
		g, err := a.GetGrid()
		if err != nil {
			log.Fatalf("grid: %v", err)
		}
		fmt.Printf("grid: %d x %d (%s over %s, %s)\n", g.Rows(), g.Cols(), *valueCol, *xCol, *yCol)
		if vr, err := a.GetValueRange(); err == nil {
			fmt.Printf("value range: [%g, %g]\n", vr[0], vr[1])
		}

		if *cut != "" {
			axis, coordText, ok := strings.Cut(*cut, ":")
			if !ok {
				log.Fatalf("cut %q: want axis:coordinate", *cut)
			}
			coord, err := strconv.ParseFloat(coordText, 64)
			if err != nil {
				log.Fatalf("cut %q: %v", *cut, err)
			}
			prof, err := a.GetCrossSection(axis, coord)
			if err != nil {
				log.Fatalf("cut: %v", err)
			}
			fmt.Printf("cross-section along %s at %g:\n", prof.Axis, prof.Fixed)
			for i, c := range prof.Coords {
				fmt.Printf("  %g\t%g\n", c, prof.Values[i])
			}
		}
	}

	if *exportPath != "" {
		switch {
		case strings.HasSuffix(*exportPath, ".xlsx"):
			err = a.ExportXLSX(*exportPath)
		case strings.HasSuffix(*exportPath, ".json"):
			err = a.ExportJSON(*exportPath)
		default:
			err = a.ExportCSV(*exportPath)
		}
		if err != nil {
			log.Fatalf("export: %v", err)
		}
		fmt.Printf("exported %s\n", *exportPath)
	}
}

// applyFilter parses one -filter argument. col=min:max adds a range
// predicate; col=value adds an equality predicate, numeric when the value
// parses as a number.
func applyFilter(a *app.App, arg string) error {
	column, value, ok := strings.Cut(arg, "=")
	if !ok {
		return fmt.Errorf("want col=value or col=min:max")
	}
	if lo, hi, isRange := strings.Cut(value, ":"); isRange {
		min, errLo := strconv.ParseFloat(lo, 64)
		max, errHi := strconv.ParseFloat(hi, 64)
		if errLo == nil && errHi == nil {
			return a.AddRangeFilter(column, min, max)
		}
	}
	if n, err := strconv.ParseFloat(value, 64); err == nil {
		return a.AddValueFilter(column, n)
	}
	return a.AddValueFilter(column, value)
}
