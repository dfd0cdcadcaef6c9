// Package fileloader detects and parses the supported measurement file
// layouts (generic delimited text, the tagged-row instrument export and the
// column-table instrument export), transparently handling gzip/bzip2/xz
// compressed input and XLSX workbooks. A parse either fully succeeds,
// producing a table plus the metadata found in the header region, or fails
// without partial results.
package fileloader

import (
	"errors"
	"fmt"
	"strings"

	"sweepview/app/dataset"
)

// FileFormat represents the text layout of a data file
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatGeneric
	FormatTaggedRow
	FormatColumnTable
)

// String returns the string representation of FileFormat
func (f FileFormat) String() string {
	switch f {
	case FormatGeneric:
		return "generic"
	case FormatTaggedRow:
		return "tagged-row"
	case FormatColumnTable:
		return "column-table"
	default:
		return "unknown"
	}
}

// ParseFileFormat maps a user-supplied format hint to a FileFormat. An empty
// hint or "auto" selects automatic detection.
func ParseFileFormat(hint string) (FileFormat, error) {
	switch strings.ToLower(strings.TrimSpace(hint)) {
	case "", "auto":
		return FormatUnknown, nil
	case "generic", "csv":
		return FormatGeneric, nil
	case "tagged-row", "taggedrow":
		return FormatTaggedRow, nil
	case "column-table", "columntable":
		return FormatColumnTable, nil
	default:
		return FormatUnknown, fmt.Errorf("unknown file format %q", hint)
	}
}

// Layout markers for the two instrument formats.
const (
	markerDataName       = "DataName"
	markerDataValue      = "DataValue"
	markerStartCondition = "AutoAnalysis.Marker.Data.StartCondition"
)

// metadataMarkers prefix the tagged-row section lines that carry key/value
// metadata before the DataName header.
var metadataMarkers = []string{"TestParameter", "MetaData", "AnalysisSetup"}

// Options control how a file is loaded.
type Options struct {
	// Format forces a specific parser. FormatUnknown selects automatic
	// detection with the try-all fallback chain.
	Format FileFormat
}

// Result is a fully parsed data file.
type Result struct {
	Table       *dataset.Table
	Meta        *dataset.Metadata
	Path        string
	Format      FileFormat
	Compression CompressionType
	Hash        string
}

// Sentinel errors for structural parse failures.
var (
	ErrEmptyFile     = errors.New("file contains no data")
	ErrNoDataName    = errors.New("no DataName header line found")
	ErrNoTableHeader = errors.New("no column header found after start-condition marker")
)

// ParseError reports a structural failure parsing a file as one format.
type ParseError struct {
	Path   string
	Format FileFormat
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s as %s: %v", e.Path, e.Format, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// DetectError reports that every candidate format failed to parse a file. It
// aggregates the per-format failures so the cause of each attempt survives.
type DetectError struct {
	Path     string
	Attempts []error
}

func (e *DetectError) Error() string {
	reasons := make([]string, len(e.Attempts))
	for i, attempt := range e.Attempts {
		reasons[i] = attempt.Error()
	}
	return fmt.Sprintf("no format could parse %s: %s", e.Path, strings.Join(reasons, "; "))
}

func (e *DetectError) Unwrap() []error {
	return e.Attempts
}
