package fileloader

import (
	"bytes"
	"fmt"
	"strings"

	"sweepview/app/dataset"
)

// parseTaggedRow reads the tagged-row instrument layout. Section lines
// prefixed TestParameter, MetaData or AnalysisSetup carry key/value metadata
// until the DataName line, whose fields past the first are the column names.
// After that only DataValue lines count as data; their first field is
// discarded and blank fields become a hard "0" before numeric coercion.
func parseTaggedRow(data []byte) (*dataset.Table, *dataset.Metadata, error) {
	meta := dataset.NewMetadata()
	var names []string
	var rows [][]string
	seenHeader := false

	sc := newLineScanner(bytes.NewReader(data))
	for lineNo := 1; sc.Scan(); lineNo++ {
		line := sc.Text()

		if !seenHeader {
			if strings.HasPrefix(line, markerDataName) {
				fields := strings.Split(strings.TrimSpace(line), ",")
				names = make([]string, 0, len(fields)-1)
				for _, f := range fields[1:] {
					names = append(names, strings.TrimSpace(f))
				}
				names = NormalizeHeaders(names)
				seenHeader = true
				continue
			}
			if hasMetadataMarker(line) {
				if key, value, ok := strings.Cut(strings.TrimSpace(line), ","); ok {
					meta.Set(strings.TrimSpace(key), strings.TrimSpace(value))
				}
			}
			continue
		}

		if !strings.HasPrefix(line, markerDataValue) {
			continue
		}
		fields := strings.Split(strings.TrimSpace(line), ",")[1:]
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
			if fields[i] == "" {
				// Blank fields in a DataValue row are an explicit zero, not a
				// missing value.
				fields[i] = "0"
			}
		}
		if len(fields) > len(names) {
			return nil, nil, fmt.Errorf("line %d has %d values, header has %d columns", lineNo, len(fields), len(names))
		}
		rows = append(rows, fields)
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("scan input: %w", err)
	}
	if !seenHeader {
		return nil, nil, ErrNoDataName
	}

	table, err := buildNumericColumns(names, rows)
	if err != nil {
		return nil, nil, err
	}
	return table, meta, nil
}

// hasMetadataMarker reports whether the line opens one of the tagged-row
// metadata sections.
func hasMetadataMarker(line string) bool {
	for _, marker := range metadataMarkers {
		if strings.HasPrefix(line, marker) {
			return true
		}
	}
	return false
}
