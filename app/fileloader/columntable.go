package fileloader

import (
	"bytes"
	"fmt"
	"strings"

	"sweepview/app/dataset"
)

// parseColumnTable reads the column-table instrument layout. Every comma line
// before the start-condition marker is a key/value metadata pair. After the
// marker the first comma line is the column header and all following
// non-blank comma lines are data rows, with blank fields read as missing.
func parseColumnTable(data []byte) (*dataset.Table, *dataset.Metadata, error) {
	meta := dataset.NewMetadata()
	var names []string
	var rows [][]string
	markerSeen := false
	headerSeen := false

	sc := newLineScanner(bytes.NewReader(data))
	for lineNo := 1; sc.Scan(); lineNo++ {
		line := strings.TrimSpace(sc.Text())

		if !markerSeen {
			if strings.HasPrefix(line, markerStartCondition+",") {
				markerSeen = true
				continue
			}
			if key, value, ok := strings.Cut(line, ","); ok {
				meta.Set(strings.TrimSpace(key), strings.TrimSpace(value))
			}
			continue
		}

		if line == "" || !strings.Contains(line, ",") {
			continue
		}
		fields := strings.Split(line, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		if !headerSeen {
			names = NormalizeHeaders(fields)
			headerSeen = true
			continue
		}
		if len(fields) > len(names) {
			return nil, nil, fmt.Errorf("line %d has %d values, header has %d columns", lineNo, len(fields), len(names))
		}
		rows = append(rows, fields)
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("scan input: %w", err)
	}
	if !headerSeen {
		return nil, nil, ErrNoTableHeader
	}

	table, err := buildNumericColumns(names, rows)
	if err != nil {
		return nil, nil, err
	}
	return table, meta, nil
}
