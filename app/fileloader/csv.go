package fileloader

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"sweepview/app/dataset"
)

// parseGeneric reads ordinary delimited text: the first record is the column
// header, every following record one row. Per-column types are inferred; a
// column where every non-missing cell parses as a number becomes numeric,
// anything else stays a string column.
func parseGeneric(data []byte) (*dataset.Table, *dataset.Metadata, error) {
	r := csv.NewReader(bytes.NewReader(data))
	// Allow ragged records so short rows can be padded with missing values
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil, ErrEmptyFile
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	names := NormalizeHeaders(header)

	var rows [][]string
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read line %d: %w", line, err)
		}
		if len(rec) > len(names) {
			return nil, nil, fmt.Errorf("line %d has %d fields, header has %d", line, len(rec), len(names))
		}
		rows = append(rows, rec)
	}

	table, err := buildInferredColumns(names, rows)
	if err != nil {
		return nil, nil, err
	}
	return table, dataset.NewMetadata(), nil
}
