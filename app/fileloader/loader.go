package fileloader

import (
	"bytes"
	"fmt"

	"sweepview/app/dataset"
)

// fallbackOrder is the fixed retry order when the detected format fails to
// parse. The failed candidate is skipped on retry.
var fallbackOrder = [...]FileFormat{FormatTaggedRow, FormatColumnTable, FormatGeneric}

// Load reads, sniffs and parses the data file at path. With an explicit
// format in opts the named parser is used and its failure is terminal; with
// automatic detection a failed parse falls back to the remaining formats in
// fixed order, and the returned error aggregates every attempt.
func Load(path string, opts Options) (*Result, error) {
	raw, compression, err := readDataFile(path)
	if err != nil {
		return nil, err
	}

	hinted := opts.Format != FormatUnknown
	format := opts.Format
	if !hinted {
		format = DetectFormat(bytes.NewReader(raw))
	}

	table, meta, err := parseAs(format, raw)
	if err == nil {
		return finishLoad(path, format, compression, table, meta)
	}
	first := &ParseError{Path: path, Format: format, Err: err}
	if hinted {
		return nil, first
	}

	attempts := []error{first}
	for _, candidate := range fallbackOrder {
		if candidate == format {
			continue
		}
		table, meta, err := parseAs(candidate, raw)
		if err != nil {
			attempts = append(attempts, &ParseError{Path: path, Format: candidate, Err: err})
			continue
		}
		return finishLoad(path, candidate, compression, table, meta)
	}
	return nil, &DetectError{Path: path, Attempts: attempts}
}

// parseAs dispatches to the parser for one format.
func parseAs(format FileFormat, data []byte) (*dataset.Table, *dataset.Metadata, error) {
	switch format {
	case FormatTaggedRow:
		return parseTaggedRow(data)
	case FormatColumnTable:
		return parseColumnTable(data)
	default:
		return parseGeneric(data)
	}
}

// finishLoad stamps a successful parse with the file's identity hash.
func finishLoad(path string, format FileFormat, compression CompressionType, table *dataset.Table, meta *dataset.Metadata) (*Result, error) {
	hash, err := HashFile(path)
	if err != nil {
		return nil, fmt.Errorf("hash %s: %w", path, err)
	}
	return &Result{
		Table:       table,
		Meta:        meta,
		Path:        path,
		Format:      format,
		Compression: compression,
		Hash:        hash,
	}, nil
}
