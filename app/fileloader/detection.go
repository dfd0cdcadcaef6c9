package fileloader

import (
	"bufio"
	"io"
	"strings"
)

// maxSniffLines bounds how much of a file the format detector inspects.
const maxSniffLines = 20

// maxLineBytes is the scanner buffer limit for a single line. Instrument
// exports can carry very wide DataValue rows.
const maxLineBytes = 1 << 20

// newLineScanner returns a line scanner sized for wide instrument rows.
func newLineScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return sc
}

// DetectFormat inspects up to maxSniffLines lines and picks the parser for
// the content. A DataName line selects the tagged-row format; otherwise a
// start-condition marker line selects the column-table format; anything else,
// including unreadable input, falls back to generic delimited text.
func DetectFormat(r io.Reader) FileFormat {
	sawDataName := false
	sawStartCondition := false

	sc := newLineScanner(r)
	for n := 0; n < maxSniffLines && sc.Scan(); n++ {
		line := sc.Text()
		if strings.HasPrefix(line, markerDataName) {
			sawDataName = true
		}
		if strings.HasPrefix(line, markerStartCondition) {
			sawStartCondition = true
		}
	}

	// DataName takes priority when both markers appear in the prefix.
	if sawDataName {
		return FormatTaggedRow
	}
	if sawStartCondition {
		return FormatColumnTable
	}
	return FormatGeneric
}
