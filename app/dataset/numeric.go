package dataset

import (
	"math"
	"strconv"
	"strings"
)

// missingTokens are the cell spellings read as an absent numeric value.
var missingTokens = map[string]struct{}{
	"":     {},
	"NaN":  {},
	"nan":  {},
	"NA":   {},
	"null": {},
}

// ParseNumber converts raw cell text to a float64. Missing tokens map to NaN
// with ok=true; any other text that does not parse returns ok=false.
func ParseNumber(s string) (v float64, ok bool) {
	s = strings.TrimSpace(s)
	if _, missing := missingTokens[s]; missing {
		return math.NaN(), true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// CoerceNumber converts raw cell text to a float64 the way instrument exports
// are read: anything that does not parse as a number becomes NaN.
func CoerceNumber(s string) float64 {
	v, ok := ParseNumber(s)
	if !ok {
		return math.NaN()
	}
	return v
}
