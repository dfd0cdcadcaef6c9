package fileloader

import (
	"fmt"
	"strings"
)

// excelColumnName converts a 0-based index to Excel-style column name.
// Examples: 0 -> A, 1 -> B, 25 -> Z, 26 -> AA, 27 -> AB, 701 -> ZZ, 702 -> AAA
func excelColumnName(index int) string {
	result := ""
	index++ // Convert to 1-based for the algorithm

	for index > 0 {
		index-- // Adjust for 0-based letter indexing
		result = string(rune('A'+index%26)) + result
		index /= 26
	}

	return result
}

// NormalizeHeaders makes a header row usable as unique column names. All
// parsers funnel their headers through here so naming stays consistent
// across formats.
//
// Rules:
//   - Empty or whitespace-only headers become Unnamed_A, Unnamed_B, ...,
//     Unnamed_Z, Unnamed_AA, ... following Excel column naming
//   - Repeated names get a numeric suffix: the second "V" becomes "V_2",
//     the third "V_3", and so on
//   - Anything else is preserved as-is
//
// Example:
//
//	Input:  ["name", "", "age", "name", "city"]
//	Output: ["name", "Unnamed_A", "age", "name_2", "city"]
func NormalizeHeaders(header []string) []string {
	normalized := make([]string, len(header))
	used := make(map[string]bool, len(header))
	counts := make(map[string]int)
	emptyCount := 0

	for i, h := range header {
		name := h
		if strings.TrimSpace(name) == "" {
			name = "Unnamed_" + excelColumnName(emptyCount)
			emptyCount++
		}

		if used[name] {
			base := name
			n := counts[base] + 2
			for {
				name = fmt.Sprintf("%s_%d", base, n)
				if !used[name] {
					break
				}
				n++
			}
			counts[base] = n - 1
		}
		used[name] = true
		normalized[i] = name
	}

	return normalized
}
