package fileloader

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// isXLSXFile reports whether path names an Excel workbook.
func isXLSXFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}

// flattenXLSX converts the first sheet of a workbook to CSV text so the
// format detector and parsers can treat it like any other text input. An
// instrument export pasted into a spreadsheet keeps its layout this way.
func flattenXLSX(path string) ([]byte, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx %s: no sheets found", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read xlsx %s: %w", path, err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("flatten xlsx %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flatten xlsx %s: %w", path, err)
	}
	return buf.Bytes(), nil
}
