package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"sweepview/app/dataset"
)

// WriteXLSXFile writes t as a single-sheet workbook. Numeric cells are
// written as numbers so spreadsheet tools see real values; missing cells are
// left empty.
func WriteXLSXFile(path string, t *dataset.Table) error {
	wb := excelize.NewFile()
	defer wb.Close()
	sheet := wb.GetSheetName(0)

	header := make([]any, t.NumColumns())
	for j, name := range t.Columns() {
		header[j] = name
	}
	if err := wb.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}

	row := make([]any, t.NumColumns())
	for i := 0; i < t.RowCount(); i++ {
		for j := 0; j < t.NumColumns(); j++ {
			col := t.ColumnAt(j)
			if col.Kind == dataset.KindNumeric {
				if col.IsMissing(i) {
					row[j] = nil
				} else {
					row[j] = col.Floats[i]
				}
			} else {
				row[j] = col.Strings[i]
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("export %s: %w", path, err)
		}
		if err := wb.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("export %s: %w", path, err)
		}
	}

	if err := wb.SaveAs(path); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}
