package output

import (
	"candreg/candidate"
	"fmt"

	"github.com/xuri/excelize/v2"
)

type ExcelWriter struct{}

func (w *ExcelWriter) Write(path string, records []candidate.Record) error {
	file := excelize.NewFile()
	defer file.Close()

	sheet := file.GetSheetName(0)
	if err := writeExcelRow(file, sheet, 1, candidate.FieldNames); err != nil {
		return fmt.Errorf("set excel header: %w", err)
	}

	for i, record := range records {
		if err := writeExcelRow(file, sheet, i+2, record.Fields()); err != nil {
			return err
		}
	}

	if err := file.SaveAs(path); err != nil {
		return fmt.Errorf("save excel output %s: %w", path, err)
	}

	return nil
}

func writeExcelRow(file *excelize.File, sheet string, row int, values []string) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("resolve excel cell: %w", err)
		}
		// Explicit strings keep identifiers like 00123 from being stored as numbers.
		if err := file.SetCellStr(sheet, cell, value); err != nil {
			return fmt.Errorf("set excel value %s: %w", cell, err)
		}
	}
	return nil
}
