package importer

import (
	"candreg/candidate"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExcelParser reads the first sheet of an xlsx workbook with the same layout
// as the CSV source: one header row, then six positional columns per row.
type ExcelParser struct {
	Logger *slog.Logger
}

func (p *ExcelParser) Parse(ctx context.Context, path string) (*Result, error) {
	result := newResult(FormatExcel, path)

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return reportFailure(p.Logger, result, fmt.Errorf("%w: %s", ErrSourceNotFound, path))
		}
		return reportFailure(p.Logger, result, fmt.Errorf("stat excel file %s: %w", path, err))
	}

	file, err := excelize.OpenFile(path)
	if err != nil {
		return reportFailure(p.Logger, result, fmt.Errorf("%w: open excel file %s: %w", ErrMalformedContent, path, err))
	}
	defer file.Close()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return reportFailure(p.Logger, result, fmt.Errorf("%w: excel file has no sheets: %s", ErrMalformedContent, path))
	}

	rows, err := file.GetRows(sheetName)
	if err != nil {
		return reportFailure(p.Logger, result, fmt.Errorf("read rows from sheet %s: %w", sheetName, err))
	}
	if len(rows) == 0 {
		return result, nil
	}

	// excelize drops trailing empty cells, so rows are padded to the header width.
	width := len(rows[0])
	for i, row := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return reportFailure(p.Logger, result, err)
		}
		if isEmptyRow(row) {
			continue
		}

		for len(row) < width {
			row = append(row, "")
		}

		record, ok := candidate.FromFields(row)
		if !ok {
			reportRow(p.Logger, result, RowIssue{
				Line:    i + 2,
				Content: strings.Join(row, ","),
				Reason:  fmt.Sprintf("expected %d fields, got %d", candidate.FieldCount, len(row)),
			})
			continue
		}
		result.Records = append(result.Records, record)
	}

	return result, nil
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
