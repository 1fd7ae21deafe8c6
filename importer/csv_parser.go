package importer

import (
	"bytes"
	"candreg/candidate"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// CSVParser reads comma-separated files. The first row is a header and is
// discarded; each following row maps its first six fields positionally. Quotes
// inside unquoted fields are kept as literal characters.
type CSVParser struct {
	Logger *slog.Logger
}

func (p *CSVParser) Parse(ctx context.Context, path string) (*Result, error) {
	result := newResult(FormatCSV, path)

	source, err := openSource(path)
	if err != nil {
		return reportFailure(p.Logger, result, err)
	}
	defer source.Close()

	content, err := io.ReadAll(source)
	if err != nil {
		return reportFailure(p.Logger, result, fmt.Errorf("read csv source: %w", err))
	}
	lines := strings.Split(string(content), "\n")

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return result, nil
		}
		return reportFailure(p.Logger, result, fmt.Errorf("%w: read csv header: %w", ErrMalformedContent, err))
	}

	for {
		if err := ctx.Err(); err != nil {
			return reportFailure(p.Logger, result, err)
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				reportRow(p.Logger, result, RowIssue{
					Line:    parseErr.StartLine,
					Content: rawLine(lines, parseErr.StartLine),
					Reason:  parseErr.Err.Error(),
				})
				continue
			}
			return reportFailure(p.Logger, result, fmt.Errorf("read csv row: %w", err))
		}

		line, _ := reader.FieldPos(0)
		record, ok := candidate.FromFields(row)
		if !ok {
			reportRow(p.Logger, result, RowIssue{
				Line:    line,
				Content: strings.Join(row, ","),
				Reason:  fmt.Sprintf("expected %d fields, got %d", candidate.FieldCount, len(row)),
			})
			continue
		}
		result.Records = append(result.Records, record)
	}

	return result, nil
}

// rawLine returns the 1-based line from the source without its line ending.
func rawLine(lines []string, number int) string {
	if number < 1 || number > len(lines) {
		return ""
	}
	return strings.TrimRight(lines[number-1], "\r")
}
