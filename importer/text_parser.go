package importer

import (
	"bufio"
	"candreg/candidate"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// TextParser reads one record per line with six comma-separated fields and no
// header. Lines with any other field count are reported and skipped. Line
// length is not limited.
type TextParser struct {
	Logger *slog.Logger
}

func (p *TextParser) Parse(ctx context.Context, path string) (*Result, error) {
	result := newResult(FormatText, path)

	source, err := openSource(path)
	if err != nil {
		return reportFailure(p.Logger, result, err)
	}
	defer source.Close()

	reader := bufio.NewReader(source)
	lineNumber := 0
	for {
		if err := ctx.Err(); err != nil {
			return reportFailure(p.Logger, result, err)
		}

		raw, readErr := reader.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return reportFailure(p.Logger, result, fmt.Errorf("read text source: %w", readErr))
		}
		if readErr == io.EOF && raw == "" {
			break
		}
		lineNumber++

		line := strings.TrimRight(raw, "\r\n")
		fields := strings.Split(strings.TrimSpace(line), ",")
		if len(fields) != candidate.FieldCount {
			reportRow(p.Logger, result, RowIssue{
				Line:    lineNumber,
				Content: line,
				Reason:  fmt.Sprintf("expected %d fields, got %d", candidate.FieldCount, len(fields)),
			})
		} else {
			record, _ := candidate.FromFields(fields)
			result.Records = append(result.Records, record)
		}

		if readErr == io.EOF {
			break
		}
	}

	return result, nil
}
