package importer

import (
	"candreg/candidate"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

const (
	FormatCSV   = "csv"
	FormatJSON  = "json"
	FormatText  = "text"
	FormatExcel = "excel"
)

var (
	ErrSourceNotFound    = errors.New("source not found")
	ErrMalformedContent  = errors.New("malformed content")
	ErrNoParser          = errors.New("no parser set")
	ErrUnsupportedFormat = errors.New("unsupported input format")
)

// Parser turns one source format into candidate records.
//
// Parse never returns a nil Result. When the source as a whole cannot be read
// the Result is empty and the error says why; rows that cannot be mapped are
// skipped, listed in Result.Skipped and do not produce an error.
type Parser interface {
	Parse(ctx context.Context, path string) (*Result, error)
}

type Result struct {
	Format  string
	Source  string
	Records []candidate.Record
	Skipped []RowIssue
}

// RowIssue describes one skipped row. Line is 1-based; for JSON it is the
// position of the element in the array.
type RowIssue struct {
	Line    int
	Content string
	Reason  string
}

func newResult(format, source string) *Result {
	return &Result{
		Format:  format,
		Source:  source,
		Records: make([]candidate.Record, 0, 64),
	}
}

func SupportedFormats() []string {
	return []string{FormatCSV, FormatJSON, FormatText, FormatExcel}
}

func ParserForFormat(format string, logger *slog.Logger) (Parser, error) {
	switch strings.TrimSpace(strings.ToLower(format)) {
	case "csv":
		return &CSVParser{Logger: logger}, nil
	case "json":
		return &JSONParser{Logger: logger}, nil
	case "text", "txt":
		return &TextParser{Logger: logger}, nil
	case "excel", "xlsx", "xlsm":
		return &ExcelParser{Logger: logger}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// InferFormat derives the input format from the file extension.
func InferFormat(path string) (string, error) {
	extension := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch extension {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "txt", "text":
		return FormatText, nil
	case "xlsx", "xlsm":
		return FormatExcel, nil
	default:
		return "", fmt.Errorf("%w: cannot infer format from extension of %s", ErrUnsupportedFormat, path)
	}
}

// ResolveFormat returns the explicit format when set, otherwise the inferred one.
func ResolveFormat(path, format string) (string, error) {
	if strings.TrimSpace(format) != "" {
		return strings.TrimSpace(strings.ToLower(format)), nil
	}
	return InferFormat(path)
}

func loggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

func reportRow(logger *slog.Logger, result *Result, issue RowIssue) {
	result.Skipped = append(result.Skipped, issue)
	loggerOrDefault(logger).Warn("skipping invalid row",
		"source", result.Source,
		"format", result.Format,
		"line", issue.Line,
		"content", issue.Content,
		"reason", issue.Reason,
	)
}

// reportFailure logs a source-level failure and returns an empty result for it.
func reportFailure(logger *slog.Logger, result *Result, err error) (*Result, error) {
	attrs := []any{"source", result.Source, "format", result.Format, "error", err}
	switch {
	case errors.Is(err, ErrSourceNotFound):
		loggerOrDefault(logger).Error("file not found", attrs...)
	case errors.Is(err, ErrMalformedContent):
		loggerOrDefault(logger).Error("error decoding file", attrs...)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
	default:
		loggerOrDefault(logger).Error("parse failed", attrs...)
	}
	return newResult(result.Format, result.Source), err
}
