package importer

import (
	"candreg/candidate"
	"context"
	"errors"
	"fmt"
	"log/slog"
)

type Summary struct {
	FilesProcessed int
	FilesFailed    int
	RowsSkipped    int
	Records        []candidate.Record
}

// Run parses every path with the parser for its format. A file that cannot be
// read contributes no records and is counted in FilesFailed; processing
// continues with the next file. Unsupported formats and cancellation abort.
func Run(ctx context.Context, paths []string, format string, logger *slog.Logger) (*Summary, error) {
	summary := &Summary{Records: make([]candidate.Record, 0, 256)}
	selector := NewSelector(logger)

	for _, path := range paths {
		sourceFormat, err := ResolveFormat(path, format)
		if err != nil {
			return nil, err
		}
		parser, err := ParserForFormat(sourceFormat, logger)
		if err != nil {
			return nil, err
		}
		selector.SetParser(parser)
		loggerOrDefault(logger).Debug("parsing file", "source", path, "parser", fmt.Sprintf("%T", selector.Parser()))

		result, err := selector.Parse(ctx, path)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			summary.FilesFailed++
			continue
		}

		summary.FilesProcessed++
		summary.RowsSkipped += len(result.Skipped)
		summary.Records = append(summary.Records, result.Records...)
	}

	return summary, nil
}
