package importer

import (
	"context"
	"log/slog"
)

// Selector holds the active parser and delegates Parse calls to it. The zero
// value is usable and logs through slog.Default.
type Selector struct {
	parser Parser
	logger *slog.Logger
}

func NewSelector(logger *slog.Logger) *Selector {
	return &Selector{logger: logger}
}

// SetParser replaces the held parser. Passing nil clears it.
func (s *Selector) SetParser(parser Parser) {
	s.parser = parser
}

func (s *Selector) Parser() Parser {
	return s.parser
}

// Parse delegates to the held parser and returns its result unchanged. Without
// a parser it logs a diagnostic and returns an empty result with ErrNoParser.
func (s *Selector) Parse(ctx context.Context, path string) (*Result, error) {
	if s.parser == nil {
		loggerOrDefault(s.logger).Error("no parser set; select a parsing strategy before parsing", "source", path)
		return newResult("", path), ErrNoParser
	}
	return s.parser.Parse(ctx, path)
}
