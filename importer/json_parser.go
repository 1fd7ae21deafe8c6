package importer

import (
	"candreg/candidate"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
)

// JSONParser reads a JSON array of objects. Keys are matched case-insensitively
// and ignoring underscores; the legacy keys DOB and SOC are accepted for
// date_of_birth and identifier. Missing keys map to "". Elements that are not
// objects are reported by their 1-based array position and skipped.
type JSONParser struct {
	Logger *slog.Logger
}

func (p *JSONParser) Parse(ctx context.Context, path string) (*Result, error) {
	result := newResult(FormatJSON, path)

	source, err := openSource(path)
	if err != nil {
		return reportFailure(p.Logger, result, err)
	}
	defer source.Close()

	content, err := io.ReadAll(source)
	if err != nil {
		return reportFailure(p.Logger, result, fmt.Errorf("read json source: %w", err))
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(content, &elements); err != nil {
		return reportFailure(p.Logger, result, fmt.Errorf("%w: decode json array: %w", ErrMalformedContent, err))
	}

	for i, element := range elements {
		if err := ctx.Err(); err != nil {
			return reportFailure(p.Logger, result, err)
		}

		var object map[string]any
		if err := json.Unmarshal(element, &object); err != nil || object == nil {
			reportRow(p.Logger, result, RowIssue{
				Line:    i + 1,
				Content: string(element),
				Reason:  "array element is not an object",
			})
			continue
		}
		result.Records = append(result.Records, recordFromKeyedRow(newKeyedRow(object)))
	}

	return result, nil
}

func recordFromKeyedRow(row keyedRow) candidate.Record {
	return candidate.Record{
		FirstName:   row.Get("first_name"),
		LastName:    row.Get("last_name"),
		DateOfBirth: row.Get("date_of_birth", "DOB"),
		Party:       row.Get("party"),
		Identifier:  row.Get("identifier", "SOC"),
		Position:    row.Get("position"),
	}
}
