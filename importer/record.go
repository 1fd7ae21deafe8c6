package importer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// keyedRow is one decoded object from a keyed source such as a JSON array.
type keyedRow struct {
	raw        map[string]any
	normalized map[string]any
}

func newKeyedRow(values map[string]any) keyedRow {
	normalized := make(map[string]any, len(values))
	for key, value := range values {
		normalized[normalizeHeader(key)] = value
	}
	return keyedRow{raw: values, normalized: normalized}
}

// Get returns the value for the first key present, trying the exact key before
// its normalized form. Missing keys and null values yield "".
func (r keyedRow) Get(keys ...string) string {
	for _, key := range keys {
		if value, ok := r.raw[key]; ok {
			return stringValue(value)
		}
	}
	for _, key := range keys {
		if value, ok := r.normalized[normalizeHeader(key)]; ok {
			return stringValue(value)
		}
	}
	return ""
}

func stringValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(typed)
	case json.Number:
		return typed.String()
	default:
		encoded, err := json.Marshal(typed)
		if err != nil {
			return fmt.Sprint(typed)
		}
		return string(encoded)
	}
}

func normalizeHeader(input string) string {
	trimmed := strings.TrimSpace(strings.ToLower(input))
	trimmed = strings.ReplaceAll(trimmed, "_", "")
	trimmed = strings.ReplaceAll(trimmed, "-", "")
	trimmed = strings.ReplaceAll(trimmed, " ", "")
	return trimmed
}
