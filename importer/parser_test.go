package importer

import (
	"candreg/candidate"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

var johnDoe = candidate.Record{
	FirstName:   "John",
	LastName:    "Doe",
	DateOfBirth: "1990-01-01",
	Party:       "Independent",
	Identifier:  "123-45-6789",
	Position:    "Senator",
}

func TestCSVParser_HeaderAndOneRow(t *testing.T) {
	t.Parallel()
	path := writeFile(t, t.TempDir(), "candidates.csv",
		"first_name,last_name,DOB,party,SOC,position\n"+
			"John,Doe,1990-01-01,Independent,123-45-6789,Senator\n")

	result, err := (&CSVParser{Logger: discardLogger()}).Parse(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(result.Records))
	}
	if result.Records[0] != johnDoe {
		t.Fatalf("unexpected record: %+v", result.Records[0])
	}
	if result.Format != FormatCSV {
		t.Fatalf("expected format csv, got %q", result.Format)
	}
}

func TestCSVParser_KRowsInOrder(t *testing.T) {
	t.Parallel()
	var builder strings.Builder
	builder.WriteString("a,b,c,d,e,f\n")
	names := []string{"Ann", "Bob", "Cid", "Dee"}
	for _, name := range names {
		builder.WriteString(name + ",Lee,2000-02-02,X,id-" + name + ",Mayor\n")
	}
	path := writeFile(t, t.TempDir(), "many.csv", builder.String())

	result, err := (&CSVParser{Logger: discardLogger()}).Parse(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Records) != len(names) {
		t.Fatalf("expected %d records, got %d", len(names), len(result.Records))
	}
	for i, name := range names {
		got := result.Records[i]
		if got.FirstName != name || got.Identifier != "id-"+name || got.Position != "Mayor" {
			t.Fatalf("record %d mapped incorrectly: %+v", i, got)
		}
	}
}

func TestCSVParser_ShortRowSkippedAndReported(t *testing.T) {
	t.Parallel()
	path := writeFile(t, t.TempDir(), "short.csv",
		"first_name,last_name,DOB,party,SOC,position\n"+
			"Only,Three,Fields\n"+
			"John,Doe,1990-01-01,Independent,123-45-6789,Senator\n")

	result, err := (&CSVParser{Logger: discardLogger()}).Parse(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Records) != 1 || result.Records[0] != johnDoe {
		t.Fatalf("expected only the valid row, got %+v", result.Records)
	}
	if len(result.Skipped) != 1 {
		t.Fatalf("expected 1 skipped row, got %d", len(result.Skipped))
	}
	if result.Skipped[0].Line != 2 || result.Skipped[0].Content != "Only,Three,Fields" {
		t.Fatalf("unexpected skipped row: %+v", result.Skipped[0])
	}
}

func TestCSVParser_QuoteInsideFieldKept(t *testing.T) {
	t.Parallel()
	path := writeFile(t, t.TempDir(), "quotes.csv",
		"h1,h2,h3,h4,h5,h6\n"+
			"Sean,O\"Brien,1990-01-01,Independent,1,Senator\n"+
			"John,Doe,1990-01-01,Independent,123-45-6789,Senator\n")

	result, err := (&CSVParser{Logger: discardLogger()}).Parse(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Skipped) != 0 {
		t.Fatalf("expected no skipped rows, got %+v", result.Skipped)
	}
	if len(result.Records) != 2 || result.Records[0].LastName != `O"Brien` || result.Records[1] != johnDoe {
		t.Fatalf("unexpected records: %+v", result.Records)
	}
}

func TestRawLine(t *testing.T) {
	t.Parallel()
	lines := []string{"header\r", "a,b"}
	tests := []struct {
		number int
		want   string
	}{
		{number: 1, want: "header"},
		{number: 2, want: "a,b"},
		{number: 0, want: ""},
		{number: 3, want: ""},
	}
	for _, tt := range tests {
		if got := rawLine(lines, tt.number); got != tt.want {
			t.Fatalf("line %d: expected %q, got %q", tt.number, tt.want, got)
		}
	}
}

func TestCSVParser_ExtraFieldsIgnored(t *testing.T) {
	t.Parallel()
	path := writeFile(t, t.TempDir(), "wide.csv",
		"h1,h2,h3,h4,h5,h6,h7\n"+
			"John,Doe,1990-01-01,Independent,123-45-6789,Senator,extra\n")

	result, err := (&CSVParser{Logger: discardLogger()}).Parse(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Records) != 1 || result.Records[0] != johnDoe {
		t.Fatalf("expected first six fields mapped, got %+v", result.Records)
	}
}

func TestCSVParser_QuotedFieldsAndBOM(t *testing.T) {
	t.Parallel()
	path := writeFile(t, t.TempDir(), "bom.csv",
		"\xEF\xBB\xBFfirst_name,last_name,DOB,party,SOC,position\n"+
			"\"Doe, Jr.\",Smith,1970-07-07,\"Green\",9,Clerk\n")

	result, err := (&CSVParser{Logger: discardLogger()}).Parse(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Records) != 1 || result.Records[0].FirstName != "Doe, Jr." || result.Records[0].Party != "Green" {
		t.Fatalf("unexpected records: %+v", result.Records)
	}
}

func TestCSVParser_EmptyFileYieldsNothing(t *testing.T) {
	t.Parallel()
	path := writeFile(t, t.TempDir(), "empty.csv", "")

	result, err := (&CSVParser{Logger: discardLogger()}).Parse(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Records) != 0 {
		t.Fatalf("expected no records, got %d", len(result.Records))
	}
}

func TestJSONParser_MissingKeysDefaultToEmpty(t *testing.T) {
	t.Parallel()
	path := writeFile(t, t.TempDir(), "candidates.json", `[{"first_name":"Ann","last_name":"Lee","party":"X"}]`)

	result, err := (&JSONParser{Logger: discardLogger()}).Parse(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := candidate.Record{FirstName: "Ann", LastName: "Lee", Party: "X"}
	if len(result.Records) != 1 || result.Records[0] != want {
		t.Fatalf("expected %+v, got %+v", want, result.Records)
	}
}

func TestJSONParser_AllKeysAndLegacyNames(t *testing.T) {
	t.Parallel()
	path := writeFile(t, t.TempDir(), "candidates.json", `[
  {"first_name":"John","last_name":"Doe","date_of_birth":"1990-01-01","party":"Independent","identifier":"123-45-6789","position":"Senator"},
  {"first_name":"John","last_name":"Doe","DOB":"1990-01-01","party":"Independent","SOC":"123-45-6789","position":"Senator"},
  {"FirstName":"John","LastName":"Doe","dob":"1990-01-01","Party":"Independent","soc":"123-45-6789","Position":"Senator"}
]`)

	result, err := (&JSONParser{Logger: discardLogger()}).Parse(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(result.Records))
	}
	for i, record := range result.Records {
		if record != johnDoe {
			t.Fatalf("record %d: expected %+v, got %+v", i, johnDoe, record)
		}
	}
}

func TestJSONParser_NonStringValues(t *testing.T) {
	t.Parallel()
	path := writeFile(t, t.TempDir(), "typed.json", `[{"first_name":"Ann","identifier":12345,"party":null,"position":true}]`)

	result, err := (&JSONParser{Logger: discardLogger()}).Parse(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := result.Records[0]
	if got.Identifier != "12345" || got.Party != "" || got.Position != "true" {
		t.Fatalf("unexpected conversion: %+v", got)
	}
}

func TestJSONParser_MalformedContent(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{name: "broken", content: `[{"first_name":`},
		{name: "object", content: `{"first_name":"Ann"}`},
		{name: "empty", content: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.name+".json", tt.content)
			result, err := (&JSONParser{Logger: discardLogger()}).Parse(context.Background(), path)
			if !errors.Is(err, ErrMalformedContent) {
				t.Fatalf("expected ErrMalformedContent, got %v", err)
			}
			if result == nil || len(result.Records) != 0 {
				t.Fatalf("expected empty result, got %+v", result)
			}
		})
	}
}

func TestJSONParser_SkipsNonObjectElements(t *testing.T) {
	t.Parallel()
	path := writeFile(t, t.TempDir(), "mixed.json", `[null, {"first_name":"Ann"}, 5, "x"]`)

	result, err := (&JSONParser{Logger: discardLogger()}).Parse(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Records) != 1 || result.Records[0].FirstName != "Ann" {
		t.Fatalf("expected only the object element, got %+v", result.Records)
	}
	if len(result.Skipped) != 3 {
		t.Fatalf("expected 3 skipped elements, got %+v", result.Skipped)
	}
	if result.Skipped[0].Line != 1 || result.Skipped[0].Content != "null" {
		t.Fatalf("unexpected first skipped element: %+v", result.Skipped[0])
	}
	if result.Skipped[1].Line != 3 || result.Skipped[1].Content != "5" {
		t.Fatalf("unexpected second skipped element: %+v", result.Skipped[1])
	}
}

func TestTextParser_LongLineDoesNotStopParsing(t *testing.T) {
	t.Parallel()
	long := strings.Repeat("x", 2*1024*1024)
	path := writeFile(t, t.TempDir(), "long.txt", "A,B,1,2,3,4\n"+long+"\nC,D,5,6,7,8\n")

	result, err := (&TextParser{Logger: discardLogger()}).Parse(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Records) != 2 || result.Records[1].FirstName != "C" {
		t.Fatalf("expected both valid lines, got %+v", result.Records)
	}
	if len(result.Skipped) != 1 || result.Skipped[0].Line != 2 || len(result.Skipped[0].Content) != len(long) {
		t.Fatalf("expected the long line to be skipped, got %d issues", len(result.Skipped))
	}
}

func TestTextParser_LastLineWithoutNewline(t *testing.T) {
	t.Parallel()
	path := writeFile(t, t.TempDir(), "tail.txt", "A,B,1,2,3,4\r\nC,D,5,6,7,8")

	result, err := (&TextParser{Logger: discardLogger()}).Parse(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Records) != 2 || result.Records[0].Position != "4" || result.Records[1].Position != "8" {
		t.Fatalf("unexpected records: %+v", result.Records)
	}
}

func TestTextParser_SkipsLinesWithWrongFieldCount(t *testing.T) {
	t.Parallel()
	path := writeFile(t, t.TempDir(), "candidates.txt", "A,B,1,2,3,4\nbad,line\n")

	result, err := (&TextParser{Logger: discardLogger()}).Parse(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := candidate.Record{FirstName: "A", LastName: "B", DateOfBirth: "1", Party: "2", Identifier: "3", Position: "4"}
	if len(result.Records) != 1 || result.Records[0] != want {
		t.Fatalf("expected %+v, got %+v", want, result.Records)
	}
	if len(result.Skipped) != 1 || result.Skipped[0].Content != "bad,line" || result.Skipped[0].Line != 2 {
		t.Fatalf("unexpected skipped lines: %+v", result.Skipped)
	}
}

func TestTextParser_ContinuesAfterInvalidLines(t *testing.T) {
	t.Parallel()
	path := writeFile(t, t.TempDir(), "mixed.txt",
		"too,many,fields,in,this,line,here\n"+
			"  John,Doe,1990-01-01,Independent,123-45-6789,Senator  \r\n"+
			"\n"+
			"Ann,Lee,2000-02-02,X,1,Mayor\n")

	result, err := (&TextParser{Logger: discardLogger()}).Parse(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(result.Records))
	}
	if result.Records[0] != johnDoe || result.Records[1].FirstName != "Ann" {
		t.Fatalf("unexpected records: %+v", result.Records)
	}
	if len(result.Skipped) != 2 {
		t.Fatalf("expected 2 skipped lines, got %+v", result.Skipped)
	}
}

func TestParsers_MissingSourceRecoversToEmpty(t *testing.T) {
	t.Parallel()
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	parsers := map[string]Parser{
		FormatCSV:   &CSVParser{Logger: discardLogger()},
		FormatJSON:  &JSONParser{Logger: discardLogger()},
		FormatText:  &TextParser{Logger: discardLogger()},
		FormatExcel: &ExcelParser{Logger: discardLogger()},
	}

	for name, parser := range parsers {
		t.Run(name, func(t *testing.T) {
			result, err := parser.Parse(context.Background(), missing)
			if !errors.Is(err, ErrSourceNotFound) {
				t.Fatalf("expected ErrSourceNotFound, got %v", err)
			}
			if result == nil {
				t.Fatalf("expected non-nil result")
			}
			if len(result.Records) != 0 {
				t.Fatalf("expected empty result, got %d records", len(result.Records))
			}
		})
	}
}

func TestParsers_HonorCancellation(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	csvPath := writeFile(t, dir, "c.csv", "h\nJohn,Doe,1990-01-01,Independent,123-45-6789,Senator\n")
	textPath := writeFile(t, dir, "c.txt", "John,Doe,1990-01-01,Independent,123-45-6789,Senator\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := (&CSVParser{Logger: discardLogger()}).Parse(ctx, csvPath); !errors.Is(err, context.Canceled) {
		t.Fatalf("csv: expected context.Canceled, got %v", err)
	}
	if _, err := (&TextParser{Logger: discardLogger()}).Parse(ctx, textPath); !errors.Is(err, context.Canceled) {
		t.Fatalf("text: expected context.Canceled, got %v", err)
	}
}

func TestInferFormat(t *testing.T) {
	t.Parallel()
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{path: "CandidateRegTest1 - Sheet1.csv", want: FormatCSV},
		{path: "/data/candidates.JSON", want: FormatJSON},
		{path: "txttestfile1.txt", want: FormatText},
		{path: "export.xlsx", want: FormatExcel},
		{path: "legacy.xls", wantErr: true},
		{path: "noextension", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := InferFormat(tt.path)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestParserForFormat(t *testing.T) {
	t.Parallel()
	for _, format := range []string{"csv", "JSON", "txt", "text", "xlsx", "excel"} {
		if _, err := ParserForFormat(format, nil); err != nil {
			t.Fatalf("format %s: unexpected error: %v", format, err)
		}
	}
	if _, err := ParserForFormat("yaml", nil); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}
