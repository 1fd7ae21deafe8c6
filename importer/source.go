package importer

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type sourceFile struct {
	io.Reader
	file *os.File
}

func (s *sourceFile) Close() error {
	return s.file.Close()
}

// openSource opens a text source and decodes it to UTF-8. A UTF-8 or UTF-16
// byte order mark selects the encoding and is stripped; without one the
// content is read as UTF-8.
func openSource(path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("open source %s: %w", path, err)
	}

	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	return &sourceFile{Reader: transform.NewReader(file, decoder), file: file}, nil
}
