// Package loader reads chapter files from disk and hands their decoded
// text to the parsers.
//
// The loader is the only component that touches the filesystem during a
// build. It resolves each path, decodes the content to UTF-8 (see
// decode.go for the charset handling), detects the chapter format, and
// returns [Source] values in input order. Any failure aborts the load;
// there is no partial result.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/tsawler/quire/format"
)

// Loader errors.
var (
	ErrNotFound = errors.New("loader: chapter file not found")
	ErrEncoding = errors.New("loader: content is not decodable text")
)

// Source is one chapter file, decoded and ready to parse.
type Source struct {
	Path   string // path as given by the caller
	Text   string // decoded UTF-8 content, line endings normalized to LF
	Format format.Format
}

// Load reads all chapter files in order. The returned slice matches the
// input order. The first failure aborts the load and is returned with
// the offending path attached.
func Load(paths ...string) ([]Source, error) {
	sources := make([]Source, 0, len(paths))
	for _, p := range paths {
		src, err := LoadOne(p)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

// LoadOne reads a single chapter file.
func LoadOne(path string) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Source{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return Source{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if info.IsDir() {
		return Source{}, fmt.Errorf("%w: %s is a directory", ErrNotFound, path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Source{}, fmt.Errorf("reading %s: %w", path, err)
	}

	f := format.Detect(path)
	if f == format.Unknown {
		f = format.DetectFromBytes(raw)
	}
	if f == format.Unknown {
		// No markup signature either way; the Markdown parser handles
		// plain prose as paragraphs.
		f = format.Text
	}

	text, err := decode(raw, f)
	if err != nil {
		return Source{}, fmt.Errorf("%s: %w", path, err)
	}

	return Source{Path: path, Text: text, Format: f}, nil
}
