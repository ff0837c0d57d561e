// Package manifest reads the optional YAML book manifest.
//
// A manifest names the collection, lists its chapters in order, and
// configures the output artifact:
//
//	title: PHP Best Practices
//	chapters:
//	  - chapters/01-security.md
//	  - chapters/02-community.md
//	output:
//	  format: html
//	  path: book.html
//	  toc: true
//	  highlight: github
//
// The ordered chapter list is the only load-bearing configuration;
// everything else has defaults. Relative paths resolve against the
// manifest's own directory, so a manifest works regardless of the
// working directory it is invoked from.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tsawler/quire/render"
)

// Output configures the rendered artifact.
type Output struct {
	Format    string `yaml:"format"`
	Path      string `yaml:"path,omitempty"`
	TOC       bool   `yaml:"toc"`
	Highlight string `yaml:"highlight,omitempty"`
}

// Manifest models a book manifest file.
type Manifest struct {
	Title    string   `yaml:"title"`
	Chapters []string `yaml:"chapters"`
	Output   Output   `yaml:"output"`

	dir string // manifest directory, base for relative paths
}

func defaultOutput() Output {
	return Output{
		Format:    "html",
		TOC:       true,
		Highlight: "github",
	}
}

// Load reads and validates a manifest file. Relative chapter and output
// paths are resolved against the manifest's directory.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return parse(data, filepath.Dir(path), path)
}

// Parse reads a manifest from raw YAML, resolving relative paths
// against dir.
func Parse(data []byte, dir string) (*Manifest, error) {
	return parse(data, dir, "manifest")
}

func parse(data []byte, dir, name string) (*Manifest, error) {
	// Unmarshal over the defaults; absent keys keep them.
	m := &Manifest{Output: defaultOutput()}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}

	m.applyDefaults()
	m.normalize(dir)
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return m, nil
}

func (m *Manifest) applyDefaults() {
	if strings.TrimSpace(m.Output.Format) == "" {
		m.Output.Format = "html"
	}
	if strings.TrimSpace(m.Output.Highlight) == "" {
		m.Output.Highlight = "github"
	}
}

func (m *Manifest) normalize(base string) {
	m.dir = base
	m.Title = strings.TrimSpace(m.Title)
	m.Output.Format = strings.ToLower(strings.TrimSpace(m.Output.Format))

	for i, ch := range m.Chapters {
		m.Chapters[i] = resolvePath(base, strings.TrimSpace(ch))
	}
	m.Output.Path = resolvePath(base, strings.TrimSpace(m.Output.Path))
}

func (m *Manifest) validate() error {
	if len(m.Chapters) == 0 {
		return fmt.Errorf("chapters list is empty")
	}

	seen := make(map[string]bool, len(m.Chapters))
	for i, ch := range m.Chapters {
		if ch == "" {
			return fmt.Errorf("chapters[%d]: path is empty", i)
		}
		if seen[ch] {
			return fmt.Errorf("chapters[%d]: duplicate chapter path %s", i, ch)
		}
		seen[ch] = true
	}

	if _, err := render.ParseFormat(m.Output.Format); err != nil {
		return fmt.Errorf("output.format: %w", err)
	}
	return nil
}

// Format returns the parsed output format. Load has already validated
// it.
func (m *Manifest) Format() render.Format {
	f, _ := render.ParseFormat(m.Output.Format)
	return f
}

// OutputPath returns the artifact path, deriving one from the title or
// a fallback name when the manifest does not set it.
func (m *Manifest) OutputPath() string {
	if m.Output.Path != "" {
		return m.Output.Path
	}
	name := "book"
	if m.Title != "" {
		name = slugifyFilename(m.Title)
	}
	return resolvePath(m.dir, name+m.Format().FileExtension())
}

// resolvePath resolves a path against a base directory, leaving
// absolute paths and empty values alone.
func resolvePath(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// slugifyFilename derives a safe file stem from a title.
func slugifyFilename(title string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == ' ' || r == '\t' || r == '-' || r == '_':
			sb.WriteByte('-')
		}
	}
	out := strings.Trim(sb.String(), "-")
	if out == "" {
		return "book"
	}
	return out
}
