// Package render turns an indexed collection into a single output
// artifact.
//
// Three formats are supported: a standalone HTML page, normalized
// Markdown, and plain text. All three share the same contract: chapters
// are emitted in collection order, section anchors are the index slugs,
// internal cross-references are rewritten to those anchors, and
// everything else in a link target passes through byte-unchanged.
// Rendering is deterministic; the output contains no timestamps or
// generated identifiers, so identical input produces identical bytes.
//
// Output is buffered and handed to the sink only when the whole render
// has succeeded. A failed render writes nothing.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tsawler/quire/index"
	"github.com/tsawler/quire/mddoc"
	"github.com/tsawler/quire/model"
)

// Render errors.
var (
	ErrUnresolvedRef = errors.New("render: unresolved internal reference")
)

// Format defines the available output formats
type Format int

const (
	// FormatHTML renders a standalone HTML page
	FormatHTML Format = iota
	// FormatMarkdown renders normalized Markdown
	FormatMarkdown
	// FormatText renders plain text
	FormatText
)

// String returns a human-readable representation of the format
func (f Format) String() string {
	switch f {
	case FormatHTML:
		return "html"
	case FormatMarkdown:
		return "markdown"
	case FormatText:
		return "text"
	default:
		return "unknown"
	}
}

// FileExtension returns the typical file extension for this format
func (f Format) FileExtension() string {
	switch f {
	case FormatHTML:
		return ".html"
	case FormatMarkdown:
		return ".md"
	case FormatText:
		return ".txt"
	default:
		return ".out"
	}
}

// ParseFormat parses a format name as used by manifests and flags.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "html":
		return FormatHTML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt", "plain":
		return FormatText, nil
	default:
		return FormatHTML, fmt.Errorf("unknown output format %q", name)
	}
}

// Config holds rendering options
type Config struct {
	// Format selects the output format
	Format Format

	// Title overrides the collection title in the artifact
	Title string

	// TOC includes a generated table of contents
	TOC bool

	// Highlight enables syntax highlighting of fenced code in HTML
	// output when a language tag is present
	Highlight bool

	// HighlightStyle is the chroma style name used for the embedded
	// highlight stylesheet
	HighlightStyle string

	// Stylesheet is CSS embedded in HTML output; empty uses the
	// built-in default
	Stylesheet string

	// ProbeImages reads local image files to emit width and height
	// attributes in HTML output
	ProbeImages bool

	// StrictRefs turns unresolved internal references into errors
	// instead of warnings
	StrictRefs bool
}

// DefaultConfig returns sensible rendering defaults
func DefaultConfig() Config {
	return Config{
		Format:         FormatHTML,
		TOC:            true,
		Highlight:      true,
		HighlightStyle: "github",
	}
}

// Warning is a non-fatal issue found while rendering.
type Warning struct {
	Code    string // stable identifier, e.g. "unresolved-ref"
	Message string
	Path    string // chapter the warning points into
	Line    int
}

// Warning codes.
const (
	WarnUnresolvedRef = "unresolved-ref"
	WarnImageProbe    = "image-probe"
)

func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("%s: %s:%d: %s", w.Code, w.Path, w.Line, w.Message)
	}
	return fmt.Sprintf("%s: %s: %s", w.Code, w.Path, w.Message)
}

// Renderer writes a collection artifact in one format.
type Renderer struct {
	config Config
}

// New creates a renderer with the given configuration
func New(config Config) *Renderer {
	if config.HighlightStyle == "" {
		config.HighlightStyle = "github"
	}
	return &Renderer{config: config}
}

// Render writes the artifact for an indexed collection to w. The
// output is buffered internally; on error nothing is written to w.
func (r *Renderer) Render(coll *model.Collection, idx *index.Index, w io.Writer) ([]Warning, error) {
	var buf bytes.Buffer

	st := newState(r.config, coll, idx)
	var err error
	switch r.config.Format {
	case FormatHTML:
		err = st.writeHTML(&buf)
	case FormatMarkdown:
		err = st.writeMarkdown(&buf)
	case FormatText:
		err = st.writeText(&buf)
	default:
		err = fmt.Errorf("unsupported render format: %v", r.config.Format)
	}
	if err != nil {
		return nil, err
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("writing artifact: %w", err)
	}
	return st.warnings, nil
}

// RenderToFile writes the artifact to a file. The file is not created
// until rendering has succeeded.
func (r *Renderer) RenderToFile(coll *model.Collection, idx *index.Index, filename string) ([]Warning, error) {
	var buf bytes.Buffer
	warnings, err := r.Render(coll, idx, &buf)
	if err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("writing output file: %w", err)
	}
	return warnings, nil
}

// RenderToString returns the artifact as a string.
func (r *Renderer) RenderToString(coll *model.Collection, idx *index.Index) (string, []Warning, error) {
	var buf bytes.Buffer
	warnings, err := r.Render(coll, idx, &buf)
	if err != nil {
		return "", nil, err
	}
	return buf.String(), warnings, nil
}

// state carries one render pass: the collection, the index, collected
// warnings, and the per-section slug assignment.
type state struct {
	config   Config
	coll     *model.Collection
	idx      *index.Index
	slugs    map[*model.Section]string
	warnings []Warning
}

func newState(config Config, coll *model.Collection, idx *index.Index) *state {
	slugs := make(map[*model.Section]string)
	for _, e := range idx.Entries() {
		slugs[e.Section] = e.Slug
	}
	return &state{config: config, coll: coll, idx: idx, slugs: slugs}
}

// title returns the artifact title.
func (st *state) title() string {
	if st.config.Title != "" {
		return st.config.Title
	}
	if st.coll.Title != "" {
		return st.coll.Title
	}
	if len(st.coll.Documents) > 0 {
		return st.coll.Documents[0].Title
	}
	return "Untitled"
}

// warn records a non-fatal render issue.
func (st *state) warn(code, path string, line int, format string, args ...interface{}) {
	st.warnings = append(st.warnings, Warning{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Path:    path,
		Line:    line,
	})
}

// resolveTarget rewrites one link target. Internal targets (fragments
// and bare slugs) become index anchors; everything else passes through
// byte-unchanged. Unresolved internal targets warn, or fail the render
// under StrictRefs.
func (st *state) resolveTarget(target, path string, line int) (string, error) {
	if !model.IsInternalTarget(target) {
		return target, nil
	}
	if e, ok := st.idx.Resolve(target); ok {
		return "#" + e.Slug, nil
	}
	if st.config.StrictRefs {
		return "", fmt.Errorf("%w: %q at %s:%d", ErrUnresolvedRef, target, path, line)
	}
	st.warn(WarnUnresolvedRef, path, line, "no section matches %q", target)
	return target, nil
}

// refTarget returns the effective target of a reference-style link: the
// chapter's definition when one exists, otherwise the reference name
// itself, which may still resolve as a bare slug.
func (st *state) refTarget(doc *model.Document, ref string) (string, bool) {
	if target, ok := doc.RefDefs[strings.ToLower(ref)]; ok {
		return target, true
	}
	return ref, false
}

// rewriteLine returns the line with all internal link targets replaced
// by anchors. Reference-style links are normalized to inline form, since
// their definitions were consumed at parse time; a reference with no
// definition that names no section is left as written.
func (st *state) rewriteLine(line string, doc *model.Document, lineNum int) (string, error) {
	links := mddoc.ScanInline(line)
	if len(links) == 0 {
		return line, nil
	}

	var sb strings.Builder
	last := 0
	for _, l := range links {
		switch l.Kind {
		case model.LinkAuto, model.LinkImage:
			continue
		case model.LinkReference:
			target, hasDef := st.refTarget(doc, l.Target)
			resolved, err := st.resolveTarget(target, doc.Path, lineNum)
			if err != nil {
				return "", err
			}
			if !hasDef && resolved == target {
				continue
			}
			sb.WriteString(line[last:l.Start])
			sb.WriteString("[")
			sb.WriteString(l.Label)
			sb.WriteString("](")
			sb.WriteString(resolved)
			sb.WriteString(")")
			last = l.End
		default:
			target, err := st.resolveTarget(l.Target, doc.Path, lineNum)
			if err != nil {
				return "", err
			}
			if target == l.Target {
				continue
			}
			sb.WriteString(line[last:l.TargetStart])
			sb.WriteString(target)
			last = l.TargetEnd
		}
	}
	sb.WriteString(line[last:])
	return sb.String(), nil
}

// rewriteText applies rewriteLine to every line of a block's content.
func (st *state) rewriteText(text string, doc *model.Document, startLine int) (string, error) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		rewritten, err := st.rewriteLine(line, doc, startLine+i)
		if err != nil {
			return "", err
		}
		lines[i] = rewritten
	}
	return strings.Join(lines, "\n"), nil
}
