package quire

import (
	"fmt"
	"io"
	"sync"

	"github.com/tsawler/quire/format"
	"github.com/tsawler/quire/htmldoc"
	"github.com/tsawler/quire/index"
	"github.com/tsawler/quire/loader"
	"github.com/tsawler/quire/mddoc"
	"github.com/tsawler/quire/model"
	"github.com/tsawler/quire/render"
)

// Binder provides a fluent interface for binding chapter files into one
// rendered document. Each configuration method returns a new Binder
// instance, making it safe for concurrent use and allowing method
// chaining. Terminal operations run the pipeline (load, parse, index,
// render) and fail fast on the first classified error.
type Binder struct {
	// Chapter files in collection order
	paths []string

	// Configuration
	options bindOptions

	// Accumulated error (fail-fast)
	err error

	// Pipeline results, populated by the first terminal operation
	bound bool
	coll  *model.Collection
	idx   *index.Index
}

// clone creates a copy of the Binder so that each chain method returns
// a new instance. Bound pipeline results are shared; they are immutable
// once built.
func (b *Binder) clone() *Binder {
	return &Binder{
		paths:   append([]string(nil), b.paths...),
		options: b.options,
		err:     b.err,
		bound:   b.bound,
		coll:    b.coll,
		idx:     b.idx,
	}
}

// ============================================================================
// Configuration Methods (return new Binder instance)
// ============================================================================

// Title sets the collection title used in the rendered artifact,
// overriding any manifest title.
//
// Example:
//
//	html, _, err := quire.Collect("a.md").Title("Field Guide").HTML()
func (b *Binder) Title(title string) *Binder {
	nb := b.clone()
	nb.options.title = title
	return nb
}

// WithTOC includes a generated table of contents in the artifact.
//
// Example:
//
//	html, _, err := quire.Collect("a.md", "b.md").WithTOC().HTML()
func (b *Binder) WithTOC() *Binder {
	nb := b.clone()
	nb.options.toc = true
	return nb
}

// Highlight enables syntax highlighting of fenced code in HTML output
// using the named chroma style. An empty style disables highlighting.
//
// Example:
//
//	html, _, err := quire.Collect("a.md").Highlight("github").HTML()
func (b *Binder) Highlight(style string) *Binder {
	nb := b.clone()
	nb.options.highlightStyle = style
	return nb
}

// Stylesheet embeds the given CSS in HTML output in place of the
// built-in default.
func (b *Binder) Stylesheet(css string) *Binder {
	nb := b.clone()
	nb.options.stylesheet = css
	return nb
}

// ProbeImages reads local image files referenced by chapters so HTML
// output can carry width and height attributes. Unreadable images
// produce warnings, not errors.
func (b *Binder) ProbeImages() *Binder {
	nb := b.clone()
	nb.options.probeImages = true
	return nb
}

// StrictRefs turns unresolved internal references into errors instead
// of warnings.
//
// Example:
//
//	_, _, err := quire.Collect("a.md").StrictRefs().HTML()
func (b *Binder) StrictRefs() *Binder {
	nb := b.clone()
	nb.options.strictRefs = true
	return nb
}

// Parallel parses chapters concurrently with up to the given number of
// workers. Results keep collection order and the earliest failure wins,
// so the outcome is identical to a sequential parse.
func (b *Binder) Parallel(workers int) *Binder {
	nb := b.clone()
	nb.options.parallel = workers
	return nb
}

// ============================================================================
// Terminal Operations (run the pipeline and return results)
// ============================================================================

// HTML binds the collection and renders it as a standalone HTML page.
//
// Returns the artifact, any warnings encountered while rendering, and
// an error if any pipeline stage failed. Warnings indicate non-fatal
// issues (an unresolved cross-reference, an unreadable image) where
// rendering succeeded but the artifact may be imperfect.
//
// Example:
//
//	html, warnings, err := quire.Collect("a.md", "b.md").WithTOC().HTML()
func (b *Binder) HTML() (string, []Warning, error) {
	return b.render(render.FormatHTML)
}

// Markdown binds the collection and renders it as normalized Markdown.
func (b *Binder) Markdown() (string, []Warning, error) {
	return b.render(render.FormatMarkdown)
}

// Text binds the collection and renders it as plain text.
func (b *Binder) Text() (string, []Warning, error) {
	return b.render(render.FormatText)
}

func (b *Binder) render(f render.Format) (string, []Warning, error) {
	if err := b.bind(); err != nil {
		return "", nil, err
	}
	r := render.New(b.renderConfig(f))
	return r.RenderToString(b.coll, b.idx)
}

// WriteTo binds the collection and writes the artifact in the given
// format to w. Output is buffered; on error nothing is written.
func (b *Binder) WriteTo(f render.Format, w io.Writer) ([]Warning, error) {
	if err := b.bind(); err != nil {
		return nil, err
	}
	r := render.New(b.renderConfig(f))
	return r.Render(b.coll, b.idx, w)
}

// WriteHTML writes the HTML artifact to w.
func (b *Binder) WriteHTML(w io.Writer) ([]Warning, error) {
	return b.WriteTo(render.FormatHTML, w)
}

// WriteFile binds the collection and writes the artifact to a file.
// The file is not created until rendering has succeeded.
func (b *Binder) WriteFile(f render.Format, path string) ([]Warning, error) {
	if err := b.bind(); err != nil {
		return nil, err
	}
	r := render.New(b.renderConfig(f))
	return r.RenderToFile(b.coll, b.idx, path)
}

// Collection binds and returns the parsed chapter collection.
func (b *Binder) Collection() (*model.Collection, error) {
	if err := b.bind(); err != nil {
		return nil, err
	}
	return b.coll, nil
}

// Index binds and returns the collection-wide slug index.
func (b *Binder) Index() (*index.Index, error) {
	if err := b.bind(); err != nil {
		return nil, err
	}
	return b.idx, nil
}

// Outline binds and returns the collection outline with slugs assigned.
func (b *Binder) Outline() ([]model.TOCEntry, error) {
	if err := b.bind(); err != nil {
		return nil, err
	}
	return b.idx.TableOfContents(), nil
}

// Stats summarizes a bound collection.
type Stats struct {
	Chapters   int
	Sections   int // includes preambles
	Headings   int // indexed sections
	CodeBlocks int
	Links      int
}

// Stats binds and returns collection statistics.
func (b *Binder) Stats() (Stats, error) {
	if err := b.bind(); err != nil {
		return Stats{}, err
	}

	st := Stats{
		Chapters: b.coll.ChapterCount(),
		Sections: b.coll.SectionCount(),
		Headings: b.idx.Len(),
	}
	for _, doc := range b.coll.Documents {
		st.CodeBlocks += len(doc.CodeBlocks())
		st.Links += len(doc.Links())
	}
	return st, nil
}

// Check binds the collection without rendering and reports unresolved
// internal references as warnings. Load, parse, and index errors are
// returned as errors, the same as any terminal operation.
//
// Example:
//
//	warnings, err := quire.Collect("a.md", "b.md").Check()
func (b *Binder) Check() ([]Warning, error) {
	if err := b.bind(); err != nil {
		return nil, err
	}

	var warnings []Warning
	for _, doc := range b.coll.Documents {
		for _, s := range doc.Sections {
			for _, l := range s.Links {
				if l.Kind == model.LinkImage || !l.Internal() {
					continue
				}
				if _, ok := b.idx.Resolve(l.Target); !ok {
					warnings = append(warnings, Warning{
						Code:    render.WarnUnresolvedRef,
						Message: fmt.Sprintf("no section matches %q", l.Target),
						Path:    doc.Path,
						Line:    l.Line,
					})
				}
			}
		}
	}
	return warnings, nil
}

// ============================================================================
// Internal helpers
// ============================================================================

// bind runs load, parse, and index once. Subsequent terminal operations
// on the same instance reuse the results.
func (b *Binder) bind() error {
	if b.err != nil {
		return b.err
	}
	if b.bound {
		return nil
	}
	if len(b.paths) == 0 {
		return fmt.Errorf("no chapters specified")
	}

	sources, err := loader.Load(b.paths...)
	if err != nil {
		return err
	}

	docs, err := parseSources(sources, b.options.parallel)
	if err != nil {
		return err
	}

	coll := model.NewCollection(b.options.title)
	for _, doc := range docs {
		coll.Add(doc)
	}

	idx, err := index.Build(coll)
	if err != nil {
		return err
	}

	b.coll = coll
	b.idx = idx
	b.bound = true
	return nil
}

func (b *Binder) renderConfig(f render.Format) render.Config {
	return render.Config{
		Format:         f,
		Title:          b.options.title,
		TOC:            b.options.toc,
		Highlight:      b.options.highlightStyle != "",
		HighlightStyle: b.options.highlightStyle,
		Stylesheet:     b.options.stylesheet,
		ProbeImages:    b.options.probeImages,
		StrictRefs:     b.options.strictRefs,
	}
}

// parseOne dispatches a source to the parser for its format.
func parseOne(src loader.Source) (*model.Document, error) {
	switch src.Format {
	case format.HTML:
		return htmldoc.Parse(src.Path, src.Text)
	default:
		// Markdown and plain text share the Markdown scanner; plain
		// prose parses as paragraphs.
		return mddoc.Parse(src.Path, src.Text)
	}
}

// parseSources parses all chapters, fanning out across workers when
// asked to. The result slice keeps input order, and when several
// chapters fail the error of the earliest one is returned, so
// concurrent and sequential parses report identically.
func parseSources(sources []loader.Source, workers int) ([]*model.Document, error) {
	docs := make([]*model.Document, len(sources))

	if workers <= 1 || len(sources) < 2 {
		for i, src := range sources {
			doc, err := parseOne(src)
			if err != nil {
				return nil, err
			}
			docs[i] = doc
		}
		return docs, nil
	}

	if workers > len(sources) {
		workers = len(sources)
	}

	errs := make([]error, len(sources))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				docs[i], errs[i] = parseOne(sources[i])
			}
		}()
	}
	for i := range sources {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return docs, nil
}
