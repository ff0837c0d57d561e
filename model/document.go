package model

// Document represents one parsed chapter: an ordered list of sections
// with the nesting implied by heading levels. Documents are built by the
// parsers and not mutated afterwards.
type Document struct {
	Path     string // source path as given to the loader
	Title    string // first level-1 heading, or a title derived from the path
	Sections []*Section
	RefDefs  map[string]string // reference link definitions, label -> target

	stack []*Section // open sections during construction
}

// NewDocument creates a new empty document for a source path
func NewDocument(path string) *Document {
	return &Document{
		Path:    path,
		RefDefs: make(map[string]string),
	}
}

// AddSection appends a section in source order and wires the nesting
// links. A section nests under the most recent section with a shallower
// level; the preamble never encloses headings.
func (d *Document) AddSection(s *Section) {
	d.Sections = append(d.Sections, s)
	if s.IsPreamble() {
		return
	}
	for len(d.stack) > 0 && d.stack[len(d.stack)-1].Level >= s.Level {
		d.stack = d.stack[:len(d.stack)-1]
	}
	if len(d.stack) > 0 {
		d.stack[len(d.stack)-1].addChild(s)
	}
	d.stack = append(d.stack, s)
}

// SectionCount returns the total number of sections, preamble included
func (d *Document) SectionCount() int {
	return len(d.Sections)
}

// HeadingCount returns the number of sections that came from headings
func (d *Document) HeadingCount() int {
	n := 0
	for _, s := range d.Sections {
		if !s.IsPreamble() {
			n++
		}
	}
	return n
}

// Preamble returns the pre-heading section, or nil if the chapter starts
// with a heading.
func (d *Document) Preamble() *Section {
	if len(d.Sections) > 0 && d.Sections[0].IsPreamble() {
		return d.Sections[0]
	}
	return nil
}

// Roots returns the sections with no enclosing section, in source order
func (d *Document) Roots() []*Section {
	var roots []*Section
	for _, s := range d.Sections {
		if s.parent == nil && !s.IsPreamble() {
			roots = append(roots, s)
		}
	}
	return roots
}

// FindSection returns the first section with the given title, or nil
func (d *Document) FindSection(title string) *Section {
	for _, s := range d.Sections {
		if s.Title == title {
			return s
		}
	}
	return nil
}

// CodeBlocks returns all fenced code blocks in source order
func (d *Document) CodeBlocks() []*CodeBlock {
	var blocks []*CodeBlock
	for _, s := range d.Sections {
		blocks = append(blocks, s.CodeBlocks()...)
	}
	return blocks
}

// Links returns all hyperlinks recorded in the document, in source order
func (d *Document) Links() []Link {
	var links []Link
	for _, s := range d.Sections {
		links = append(links, s.Links...)
	}
	return links
}

// Collection represents an ordered set of chapters bound into one
// reference document.
type Collection struct {
	Title     string
	Documents []*Document
}

// NewCollection creates a new empty collection
func NewCollection(title string) *Collection {
	return &Collection{
		Title:     title,
		Documents: make([]*Document, 0),
	}
}

// Add appends a chapter to the collection
func (c *Collection) Add(doc *Document) {
	c.Documents = append(c.Documents, doc)
}

// ChapterCount returns the number of chapters
func (c *Collection) ChapterCount() int {
	return len(c.Documents)
}

// SectionCount returns the total number of sections across all chapters
func (c *Collection) SectionCount() int {
	n := 0
	for _, doc := range c.Documents {
		n += doc.SectionCount()
	}
	return n
}

// AllSections returns every section in collection order
func (c *Collection) AllSections() []*Section {
	var sections []*Section
	for _, doc := range c.Documents {
		sections = append(sections, doc.Sections...)
	}
	return sections
}

// FindSection returns the first section with the given title across all
// chapters, or nil.
func (c *Collection) FindSection(title string) *Section {
	for _, doc := range c.Documents {
		if s := doc.FindSection(title); s != nil {
			return s
		}
	}
	return nil
}

// TableOfContents returns headings organized as a collection outline.
// Slugs are assigned at the index stage; entries here carry level,
// title, and chapter position only.
func (c *Collection) TableOfContents() []TOCEntry {
	var toc []TOCEntry
	for i, doc := range c.Documents {
		for _, s := range doc.Sections {
			if s.IsPreamble() {
				continue
			}
			toc = append(toc, TOCEntry{
				Level:   s.Level,
				Title:   s.Title,
				Chapter: i,
				Line:    s.Line,
			})
		}
	}
	return toc
}

// TOCEntry represents an entry in the collection outline
type TOCEntry struct {
	Level   int    // Heading level (1-6)
	Title   string // Heading text
	Slug    string // Anchor slug, empty until the index stage assigns it
	Chapter int    // Chapter position (0-indexed)
	Line    int    // Line of the heading in its source file
}
