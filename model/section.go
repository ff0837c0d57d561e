package model

import "strings"

// PreambleLevel is the level assigned to content that appears before the
// first heading of a chapter.
const PreambleLevel = 0

// Section represents a heading and the content that runs beneath it, up
// to the next heading of the same or a shallower level.
type Section struct {
	Level  int    // 1-6, or PreambleLevel for pre-heading content
	Title  string // heading text as written
	ID     string // explicit identifier from the source, empty when none
	Blocks []Block
	Links  []Link
	Line   int // 1-based line of the heading in the source

	parent   *Section
	children []*Section
}

// NewSection creates a section for a heading
func NewSection(level int, title string) *Section {
	return &Section{
		Level: level,
		Title: title,
	}
}

// AddBlock appends a content block to the section
func (s *Section) AddBlock(b Block) {
	s.Blocks = append(s.Blocks, b)
}

// AddLink records a hyperlink found in the section content
func (s *Section) AddLink(l Link) {
	s.Links = append(s.Links, l)
}

// Parent returns the enclosing section, or nil for top-level sections
// and the preamble.
func (s *Section) Parent() *Section {
	return s.parent
}

// Children returns the directly nested sections in source order
func (s *Section) Children() []*Section {
	return s.children
}

// IsPreamble reports whether the section holds pre-heading content
func (s *Section) IsPreamble() bool {
	return s.Level == PreambleLevel
}

// HasExplicitID reports whether the source declared an identifier for
// the heading.
func (s *Section) HasExplicitID() bool {
	return s.ID != ""
}

// Text returns the plain text of all blocks, blank-line separated
func (s *Section) Text() string {
	var sb strings.Builder
	for i, b := range s.Blocks {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(b.Text())
	}
	return sb.String()
}

// CodeBlocks returns the fenced code blocks in the section
func (s *Section) CodeBlocks() []*CodeBlock {
	var blocks []*CodeBlock
	for _, b := range s.Blocks {
		if cb, ok := b.(*CodeBlock); ok {
			blocks = append(blocks, cb)
		}
	}
	return blocks
}

func (s *Section) addChild(child *Section) {
	child.parent = s
	s.children = append(s.children, child)
}
