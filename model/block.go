package model

import "strings"

// BlockType represents the type of section content block
type BlockType int

const (
	BlockTypeUnknown BlockType = iota
	BlockTypeParagraph
	BlockTypeCode
	BlockTypeList
	BlockTypeQuote
	BlockTypeRule
)

func (bt BlockType) String() string {
	switch bt {
	case BlockTypeParagraph:
		return "Paragraph"
	case BlockTypeCode:
		return "Code"
	case BlockTypeList:
		return "List"
	case BlockTypeQuote:
		return "Quote"
	case BlockTypeRule:
		return "Rule"
	default:
		return "Unknown"
	}
}

// Block is the interface for all section content blocks
type Block interface {
	Type() BlockType
	Text() string
}

// Paragraph represents a paragraph of prose. Content holds the inline
// source exactly as written; link rewriting happens at render time.
type Paragraph struct {
	Content string
	Line    int // 1-based line of the first paragraph line in the source
}

func (p *Paragraph) Type() BlockType { return BlockTypeParagraph }
func (p *Paragraph) Text() string    { return p.Content }

// CodeBlock represents a fenced code block. Content holds the interior
// lines byte-for-byte; Fence and Info hold the opening fence and info
// string as written so the block can be re-emitted exactly.
type CodeBlock struct {
	Language string // first word of the info string, lower-cased
	Info     string // raw info string as written
	Fence    string // opening fence as written, e.g. "```" or "~~~~"
	Content  string
	Line     int // 1-based line of the opening fence
}

func (c *CodeBlock) Type() BlockType { return BlockTypeCode }
func (c *CodeBlock) Text() string    { return c.Content }

// List represents a list (ordered or unordered)
type List struct {
	Items   []ListItem
	Ordered bool
	Line    int
}

func (l *List) Type() BlockType { return BlockTypeList }
func (l *List) Text() string {
	var sb strings.Builder
	for i, item := range l.Items {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(item.Content)
	}
	return sb.String()
}

// ListItem represents a single list item. Level is the nesting depth,
// starting at 0.
type ListItem struct {
	Content string
	Marker  string // bullet or number marker as written, e.g. "-" or "1."
	Level   int
}

// Quote represents a block quote
type Quote struct {
	Lines []string
	Line  int
}

func (q *Quote) Type() BlockType { return BlockTypeQuote }
func (q *Quote) Text() string    { return strings.Join(q.Lines, "\n") }

// Rule represents a thematic break
type Rule struct {
	Marker string // as written, e.g. "---"
	Line   int
}

func (r *Rule) Type() BlockType { return BlockTypeRule }
func (r *Rule) Text() string    { return "" }

// LinkKind represents how a link was written in the source
type LinkKind int

const (
	LinkInline LinkKind = iota
	LinkImage
	LinkReference
	LinkAuto
)

func (lk LinkKind) String() string {
	switch lk {
	case LinkImage:
		return "Image"
	case LinkReference:
		return "Reference"
	case LinkAuto:
		return "Auto"
	default:
		return "Inline"
	}
}

// Link records a hyperlink found in chapter content. Target is free-form;
// only "#fragment" and bare-slug targets are candidates for
// cross-reference resolution.
type Link struct {
	Label  string
	Target string
	Kind   LinkKind
	Line   int
}

// Internal reports whether the link target is a candidate internal
// cross-reference rather than an external URL or relative path.
func (l Link) Internal() bool {
	return IsInternalTarget(l.Target)
}

// IsInternalTarget reports whether a raw link target should be resolved
// against the collection index. Fragment targets ("#slug") always
// qualify; bare slugs qualify when they contain no scheme, path
// separator, or file extension.
func IsInternalTarget(target string) bool {
	if target == "" {
		return false
	}
	if strings.HasPrefix(target, "#") {
		return len(target) > 1
	}
	if strings.ContainsAny(target, ":/?&.") {
		return false
	}
	return true
}
