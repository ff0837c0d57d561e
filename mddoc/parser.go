// Package mddoc provides Markdown chapter parsing.
//
// The parser is a strict line scanner over the block constructs that
// matter for binding: ATX headings, fenced code, lists, quotes,
// thematic breaks, reference definitions, and paragraphs. Inline
// content is kept exactly as written; only hyperlinks are recognized so
// the index and renderer can resolve cross-references.
//
// Fenced code is opaque and byte-preserved, and a fence that is never
// closed fails the parse with [ErrUnclosedFence]. Lenient Markdown
// parsers silently close such a fence at end of file, which would turn
// the remainder of a chapter into code; here it is a hard error that
// names the file and opening line.
package mddoc

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tsawler/quire/model"
)

// Parser errors.
var (
	ErrUnclosedFence = errors.New("mddoc: unterminated code fence")
)

// Parse parses Markdown chapter text into a document. The path is
// recorded on the document and used in error messages.
func Parse(path, text string) (*model.Document, error) {
	p := &parser{
		path:  path,
		lines: strings.Split(text, "\n"),
		doc:   model.NewDocument(path),
	}
	if err := p.run(); err != nil {
		return nil, err
	}
	p.resolveReferences()
	if p.doc.Title == "" {
		p.doc.Title = titleFromPath(path)
	}
	return p.doc, nil
}

// ParseReader parses Markdown from an io.Reader.
func ParseReader(path string, r io.Reader) (*model.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(path, string(data))
}

// parser tracks scanner state across lines.
type parser struct {
	path    string
	lines   []string
	pos     int // current line, 0-based
	doc     *model.Document
	current *model.Section
}

func (p *parser) run() error {
	for p.pos < len(p.lines) {
		line := p.lines[p.pos]

		switch {
		case strings.TrimSpace(line) == "":
			p.pos++

		case isHeading(line):
			p.startSection(line)
			p.pos++

		case isFenceOpen(line):
			if err := p.readCodeBlock(); err != nil {
				return err
			}

		case isRule(line):
			p.section().AddBlock(&model.Rule{
				Marker: strings.TrimSpace(line),
				Line:   p.pos + 1,
			})
			p.pos++

		case isQuote(line):
			p.readQuote()

		case isListItem(line):
			p.readList()

		case isRefDef(line):
			p.readRefDef(line)
			p.pos++

		default:
			p.readParagraph()
		}
	}
	return nil
}

// section returns the section currently receiving blocks, creating the
// preamble when content appears before the first heading.
func (p *parser) section() *model.Section {
	if p.current == nil {
		pre := model.NewSection(model.PreambleLevel, "")
		pre.Line = p.pos + 1
		p.doc.AddSection(pre)
		p.current = pre
	}
	return p.current
}

func (p *parser) startSection(line string) {
	level, rest := splitHeading(line)
	title, id := headingAttr(rest)

	s := model.NewSection(level, title)
	s.ID = id
	s.Line = p.pos + 1
	p.doc.AddSection(s)
	p.current = s

	if level == 1 && p.doc.Title == "" {
		p.doc.Title = title
	}
}

// readCodeBlock consumes a fenced code block. The interior lines are
// kept byte-for-byte; the closing fence must use the same character and
// be at least as long as the opener.
func (p *parser) readCodeBlock() error {
	openLine := p.pos + 1
	fence, info := splitFence(p.lines[p.pos])
	p.pos++

	var content []string
	for p.pos < len(p.lines) {
		line := p.lines[p.pos]
		if isFenceClose(line, fence) {
			p.pos++
			lang := info
			if i := strings.IndexAny(lang, " \t"); i >= 0 {
				lang = lang[:i]
			}
			p.section().AddBlock(&model.CodeBlock{
				Language: strings.ToLower(lang),
				Info:     info,
				Fence:    fence,
				Content:  strings.Join(content, "\n"),
				Line:     openLine,
			})
			return nil
		}
		content = append(content, line)
		p.pos++
	}

	return fmt.Errorf("%w: %s:%d", ErrUnclosedFence, p.path, openLine)
}

func (p *parser) readQuote() {
	start := p.pos + 1
	var lines []string
	for p.pos < len(p.lines) && isQuote(p.lines[p.pos]) {
		lines = append(lines, quoteText(p.lines[p.pos]))
		p.pos++
	}

	q := &model.Quote{Lines: lines, Line: start}
	s := p.section()
	s.AddBlock(q)
	for i, line := range lines {
		for _, l := range ExtractLinks(line, start+i) {
			s.AddLink(l)
		}
	}
}

func (p *parser) readList() {
	start := p.pos + 1
	list := &model.List{Line: start}
	first := true

	s := p.section()
	for p.pos < len(p.lines) && isListItem(p.lines[p.pos]) {
		line := p.lines[p.pos]
		indent, marker, content := splitListItem(line)
		if first {
			list.Ordered = marker[0] >= '0' && marker[0] <= '9'
			first = false
		}
		list.Items = append(list.Items, model.ListItem{
			Content: content,
			Marker:  marker,
			Level:   indent / 2,
		})
		for _, l := range ExtractLinks(content, p.pos+1) {
			s.AddLink(l)
		}
		p.pos++
	}

	s.AddBlock(list)
}

func (p *parser) readParagraph() {
	start := p.pos + 1
	var lines []string
	for p.pos < len(p.lines) {
		line := p.lines[p.pos]
		if strings.TrimSpace(line) == "" || isHeading(line) || isFenceOpen(line) ||
			isRule(line) || isQuote(line) || isListItem(line) {
			break
		}
		lines = append(lines, line)
		p.pos++
	}

	para := &model.Paragraph{Content: strings.Join(lines, "\n"), Line: start}
	s := p.section()
	s.AddBlock(para)
	for i, line := range lines {
		for _, l := range ExtractLinks(line, start+i) {
			s.AddLink(l)
		}
	}
}

var refDefRe = regexp.MustCompile(`^ {0,3}\[([^\]]+)\]:\s*(\S+)\s*$`)

func isRefDef(line string) bool {
	return refDefRe.MatchString(line)
}

func (p *parser) readRefDef(line string) {
	m := refDefRe.FindStringSubmatch(line)
	label := strings.ToLower(strings.TrimSpace(m[1]))
	target := strings.Trim(m[2], "<>")
	if _, exists := p.doc.RefDefs[label]; !exists {
		p.doc.RefDefs[label] = target
	}
}

// resolveReferences rewrites reference-style link targets from the
// collected definitions. Usages with no matching definition keep the
// label as target and render literally.
func (p *parser) resolveReferences() {
	for _, s := range p.doc.Sections {
		for i, l := range s.Links {
			if l.Kind != model.LinkReference {
				continue
			}
			if target, ok := p.doc.RefDefs[strings.ToLower(l.Target)]; ok {
				s.Links[i].Target = target
			}
		}
	}
}

// ===== Line Classification =====

// A heading is 1-6 hashes followed by a space or tab. Seven hashes fail
// the match entirely and fall through to paragraph handling.
var headingRe = regexp.MustCompile(`^ {0,3}(#{1,6})[ \t]+(.*)$`)

func isHeading(line string) bool {
	return headingRe.MatchString(line)
}

// splitHeading returns the level and raw heading text, with any closing
// hash sequence stripped.
func splitHeading(line string) (int, string) {
	m := headingRe.FindStringSubmatch(line)
	level := len(m[1])
	text := strings.TrimSpace(m[2])

	// Strip a closing sequence like "## Title ##".
	trimmed := strings.TrimRight(text, "#")
	if trimmed != text && (trimmed == "" || strings.HasSuffix(trimmed, " ")) {
		text = strings.TrimRight(trimmed, " ")
	}
	return level, text
}

func isFenceOpen(line string) bool {
	f, _ := splitFence(line)
	return f != ""
}

// splitFence returns the fence string and info string of an opening
// fence line, or an empty fence when the line does not open one.
func splitFence(line string) (fence, info string) {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return "", ""
	}
	var c byte
	switch {
	case strings.HasPrefix(trimmed, "```"):
		c = '`'
	case strings.HasPrefix(trimmed, "~~~"):
		c = '~'
	default:
		return "", ""
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == c {
		n++
	}
	info = strings.TrimSpace(trimmed[n:])
	// Info strings of backtick fences cannot contain backticks.
	if c == '`' && strings.Contains(info, "`") {
		return "", ""
	}
	return trimmed[:n], info
}

// isFenceClose reports whether the line closes a fence opened with the
// given fence string: same character, at least the same length, and
// nothing else on the line.
func isFenceClose(line, fence string) bool {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return false
	}
	trimmed = strings.TrimRight(trimmed, " ")
	if len(trimmed) < len(fence) {
		return false
	}
	for i := 0; i < len(trimmed); i++ {
		if trimmed[i] != fence[0] {
			return false
		}
	}
	return true
}

func isRule(line string) bool {
	trimmed := strings.ReplaceAll(strings.TrimSpace(line), " ", "")
	if len(trimmed) < 3 {
		return false
	}
	c := trimmed[0]
	if c != '-' && c != '*' && c != '_' {
		return false
	}
	for i := 1; i < len(trimmed); i++ {
		if trimmed[i] != c {
			return false
		}
	}
	return true
}

func isQuote(line string) bool {
	trimmed := strings.TrimLeft(line, " ")
	return strings.HasPrefix(trimmed, ">") && len(line)-len(trimmed) <= 3
}

func quoteText(line string) string {
	trimmed := strings.TrimLeft(line, " ")
	trimmed = strings.TrimPrefix(trimmed, ">")
	return strings.TrimPrefix(trimmed, " ")
}

var listItemRe = regexp.MustCompile(`^( *)([-*+]|\d{1,9}[.)]) +(.*)$`)

func isListItem(line string) bool {
	return listItemRe.MatchString(line) && !isRule(line)
}

func splitListItem(line string) (indent int, marker, content string) {
	m := listItemRe.FindStringSubmatch(line)
	return len(m[1]), m[2], m[3]
}

// titleFromPath derives a chapter title from the filename when the
// chapter has no level-1 heading.
func titleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
