// Package htmldoc provides HTML chapter parsing.
//
// HTML chapters are parsed into the same document model as Markdown
// ones: h1-h6 open sections (the id attribute becomes the explicit
// anchor), and p, pre, ul/ol, blockquote, and hr map to the matching
// block types. Inline markup is flattened to text, except hyperlinks
// and images, which are re-expressed in bracket syntax so
// cross-reference resolution works the same for every source format.
//
// Script, style, and navigation noise is skipped; see noise.go.
//
// Unlike the Markdown scanner, this parser cannot fail on malformed
// markup: the upstream HTML parser repairs whatever it is given, so an
// unclosed <pre> is closed by the parser itself and there is no
// analogue of an unterminated fence.
package htmldoc

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/tsawler/quire/model"
)

// Parse parses HTML chapter text into a document. The path is recorded
// on the document and used in error messages.
func Parse(path, text string) (*model.Document, error) {
	return ParseReader(path, strings.NewReader(text))
}

// ParseReader parses an HTML chapter from an io.Reader.
func ParseReader(path string, r io.Reader) (*model.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	b := &builder{
		doc:   model.NewDocument(path),
		noise: newNoiseFilter(root),
	}

	body := findElement(root, "body")
	if body == nil {
		body = root
	}
	b.walk(body)

	if b.doc.Title == "" {
		if t := findElement(root, "title"); t != nil {
			b.doc.Title = collapseSpaces(rawText(t))
		}
	}
	if b.doc.Title == "" {
		b.doc.Title = titleFromPath(path)
	}
	return b.doc, nil
}

// builder accumulates sections while walking the DOM.
type builder struct {
	doc     *model.Document
	current *model.Section
	noise   *noiseFilter
}

// section returns the section currently receiving blocks, creating the
// preamble when content appears before the first heading.
func (b *builder) section() *model.Section {
	if b.current == nil {
		pre := model.NewSection(model.PreambleLevel, "")
		b.doc.AddSection(pre)
		b.current = pre
	}
	return b.current
}

// walk visits one node and its children, emitting blocks for the
// elements that carry chapter content.
func (b *builder) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		if b.noise.Skip(n) {
			return
		}

		switch n.Data {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			b.heading(n)
			return

		case "p":
			b.paragraph(n)
			return

		case "pre":
			b.codeBlock(n)
			return

		case "ul", "ol":
			list := &model.List{Ordered: n.Data == "ol"}
			b.listItems(n, 0, list)
			if len(list.Items) > 0 {
				b.section().AddBlock(list)
			}
			return

		case "blockquote":
			b.quote(n)
			return

		case "hr":
			b.section().AddBlock(&model.Rule{Marker: "---"})
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.walk(c)
	}
}

func (b *builder) heading(n *html.Node) {
	title := collapseSpaces(rawText(n))
	if title == "" {
		return
	}

	level := int(n.Data[1] - '0')
	s := model.NewSection(level, title)
	s.ID = getAttr(n, "id")
	b.doc.AddSection(s)
	b.current = s

	if level == 1 && b.doc.Title == "" {
		b.doc.Title = title
	}
}

func (b *builder) paragraph(n *html.Node) {
	var buf inlineBuffer
	buf.walk(n)

	content := buf.text()
	if content == "" {
		return
	}

	s := b.section()
	s.AddBlock(&model.Paragraph{Content: content})
	for _, l := range buf.links {
		s.AddLink(l)
	}
}

// codeBlock emits a pre element as a fenced code block. The language
// comes from a language-* class on the pre or a nested code element,
// and the interior text is kept verbatim.
func (b *builder) codeBlock(n *html.Node) {
	content := rawText(n)
	content = strings.TrimPrefix(content, "\n")
	content = strings.TrimRight(content, "\n")

	lang := codeLanguage(n)
	info := lang

	b.section().AddBlock(&model.CodeBlock{
		Language: lang,
		Info:     info,
		Fence:    "```",
		Content:  content,
	})
}

// listItems flattens a possibly nested list into items with nesting
// levels, numbering ordered items at each level.
func (b *builder) listItems(n *html.Node, level int, list *model.List) {
	ordered := n.Data == "ol"
	num := 0

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "li" {
			continue
		}

		var buf inlineBuffer
		for g := c.FirstChild; g != nil; g = g.NextSibling {
			if g.Type == html.ElementNode && (g.Data == "ul" || g.Data == "ol") {
				continue
			}
			buf.walk(g)
		}

		if content := buf.text(); content != "" {
			num++
			marker := "-"
			if ordered {
				marker = strconv.Itoa(num) + "."
			}
			list.Items = append(list.Items, model.ListItem{
				Content: content,
				Marker:  marker,
				Level:   level,
			})
			s := b.section()
			for _, l := range buf.links {
				s.AddLink(l)
			}
		}

		for g := c.FirstChild; g != nil; g = g.NextSibling {
			if g.Type == html.ElementNode && (g.Data == "ul" || g.Data == "ol") {
				b.listItems(g, level+1, list)
			}
		}
	}
}

func (b *builder) quote(n *html.Node) {
	var buf inlineBuffer
	buf.walk(n)

	content := buf.text()
	if content == "" {
		return
	}

	s := b.section()
	s.AddBlock(&model.Quote{Lines: strings.Split(content, "\n")})
	for _, l := range buf.links {
		s.AddLink(l)
	}
}

// codeLanguage extracts a language tag from class attributes in the
// form "language-go" or "lang-go", on the pre itself or a nested code
// element.
func codeLanguage(n *html.Node) string {
	for _, class := range strings.Fields(getAttr(n, "class")) {
		for _, prefix := range []string{"language-", "lang-"} {
			if strings.HasPrefix(class, prefix) {
				return strings.ToLower(strings.TrimPrefix(class, prefix))
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			if lang := codeLanguage(c); lang != "" {
				return lang
			}
		}
	}
	return ""
}

// inlineBuffer collects the flattened text of inline content, turning
// anchors and images into bracket syntax and recording the links.
type inlineBuffer struct {
	sb    strings.Builder
	links []model.Link
}

func (ib *inlineBuffer) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		// Source newlines are ordinary whitespace; only br produces a
		// line break.
		ib.sb.WriteString(flattenSpace(n.Data))
		return

	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "template", "svg", "math", "iframe", "object", "embed":
			return

		case "br":
			ib.sb.WriteString("\n")
			return

		case "a":
			ib.anchor(n)
			return

		case "img":
			ib.image(n)
			return

		case "code":
			ib.sb.WriteString("`")
			ib.sb.WriteString(rawText(n))
			ib.sb.WriteString("`")
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		ib.walk(c)
	}
}

func (ib *inlineBuffer) anchor(n *html.Node) {
	label := collapseSpaces(rawText(n))
	target := getAttr(n, "href")
	if target == "" {
		ib.sb.WriteString(label)
		return
	}
	if label == "" {
		label = target
	}

	if label == target {
		ib.sb.WriteString("<")
		ib.sb.WriteString(target)
		ib.sb.WriteString(">")
		ib.links = append(ib.links, model.Link{Label: label, Target: target, Kind: model.LinkAuto})
		return
	}

	ib.sb.WriteString("[")
	ib.sb.WriteString(label)
	ib.sb.WriteString("](")
	ib.sb.WriteString(target)
	ib.sb.WriteString(")")
	ib.links = append(ib.links, model.Link{Label: label, Target: target, Kind: model.LinkInline})
}

func (ib *inlineBuffer) image(n *html.Node) {
	src := getAttr(n, "src")
	if src == "" {
		return
	}
	alt := getAttr(n, "alt")

	ib.sb.WriteString("![")
	ib.sb.WriteString(alt)
	ib.sb.WriteString("](")
	ib.sb.WriteString(src)
	ib.sb.WriteString(")")
	ib.links = append(ib.links, model.Link{Label: alt, Target: src, Kind: model.LinkImage})
}

// text returns the collected content with whitespace runs collapsed
// within each line. Lines come only from explicit br elements.
func (ib *inlineBuffer) text() string {
	lines := strings.Split(ib.sb.String(), "\n")
	for i, line := range lines {
		lines[i] = collapseSpaces(line)
	}
	out := strings.Join(lines, "\n")
	return strings.Trim(out, "\n")
}

// findElement finds the first element with the given tag name.
func findElement(n *html.Node, tagName string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tagName {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tagName); found != nil {
			return found
		}
	}
	return nil
}

// rawText concatenates the text nodes under n verbatim.
func rawText(n *html.Node) string {
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return sb.String()
}

// getAttr returns the value of an attribute on a node, or empty string
// if not present.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// collapseSpaces collapses whitespace runs to single spaces and trims
// the ends, the way browsers flow inline text.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// flattenSpace turns newlines, carriage returns, and tabs into spaces.
func flattenSpace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', '\t':
			return ' '
		}
		return r
	}, s)
}

// titleFromPath derives a chapter title from the filename when the
// chapter has no level-1 heading and no title element.
func titleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
