package render

import (
	"bytes"
	"fmt"
	"html"
	"path/filepath"
	"strings"

	"github.com/tsawler/quire/mddoc"
	"github.com/tsawler/quire/model"
)

// defaultStylesheet is the CSS embedded in HTML output when the caller
// does not supply one.
const defaultStylesheet = `body { max-width: 46rem; margin: 2rem auto; padding: 0 1rem; font-family: Georgia, serif; line-height: 1.6; color: #222; }
h1, h2, h3, h4, h5, h6 { font-family: Helvetica, Arial, sans-serif; line-height: 1.25; }
pre { background: #f6f8fa; padding: 1rem; overflow-x: auto; border-radius: 4px; }
code { font-family: "SF Mono", Consolas, monospace; font-size: 0.92em; }
blockquote { border-left: 4px solid #ddd; margin-left: 0; padding-left: 1rem; color: #555; }
nav.toc ul { list-style: none; padding-left: 1rem; }
nav.toc > ul { padding-left: 0; }
img { max-width: 100%; }
hr { border: none; border-top: 1px solid #ddd; }`

// writeHTML emits the collection as a standalone HTML page.
func (st *state) writeHTML(w *bytes.Buffer) error {
	w.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(w, "<title>%s</title>\n", html.EscapeString(st.title()))

	w.WriteString("<style>\n")
	if st.config.Stylesheet != "" {
		w.WriteString(st.config.Stylesheet)
	} else {
		w.WriteString(defaultStylesheet)
	}
	w.WriteString("\n")
	if st.config.Highlight {
		if err := highlightCSS(w, st.config.HighlightStyle); err != nil {
			return fmt.Errorf("writing highlight stylesheet: %w", err)
		}
	}
	w.WriteString("</style>\n</head>\n<body>\n")

	fmt.Fprintf(w, "<h1 class=\"title\">%s</h1>\n", html.EscapeString(st.title()))
	if st.config.TOC {
		st.writeHTMLTOC(w)
	}

	for _, doc := range st.coll.Documents {
		if err := st.writeHTMLChapter(w, doc); err != nil {
			return err
		}
	}

	w.WriteString("</body>\n</html>\n")
	return nil
}

// writeHTMLTOC emits the collection outline as nested lists.
func (st *state) writeHTMLTOC(w *bytes.Buffer) {
	toc := st.idx.TableOfContents()
	if len(toc) == 0 {
		return
	}

	w.WriteString("<nav class=\"toc\">\n")
	depth := 0
	for _, e := range toc {
		for depth < e.Level {
			w.WriteString("<ul>\n")
			depth++
		}
		for depth > e.Level {
			w.WriteString("</ul>\n")
			depth--
		}
		fmt.Fprintf(w, "<li><a href=\"#%s\">%s</a></li>\n",
			html.EscapeString(e.Slug), html.EscapeString(e.Title))
	}
	for depth > 0 {
		w.WriteString("</ul>\n")
		depth--
	}
	w.WriteString("</nav>\n")
}

func (st *state) writeHTMLChapter(w *bytes.Buffer, doc *model.Document) error {
	w.WriteString("<article class=\"chapter\">\n")

	if pre := doc.Preamble(); pre != nil {
		if err := st.writeHTMLBlocks(w, doc, pre); err != nil {
			return err
		}
	}
	for _, root := range doc.Roots() {
		if err := st.writeHTMLSection(w, doc, root); err != nil {
			return err
		}
	}

	w.WriteString("</article>\n")
	return nil
}

func (st *state) writeHTMLSection(w *bytes.Buffer, doc *model.Document, s *model.Section) error {
	fmt.Fprintf(w, "<section id=\"%s\">\n", html.EscapeString(st.slugs[s]))
	fmt.Fprintf(w, "<h%d>%s</h%d>\n", s.Level, html.EscapeString(s.Title), s.Level)

	if err := st.writeHTMLBlocks(w, doc, s); err != nil {
		return err
	}
	for _, child := range s.Children() {
		if err := st.writeHTMLSection(w, doc, child); err != nil {
			return err
		}
	}

	w.WriteString("</section>\n")
	return nil
}

func (st *state) writeHTMLBlocks(w *bytes.Buffer, doc *model.Document, s *model.Section) error {
	for _, b := range s.Blocks {
		switch block := b.(type) {
		case *model.Paragraph:
			content, err := st.inlineHTMLText(block.Content, doc, block.Line)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "<p>%s</p>\n", content)

		case *model.CodeBlock:
			if err := st.writeHTMLCode(w, block); err != nil {
				return err
			}

		case *model.List:
			if err := st.writeHTMLList(w, doc, block); err != nil {
				return err
			}

		case *model.Quote:
			content, err := st.inlineHTMLText(strings.Join(block.Lines, "\n"), doc, block.Line)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "<blockquote><p>%s</p></blockquote>\n", content)

		case *model.Rule:
			w.WriteString("<hr>\n")
		}
	}
	return nil
}

// writeHTMLCode emits a fenced code block, syntax-highlighted when a
// language tag is present and a lexer for it exists.
func (st *state) writeHTMLCode(w *bytes.Buffer, block *model.CodeBlock) error {
	if st.config.Highlight && block.Language != "" {
		done, err := tryHighlight(w, block.Content, block.Language, st.config.HighlightStyle)
		if err != nil {
			return fmt.Errorf("highlighting %s block: %w", block.Language, err)
		}
		if done {
			w.WriteString("\n")
			return nil
		}
	}

	if block.Language != "" {
		fmt.Fprintf(w, "<pre><code class=\"language-%s\">%s</code></pre>\n",
			html.EscapeString(block.Language), html.EscapeString(block.Content))
	} else {
		fmt.Fprintf(w, "<pre><code>%s</code></pre>\n", html.EscapeString(block.Content))
	}
	return nil
}

// writeHTMLList emits a flat item list as nested ul/ol elements, using
// the item markers to pick the tag at each nesting level.
func (st *state) writeHTMLList(w *bytes.Buffer, doc *model.Document, block *model.List) error {
	var open []string // tag stack

	for i, item := range block.Items {
		for len(open) > item.Level+1 {
			w.WriteString("</" + open[len(open)-1] + ">\n")
			open = open[:len(open)-1]
		}
		for len(open) < item.Level+1 {
			tag := "ul"
			if len(item.Marker) > 0 && item.Marker[0] >= '0' && item.Marker[0] <= '9' {
				tag = "ol"
			}
			w.WriteString("<" + tag + ">\n")
			open = append(open, tag)
		}

		content, err := st.inlineHTML(item.Content, doc, block.Line+i)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "<li>%s</li>\n", content)
	}

	for len(open) > 0 {
		w.WriteString("</" + open[len(open)-1] + ">\n")
		open = open[:len(open)-1]
	}
	return nil
}

// inlineHTMLText renders multi-line block content, escaping each line
// and converting link syntax to anchors.
func (st *state) inlineHTMLText(text string, doc *model.Document, startLine int) (string, error) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		rendered, err := st.inlineHTML(line, doc, startLine+i)
		if err != nil {
			return "", err
		}
		lines[i] = rendered
	}
	return strings.Join(lines, "\n"), nil
}

// inlineHTML renders one line of inline content: text is escaped, link
// syntax becomes anchor and image tags, and internal targets are
// rewritten to index anchors. Inline markup other than links passes
// through as written.
func (st *state) inlineHTML(line string, doc *model.Document, lineNum int) (string, error) {
	links := mddoc.ScanInline(line)
	if len(links) == 0 {
		return html.EscapeString(line), nil
	}

	var sb strings.Builder
	last := 0
	for _, l := range links {
		sb.WriteString(html.EscapeString(line[last:l.Start]))

		switch l.Kind {
		case model.LinkImage:
			st.writeHTMLImage(&sb, doc, l.Label, l.Target, lineNum)

		case model.LinkAuto:
			fmt.Fprintf(&sb, "<a href=\"%s\">%s</a>",
				html.EscapeString(l.Target), html.EscapeString(l.Target))

		case model.LinkReference:
			target, hasDef := st.refTarget(doc, l.Target)
			resolved, err := st.resolveTarget(target, doc.Path, lineNum)
			if err != nil {
				return "", err
			}
			if !hasDef && resolved == target {
				// No definition and not a section: literal text.
				sb.WriteString(html.EscapeString(line[l.Start:l.End]))
			} else {
				fmt.Fprintf(&sb, "<a href=\"%s\">%s</a>",
					html.EscapeString(resolved), html.EscapeString(l.Label))
			}

		default:
			target, err := st.resolveTarget(l.Target, doc.Path, lineNum)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&sb, "<a href=\"%s\">%s</a>",
				html.EscapeString(target), html.EscapeString(l.Label))
		}
		last = l.End
	}
	sb.WriteString(html.EscapeString(line[last:]))
	return sb.String(), nil
}

// writeHTMLImage emits an img tag, with width and height attributes
// probed from the file when image probing is enabled and the source is
// a local path.
func (st *state) writeHTMLImage(sb *strings.Builder, doc *model.Document, alt, src string, lineNum int) {
	if st.config.ProbeImages && isLocalImage(src) {
		path := filepath.Join(filepath.Dir(doc.Path), filepath.FromSlash(src))
		width, height, err := probeImage(path)
		if err != nil {
			st.warn(WarnImageProbe, doc.Path, lineNum, "cannot read dimensions of %s: %v", src, err)
		} else {
			fmt.Fprintf(sb, "<img src=\"%s\" alt=\"%s\" width=\"%d\" height=\"%d\">",
				html.EscapeString(src), html.EscapeString(alt), width, height)
			return
		}
	}
	fmt.Fprintf(sb, "<img src=\"%s\" alt=\"%s\">",
		html.EscapeString(src), html.EscapeString(alt))
}

// isLocalImage reports whether an image target is a local file path
// rather than a URL.
func isLocalImage(target string) bool {
	return target != "" && !strings.Contains(target, ":") && !strings.HasPrefix(target, "//")
}
