package render

import (
	"bytes"
	"strings"

	"github.com/tsawler/quire/mddoc"
	"github.com/tsawler/quire/model"
)

// writeText emits the collection as plain text: headings underlined,
// fenced code indented verbatim, link syntax flattened to "label <target>".
func (st *state) writeText(w *bytes.Buffer) error {
	title := st.title()
	w.WriteString(title)
	w.WriteString("\n")
	w.WriteString(strings.Repeat("=", len([]rune(title))))
	w.WriteString("\n")

	if st.config.TOC {
		st.writeTextTOC(w)
	}

	for _, doc := range st.coll.Documents {
		for _, s := range doc.Sections {
			if !s.IsPreamble() {
				w.WriteString("\n\n")
				w.WriteString(s.Title)
				w.WriteString("\n")
				w.WriteString(strings.Repeat(underline(s.Level), len([]rune(s.Title))))
			}
			if err := st.writeTextBlocks(w, doc, s); err != nil {
				return err
			}
		}
	}

	w.WriteString("\n")
	return nil
}

// underline picks the underline character for a heading level. Only the
// top two levels get distinct characters; deeper nesting reads fine with
// the same marker in flowed text.
func underline(level int) string {
	if level <= 1 {
		return "="
	}
	return "-"
}

func (st *state) writeTextTOC(w *bytes.Buffer) {
	toc := st.idx.TableOfContents()
	if len(toc) == 0 {
		return
	}

	w.WriteString("\nContents\n")
	for _, e := range toc {
		w.WriteString(strings.Repeat("  ", e.Level-1))
		w.WriteString("- ")
		w.WriteString(e.Title)
		w.WriteString("\n")
	}
}

func (st *state) writeTextBlocks(w *bytes.Buffer, doc *model.Document, s *model.Section) error {
	for _, b := range s.Blocks {
		w.WriteString("\n\n")
		switch block := b.(type) {
		case *model.Paragraph:
			text, err := st.flattenText(block.Content, doc, block.Line)
			if err != nil {
				return err
			}
			w.WriteString(text)

		case *model.CodeBlock:
			for i, line := range strings.Split(block.Content, "\n") {
				if i > 0 {
					w.WriteString("\n")
				}
				if line != "" {
					w.WriteString("    ")
					w.WriteString(line)
				}
			}

		case *model.List:
			for i, item := range block.Items {
				if i > 0 {
					w.WriteString("\n")
				}
				content, err := st.flattenLine(item.Content, doc, block.Line+i)
				if err != nil {
					return err
				}
				w.WriteString(strings.Repeat("  ", item.Level))
				w.WriteString(item.Marker)
				w.WriteString(" ")
				w.WriteString(content)
			}

		case *model.Quote:
			for i, line := range block.Lines {
				if i > 0 {
					w.WriteString("\n")
				}
				flattened, err := st.flattenLine(line, doc, block.Line+i)
				if err != nil {
					return err
				}
				w.WriteString("> ")
				w.WriteString(flattened)
			}

		case *model.Rule:
			w.WriteString("* * *")
		}
	}
	return nil
}

// flattenText applies flattenLine to every line of a block's content.
func (st *state) flattenText(text string, doc *model.Document, startLine int) (string, error) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		flattened, err := st.flattenLine(line, doc, startLine+i)
		if err != nil {
			return "", err
		}
		lines[i] = flattened
	}
	return strings.Join(lines, "\n"), nil
}

// flattenLine replaces link syntax with its plain text form: inline and
// reference links become "label <target>", autolinks keep just the URL,
// and images become "alt <src>". Internal targets resolve to anchors so
// a text artifact still names the section a reference points at.
func (st *state) flattenLine(line string, doc *model.Document, lineNum int) (string, error) {
	links := mddoc.ScanInline(line)
	if len(links) == 0 {
		return line, nil
	}

	var sb strings.Builder
	last := 0
	for _, l := range links {
		sb.WriteString(line[last:l.Start])

		switch l.Kind {
		case model.LinkAuto:
			sb.WriteString(l.Target)

		case model.LinkImage:
			sb.WriteString(l.Label)
			sb.WriteString(" <")
			sb.WriteString(l.Target)
			sb.WriteString(">")

		case model.LinkReference:
			target, hasDef := st.refTarget(doc, l.Target)
			resolved, err := st.resolveTarget(target, doc.Path, lineNum)
			if err != nil {
				return "", err
			}
			if !hasDef && resolved == target {
				sb.WriteString(line[l.Start:l.End])
			} else {
				sb.WriteString(l.Label)
				sb.WriteString(" <")
				sb.WriteString(resolved)
				sb.WriteString(">")
			}

		default:
			target, err := st.resolveTarget(l.Target, doc.Path, lineNum)
			if err != nil {
				return "", err
			}
			sb.WriteString(l.Label)
			sb.WriteString(" <")
			sb.WriteString(target)
			sb.WriteString(">")
		}
		last = l.End
	}
	sb.WriteString(line[last:])
	return sb.String(), nil
}
