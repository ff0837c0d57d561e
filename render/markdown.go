package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/tsawler/quire/model"
)

// writeMarkdown emits the collection as normalized Markdown: chapters
// in order, ATX headings with explicit identifiers preserved, fenced
// code re-emitted byte-for-byte, reference links folded to inline
// form.
func (st *state) writeMarkdown(w *bytes.Buffer) error {
	if st.config.TOC {
		st.writeMarkdownTOC(w)
	}

	for _, doc := range st.coll.Documents {
		for _, s := range doc.Sections {
			if !s.IsPreamble() {
				if w.Len() > 0 {
					w.WriteString("\n\n")
				}
				w.WriteString(strings.Repeat("#", s.Level))
				w.WriteString(" ")
				w.WriteString(s.Title)
				if s.HasExplicitID() {
					w.WriteString(" {#")
					w.WriteString(s.ID)
					w.WriteString("}")
				}
			}
			if err := st.writeMarkdownBlocks(w, doc, s); err != nil {
				return err
			}
		}
	}

	if w.Len() > 0 {
		w.WriteString("\n")
	}
	return nil
}

func (st *state) writeMarkdownTOC(w *bytes.Buffer) {
	w.WriteString("# ")
	w.WriteString(st.title())

	toc := st.idx.TableOfContents()
	if len(toc) > 0 {
		w.WriteString("\n")
		for _, e := range toc {
			w.WriteString("\n")
			w.WriteString(strings.Repeat("  ", e.Level-1))
			fmt.Fprintf(w, "- [%s](#%s)", e.Title, e.Slug)
		}
	}

	w.WriteString("\n\n---")
}

func (st *state) writeMarkdownBlocks(w *bytes.Buffer, doc *model.Document, s *model.Section) error {
	for _, b := range s.Blocks {
		if w.Len() > 0 {
			w.WriteString("\n\n")
		}
		switch block := b.(type) {
		case *model.Paragraph:
			text, err := st.rewriteText(block.Content, doc, block.Line)
			if err != nil {
				return err
			}
			w.WriteString(text)

		case *model.CodeBlock:
			w.WriteString(block.Fence)
			w.WriteString(block.Info)
			w.WriteString("\n")
			if block.Content != "" {
				w.WriteString(block.Content)
				w.WriteString("\n")
			}
			w.WriteString(block.Fence)

		case *model.List:
			for i, item := range block.Items {
				if i > 0 {
					w.WriteString("\n")
				}
				content, err := st.rewriteLine(item.Content, doc, block.Line+i)
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
				rewritten, err := st.rewriteLine(line, doc, block.Line+i)
				if err != nil {
					return err
				}
				if rewritten == "" {
					w.WriteString(">")
				} else {
					w.WriteString("> ")
					w.WriteString(rewritten)
				}
			}

		case *model.Rule:
			w.WriteString(block.Marker)
		}
	}
	return nil
}
