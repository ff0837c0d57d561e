package render

import (
	"bytes"
	"fmt"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// highlightFormatter returns the class-based HTML formatter. Token styling
// lives in the embedded stylesheet, keeping the markup itself free of
// inline attributes and therefore stable across chroma style tweaks.
func highlightFormatter() *chromahtml.Formatter {
	return chromahtml.New(chromahtml.WithClasses(true))
}

// tryHighlight writes a highlighted code block to w. Returns false when no
// lexer matches the language tag; the caller then falls back to a plain
// pre/code block.
func tryHighlight(w *bytes.Buffer, source, language, styleName string) (bool, error) {
	lexer := lexers.Get(language)
	if lexer == nil {
		return false, nil
	}
	lexer = chroma.Coalesce(lexer)

	it, err := lexer.Tokenise(nil, source)
	if err != nil {
		return false, fmt.Errorf("tokenizing: %w", err)
	}
	if err := highlightFormatter().Format(w, styles.Get(styleName), it); err != nil {
		return false, fmt.Errorf("formatting: %w", err)
	}
	return true, nil
}

// highlightCSS writes the stylesheet for the configured highlight style.
// styles.Get falls back to a built-in style for unknown names, so a typo
// in a style name degrades the colors rather than failing the build.
func highlightCSS(w *bytes.Buffer, styleName string) error {
	return highlightFormatter().WriteCSS(w, styles.Get(styleName))
}
