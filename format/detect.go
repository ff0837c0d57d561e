// Package format provides chapter file format detection for the quire library.
package format

import (
	"path/filepath"
	"strings"
)

// Format represents a supported chapter format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// Markdown indicates a Markdown chapter.
	Markdown
	// HTML indicates an HTML chapter.
	HTML
	// Text indicates a plain text chapter. Text chapters go through the
	// Markdown parser, which degrades to paragraphs when no markup is
	// present.
	Text
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case Markdown:
		return "Markdown"
	case HTML:
		return "HTML"
	case Text:
		return "Text"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case Markdown:
		return ".md"
	case HTML:
		return ".html"
	case Text:
		return ".txt"
	default:
		return ""
	}
}

// Detect determines chapter format from filename extension.
func Detect(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".md", ".markdown", ".mdown", ".mkd":
		return Markdown
	case ".html", ".htm", ".xhtml":
		return HTML
	case ".txt", ".text":
		return Text
	default:
		return Unknown
	}
}

// DetectFromBytes inspects content to determine format. This
// supplements extension-based detection for files with missing or
// misleading extensions. Returns Unknown when the content carries no
// recognizable signature.
func DetectFromBytes(data []byte) Format {
	if detectHTMLSignature(data) {
		return HTML
	}
	if detectMarkdownSignature(data) {
		return Markdown
	}
	return Unknown
}

// detectHTMLSignature checks if the data starts like an HTML document.
func detectHTMLSignature(data []byte) bool {
	start := 0
	for start < len(data) && (data[start] == ' ' || data[start] == '\t' || data[start] == '\n' || data[start] == '\r') {
		start++
	}
	if start >= len(data) {
		return false
	}
	data = data[start:]

	upper := strings.ToUpper(string(data[:min(512, len(data))]))
	if strings.HasPrefix(upper, "<!DOCTYPE HTML") {
		return true
	}
	if strings.HasPrefix(upper, "<HTML") {
		return true
	}
	// XML declaration followed by html-like content could be XHTML
	if strings.HasPrefix(upper, "<?XML") && strings.Contains(upper, "<HTML") {
		return true
	}

	return false
}

// detectMarkdownSignature checks for heading or fence markers near the
// top of the content.
func detectMarkdownSignature(data []byte) bool {
	text := string(data[:min(2048, len(data))])
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimRight(line, "\r")
		if strings.HasPrefix(trimmed, "#") {
			// ATX heading requires a space after the hashes
			rest := strings.TrimLeft(trimmed, "#")
			if rest == "" || strings.HasPrefix(rest, " ") {
				return true
			}
		}
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			return true
		}
	}
	return false
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
