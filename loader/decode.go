package loader

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/tsawler/quire/format"
)

// decode converts raw chapter bytes to UTF-8 text.
//
// Precedence: a byte order mark wins over everything, valid UTF-8 is
// taken as-is, HTML content may declare its charset in a meta tag, and
// anything else falls back to the detected legacy encoding. Content
// that still is not text after decoding (embedded NULs) is rejected
// with ErrEncoding.
func decode(raw []byte, f format.Format) (string, error) {
	var text string

	switch {
	case hasBOM(raw):
		decoded, _, err := transform.Bytes(unicode.BOMOverride(encoding.Nop.NewDecoder()), raw)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrEncoding, err)
		}
		if !utf8.Valid(decoded) {
			return "", fmt.Errorf("%w: invalid byte sequence after BOM decoding", ErrEncoding)
		}
		text = string(decoded)

	case utf8.Valid(raw):
		text = string(raw)

	case f == format.HTML:
		r, err := charset.NewReader(bytes.NewReader(raw), "text/html")
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrEncoding, err)
		}
		decoded, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrEncoding, err)
		}
		text = string(decoded)

	default:
		enc, name, _ := charset.DetermineEncoding(raw, "")
		decoded, _, err := transform.Bytes(enc.NewDecoder(), raw)
		if err != nil {
			return "", fmt.Errorf("%w: decoding as %s: %v", ErrEncoding, name, err)
		}
		text = string(decoded)
	}

	if strings.ContainsRune(text, 0) {
		return "", fmt.Errorf("%w: content contains NUL bytes", ErrEncoding)
	}

	return normalizeNewlines(text), nil
}

// hasBOM reports whether the content starts with a UTF-8, UTF-16LE, or
// UTF-16BE byte order mark.
func hasBOM(raw []byte) bool {
	if len(raw) >= 3 && raw[0] == 0xEF && raw[1] == 0xBB && raw[2] == 0xBF {
		return true
	}
	if len(raw) >= 2 {
		if raw[0] == 0xFF && raw[1] == 0xFE {
			return true
		}
		if raw[0] == 0xFE && raw[1] == 0xFF {
			return true
		}
	}
	return false
}

// normalizeNewlines rewrites CRLF and lone CR line endings to LF so the
// parsers and renderers work with one line terminator.
func normalizeNewlines(text string) string {
	if !strings.ContainsRune(text, '\r') {
		return text
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
