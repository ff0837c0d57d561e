package mddoc

import (
	"regexp"
	"strings"

	"github.com/tsawler/quire/model"
)

// InlineLink is one hyperlink occurrence in a line of inline content,
// with byte offsets so the renderer can rewrite targets in place.
// Offsets are into the scanned line; End points past the last byte of
// the link syntax.
type InlineLink struct {
	Label       string
	Target      string
	Kind        model.LinkKind
	Start       int
	End         int
	TargetStart int
	TargetEnd   int
}

// ScanInline finds link syntax in a single line: inline links and
// images, reference-style links, and autolinks. Code spans are opaque;
// backslash-escaped brackets are literal. The scanner works line by
// line, so link syntax broken across lines is left as written.
func ScanInline(line string) []InlineLink {
	var links []InlineLink
	i := 0
	for i < len(line) {
		switch line[i] {
		case '\\':
			i += 2
		case '`':
			i = skipCodeSpan(line, i)
		case '<':
			if l, ok := parseAutolink(line, i); ok {
				links = append(links, l)
				i = l.End
			} else {
				i++
			}
		case '!':
			if i+1 < len(line) && line[i+1] == '[' {
				if l, ok := parseBracketLink(line, i, true); ok {
					links = append(links, l)
					i = l.End
					continue
				}
			}
			i++
		case '[':
			if l, ok := parseBracketLink(line, i, false); ok {
				links = append(links, l)
				i = l.End
			} else {
				i++
			}
		default:
			i++
		}
	}
	return links
}

// ExtractLinks returns the links found in a line as model values.
func ExtractLinks(line string, lineNum int) []model.Link {
	spans := ScanInline(line)
	if len(spans) == 0 {
		return nil
	}
	links := make([]model.Link, 0, len(spans))
	for _, s := range spans {
		links = append(links, model.Link{
			Label:  s.Label,
			Target: s.Target,
			Kind:   s.Kind,
			Line:   lineNum,
		})
	}
	return links
}

// parseBracketLink parses "[label](target)", "[label][ref]", or the
// collapsed "[label][]" starting at the bracket (or the bang for
// images). Image syntax only takes the inline form; a bang before a
// reference link stays literal.
func parseBracketLink(line string, at int, image bool) (InlineLink, bool) {
	b := at
	if image {
		b++
	}
	labelEnd := findBracketEnd(line, b+1)
	if labelEnd < 0 {
		return InlineLink{}, false
	}
	label := line[b+1 : labelEnd]
	next := labelEnd + 1

	if next < len(line) && line[next] == '(' {
		ts, te, end, ok := parseParenTarget(line, next)
		if !ok {
			return InlineLink{}, false
		}
		kind := model.LinkInline
		if image {
			kind = model.LinkImage
		}
		return InlineLink{
			Label:       label,
			Target:      line[ts:te],
			Kind:        kind,
			Start:       at,
			End:         end,
			TargetStart: ts,
			TargetEnd:   te,
		}, true
	}

	if !image && next < len(line) && line[next] == '[' {
		refEnd := findBracketEnd(line, next+1)
		if refEnd < 0 {
			return InlineLink{}, false
		}
		ref := line[next+1 : refEnd]
		if ref == "" {
			ref = label
		}
		return InlineLink{
			Label:       label,
			Target:      ref,
			Kind:        model.LinkReference,
			Start:       at,
			End:         refEnd + 1,
			TargetStart: next + 1,
			TargetEnd:   refEnd,
		}, true
	}

	return InlineLink{}, false
}

// parseParenTarget parses the "(destination optional-title)" part of an
// inline link. open points at the opening paren. Destinations may be
// wrapped in angle brackets; titles are quoted.
func parseParenTarget(line string, open int) (targetStart, targetEnd, end int, ok bool) {
	i := open + 1
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	if i >= len(line) {
		return 0, 0, 0, false
	}

	if line[i] == '<' {
		targetStart = i + 1
		j := strings.IndexByte(line[targetStart:], '>')
		if j < 0 {
			return 0, 0, 0, false
		}
		targetEnd = targetStart + j
		i = targetEnd + 1
	} else {
		targetStart = i
		for i < len(line) && line[i] != ')' && line[i] != ' ' && line[i] != '\t' {
			i++
		}
		targetEnd = i
	}

	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	if i < len(line) && (line[i] == '"' || line[i] == '\'') {
		q := line[i]
		i++
		for i < len(line) && line[i] != q {
			i++
		}
		if i >= len(line) {
			return 0, 0, 0, false
		}
		i++
		for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
	}
	if i >= len(line) || line[i] != ')' {
		return 0, 0, 0, false
	}
	return targetStart, targetEnd, i + 1, true
}

var autolinkRe = regexp.MustCompile(`^<([a-zA-Z][a-zA-Z0-9+.\-]*:[^\s<>]+)>`)

func parseAutolink(line string, at int) (InlineLink, bool) {
	m := autolinkRe.FindStringSubmatch(line[at:])
	if m == nil {
		return InlineLink{}, false
	}
	target := m[1]
	return InlineLink{
		Label:       target,
		Target:      target,
		Kind:        model.LinkAuto,
		Start:       at,
		End:         at + len(m[0]),
		TargetStart: at + 1,
		TargetEnd:   at + 1 + len(target),
	}, true
}

// findBracketEnd returns the offset of the next unescaped closing
// bracket, or -1.
func findBracketEnd(line string, start int) int {
	for i := start; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case ']':
			return i
		}
	}
	return -1
}

// skipCodeSpan advances past a backtick code span: a run of n backticks
// is closed by the next run of exactly n. An unclosed run is literal
// text.
func skipCodeSpan(line string, i int) int {
	n := 0
	for i+n < len(line) && line[i+n] == '`' {
		n++
	}
	pos := i + n
	for pos < len(line) {
		if line[pos] != '`' {
			pos++
			continue
		}
		m := 0
		for pos+m < len(line) && line[pos+m] == '`' {
			m++
		}
		if m == n {
			return pos + m
		}
		pos += m
	}
	return i + n
}

var headingAttrRe = regexp.MustCompile(`\s*\{#([^}\s]+)\}\s*$`)

// headingAttr splits an explicit identifier annotation off a heading
// title: "Password Hashing {#pw-hash}" yields the clean title and the
// identifier. The identifier is used verbatim as the anchor slug.
func headingAttr(text string) (title, id string) {
	m := headingAttrRe.FindStringSubmatchIndex(text)
	if m == nil {
		return text, ""
	}
	return strings.TrimSpace(text[:m[0]]), text[m[2]:m[3]]
}
