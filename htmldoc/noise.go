package htmldoc

import (
	"regexp"

	"golang.org/x/net/html"
)

// skipElements are elements whose content is never chapter prose.
var skipElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"svg":      true,
	"math":     true,
	"iframe":   true,
	"object":   true,
	"embed":    true,
}

// noisePattern matches class and id values that mark navigation or
// boilerplate containers. Word-boundary matching keeps "navy" and
// similar substrings from triggering it.
var noisePattern = regexp.MustCompile(
	`(?i)(^|[^a-z])(nav|navbar|navigation|menu|topnav|sidenav|breadcrumb|breadcrumbs|` +
		`site-header|page-header|masthead|banner|` +
		`footer|site-footer|page-footer|colophon|` +
		`sidebar|widget-area|widget|aside)([^a-z]|$)`)

// noiseFilter decides which elements to drop while extracting chapter
// content: script and style machinery, explicit navigation elements,
// and page chrome identified by ARIA roles or common class and id
// naming. A header or footer only counts as chrome at the top level of
// the page; deeper ones are treated as content.
type noiseFilter struct {
	body    *html.Node
	wrapper *html.Node // single structural wrapper under body, if any
}

func newNoiseFilter(root *html.Node) *noiseFilter {
	nf := &noiseFilter{}
	nf.body = findElement(root, "body")
	if nf.body == nil {
		nf.body = root
	}
	nf.wrapper = detectWrapper(nf.body)
	return nf
}

// detectWrapper finds a single structural wrapper element if one
// exists, handling the common <body><div id="wrapper">...</div></body>
// shape so top-level checks see through it.
func detectWrapper(body *html.Node) *html.Node {
	var structural []*html.Node
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "div", "main":
			structural = append(structural, c)
		case "script", "style", "noscript", "template":
		default:
			return nil
		}
	}
	if len(structural) == 1 {
		return structural[0]
	}
	return nil
}

// Skip reports whether the element and its subtree should be dropped.
func (nf *noiseFilter) Skip(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}

	if skipElements[n.Data] {
		return true
	}

	switch n.Data {
	case "nav", "aside":
		return true
	case "header", "footer":
		return nf.topLevel(n)
	}

	switch getAttr(n, "role") {
	case "navigation", "complementary":
		return true
	case "banner", "contentinfo":
		return nf.topLevel(n)
	}

	if noisePattern.MatchString(getAttr(n, "class")) || noisePattern.MatchString(getAttr(n, "id")) {
		return true
	}

	return false
}

// topLevel reports whether the node is a direct child of body or of a
// single top-level wrapper.
func (nf *noiseFilter) topLevel(n *html.Node) bool {
	parent := n.Parent
	if parent == nil {
		return false
	}
	if parent == nf.body {
		return true
	}
	return nf.wrapper != nil && parent == nf.wrapper
}
