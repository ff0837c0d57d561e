// Package index builds the collection-wide slug index that backs
// cross-reference resolution and the table of contents.
//
// Every heading in every chapter gets exactly one anchor slug: the
// explicit identifier when the heading declares one, otherwise a slug
// derived from the title. Slugs live in one namespace across the whole
// collection, and a collision is a build error, not something to
// de-duplicate silently: two sections with the same anchor would make
// cross-references ambiguous.
package index

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tsawler/quire/model"
)

// Index errors.
var (
	ErrDuplicateSlug = errors.New("index: duplicate section slug")
)

// Entry is one indexed section.
type Entry struct {
	Slug    string
	Title   string
	Level   int
	Chapter int    // chapter position, 0-indexed
	Path    string // source path of the chapter
	Section *model.Section
}

// Index maps anchor slugs to sections across a collection.
type Index struct {
	entries map[string]*Entry
	order   []string // slugs in collection order
	toc     []model.TOCEntry
}

// Build walks every section of every chapter and assigns slugs. The
// first collision aborts the build with ErrDuplicateSlug naming the
// slug and both source files. Preamble sections have no heading and are
// not indexed.
func Build(coll *model.Collection) (*Index, error) {
	idx := &Index{entries: make(map[string]*Entry)}

	n := 0
	for ci, doc := range coll.Documents {
		for _, s := range doc.Sections {
			if s.IsPreamble() {
				continue
			}
			n++

			slug := s.ID
			if slug == "" {
				slug = Slugify(s.Title)
			}
			if slug == "" {
				slug = "section-" + strconv.Itoa(n)
			}

			if prev, ok := idx.entries[slug]; ok {
				return nil, fmt.Errorf("%w: %q declared in %s and %s",
					ErrDuplicateSlug, slug, prev.Path, doc.Path)
			}

			idx.entries[slug] = &Entry{
				Slug:    slug,
				Title:   s.Title,
				Level:   s.Level,
				Chapter: ci,
				Path:    doc.Path,
				Section: s,
			}
			idx.order = append(idx.order, slug)
			idx.toc = append(idx.toc, model.TOCEntry{
				Level:   s.Level,
				Title:   s.Title,
				Slug:    slug,
				Chapter: ci,
				Line:    s.Line,
			})
		}
	}

	return idx, nil
}

// Slugify derives an anchor slug from a heading title: lower-cased,
// whitespace runs collapsed to a single dash, characters outside
// [a-z0-9-_] dropped, dash runs collapsed, leading and trailing dashes
// trimmed. The result can be empty for titles with no usable
// characters; Build falls back to a positional slug.
func Slugify(title string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		case r == ' ' || r == '\t' || r == '-':
			sb.WriteByte('-')
		}
	}

	slug := sb.String()
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	return strings.Trim(slug, "-")
}

// Resolve looks up a link target against the index. Targets may carry a
// leading hash ("#password-hashing") or be a bare slug.
func (idx *Index) Resolve(target string) (*Entry, bool) {
	slug := strings.TrimPrefix(target, "#")
	e, ok := idx.entries[slug]
	return e, ok
}

// Lookup returns the entry for an exact slug.
func (idx *Index) Lookup(slug string) (*Entry, bool) {
	e, ok := idx.entries[slug]
	return e, ok
}

// Len returns the number of indexed sections.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Slugs returns all slugs sorted lexically.
func (idx *Index) Slugs() []string {
	slugs := make([]string, 0, len(idx.entries))
	for s := range idx.entries {
		slugs = append(slugs, s)
	}
	sort.Strings(slugs)
	return slugs
}

// Entries returns the indexed sections in collection order.
func (idx *Index) Entries() []*Entry {
	entries := make([]*Entry, 0, len(idx.order))
	for _, s := range idx.order {
		entries = append(entries, idx.entries[s])
	}
	return entries
}

// TableOfContents returns the collection outline with slugs assigned.
func (idx *Index) TableOfContents() []model.TOCEntry {
	toc := make([]model.TOCEntry, len(idx.toc))
	copy(toc, idx.toc)
	return toc
}
