// Package quire provides a fluent API for binding an ordered set of
// chapter files into a single rendered reference document.
//
// Basic usage:
//
//	html, warnings, err := quire.Collect("01-intro.md", "02-usage.md").HTML()
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", quire.FormatWarnings(warnings))
//	}
//
// With options:
//
//	html, _, err := quire.Collect("guide.md", "reference.md").
//	    Title("Field Guide").
//	    WithTOC().
//	    Highlight("github").
//	    HTML()
//
// For advanced use cases, the lower-level loader, mddoc, htmldoc,
// index, and render packages are also available.
package quire

import (
	"github.com/tsawler/quire/manifest"
)

// Collect starts a bind over chapter files, in the given order, and
// returns a Binder for fluent configuration. Nothing is read from disk
// until a terminal operation runs.
//
// Example:
//
//	html, warnings, err := quire.Collect("guide.md").HTML()
func Collect(paths ...string) *Binder {
	return &Binder{
		paths:   append([]string(nil), paths...),
		options: defaultOptions(),
	}
}

// FromManifest starts a bind from a YAML book manifest: the manifest's
// chapter list, title, and output settings seed the Binder, and chain
// methods can still override them. A manifest error surfaces from the
// first terminal operation.
//
// Example:
//
//	html, warnings, err := quire.FromManifest("book.yaml").HTML()
func FromManifest(path string) *Binder {
	m, err := manifest.Load(path)
	if err != nil {
		return &Binder{options: defaultOptions(), err: err}
	}

	b := &Binder{
		paths:   append([]string(nil), m.Chapters...),
		options: defaultOptions(),
	}
	b.options.title = m.Title
	b.options.toc = m.Output.TOC
	b.options.highlightStyle = m.Output.Highlight
	return b
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	outline := quire.Must(quire.Collect("guide.md").Outline())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustBind is a helper that wraps a terminal operation returning
// (T, []Warning, error) and panics if the error is non-nil. It discards
// warnings and returns just the value. It is intended for use in
// scripts or tests where error handling would be cumbersome.
//
// Example:
//
//	html := quire.MustBind(quire.Collect("guide.md").HTML())
func MustBind[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
