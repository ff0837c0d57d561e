// Package model provides the intermediate representation (IR) for parsed
// chapter content.
//
// This package defines the user-facing data structures that represent the
// semantic structure of a chapter collection. All parsing operations
// ultimately produce these types, making them the primary API for consuming
// parsed content.
//
// # Collection Structure
//
// The [Collection] type represents an ordered set of chapters:
//
//	coll := model.NewCollection("PHP Best Practices")
//	coll.Add(doc)
//
// Each [Document] is one chapter and contains ordered [Section] values, one
// per heading in the source file, in source order.
//
// # Sections
//
// A [Section] is a heading plus the content that runs beneath it, up to the
// next heading of the same or a shallower level. Nesting is implied by
// heading levels and exposed through Parent and Children links. Content
// before the first heading of a chapter is kept as a level-0 preamble
// section.
//
// # Blocks
//
// All section content implements the [Block] interface. The concrete types
// are:
//
//   - [Paragraph] - prose paragraphs with inline content as written
//   - [CodeBlock] - fenced code, byte-preserved
//   - [List] - ordered or unordered lists
//   - [Quote] - block quotes
//   - [Rule] - thematic breaks
//
// # Links
//
// Hyperlinks found during parsing are recorded as [Link] values on their
// section. Only fragment and bare-slug targets participate in
// cross-reference resolution; everything else passes through rendering
// unchanged.
package model
