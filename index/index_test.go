package index

import (
	"errors"
	"strings"
	"testing"

	"github.com/tsawler/quire/model"
)

func makeDoc(path string, sections ...*model.Section) *model.Document {
	doc := model.NewDocument(path)
	for _, s := range sections {
		doc.AddSection(s)
	}
	return doc
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Security", "security"},
		{"Password Hashing", "password-hashing"},
		{"  leading and trailing  ", "leading-and-trailing"},
		{"runs   of    spaces", "runs-of-spaces"},
		{"tabs\tbetween\twords", "tabs-between-words"},
		{"C# Tips", "c-tips"},
		{"Don't Panic!", "dont-panic"},
		{"re-entry", "re-entry"},
		{"snake_case kept", "snake_case-kept"},
		{"Version 2.0", "version-20"},
		{"a --- b", "a-b"},
		{"--edges--", "edges"},
		{"???", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Slugify(tt.title); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestBuild_DerivedSlugs(t *testing.T) {
	coll := model.NewCollection("guide")
	coll.Add(makeDoc("chapters/01-security.md",
		model.NewSection(1, "Security"),
		model.NewSection(2, "Password Hashing"),
	))

	idx, err := Build(coll)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if idx.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", idx.Len())
	}

	sec, ok := idx.Lookup("security")
	if !ok {
		t.Fatal("Lookup(security) missing")
	}
	if sec.Title != "Security" || sec.Level != 1 {
		t.Errorf("entry = %+v", sec)
	}

	if _, ok := idx.Lookup("password-hashing"); !ok {
		t.Error("Lookup(password-hashing) missing")
	}
}

func TestBuild_ExplicitIDVerbatim(t *testing.T) {
	s := model.NewSection(2, "Password Hashing")
	s.ID = "PW_Hash.v2"

	coll := model.NewCollection("guide")
	coll.Add(makeDoc("a.md", s))

	idx, err := Build(coll)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if _, ok := idx.Lookup("PW_Hash.v2"); !ok {
		t.Error("explicit identifier should be used verbatim, not slugified")
	}
	if _, ok := idx.Lookup("pw_hash.v2"); ok {
		t.Error("lowered form of explicit identifier should not exist")
	}
}

func TestBuild_DuplicateAcrossChapters(t *testing.T) {
	coll := model.NewCollection("guide")
	coll.Add(makeDoc("chapters/01.md", model.NewSection(1, "Password Hashing")))
	coll.Add(makeDoc("chapters/02.md", model.NewSection(2, "password   HASHING")))

	_, err := Build(coll)
	if !errors.Is(err, ErrDuplicateSlug) {
		t.Fatalf("Build() error = %v, want ErrDuplicateSlug", err)
	}
	for _, want := range []string{"password-hashing", "chapters/01.md", "chapters/02.md"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestBuild_ExplicitCollidesWithDerived(t *testing.T) {
	withID := model.NewSection(2, "Something Else")
	withID.ID = "security"

	coll := model.NewCollection("guide")
	coll.Add(makeDoc("a.md", model.NewSection(1, "Security")))
	coll.Add(makeDoc("b.md", withID))

	_, err := Build(coll)
	if !errors.Is(err, ErrDuplicateSlug) {
		t.Fatalf("Build() error = %v, want ErrDuplicateSlug", err)
	}
}

func TestBuild_FallbackSlug(t *testing.T) {
	coll := model.NewCollection("guide")
	coll.Add(makeDoc("a.md",
		model.NewSection(1, "Intro"),
		model.NewSection(2, "???"),
	))

	idx, err := Build(coll)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if _, ok := idx.Lookup("section-2"); !ok {
		t.Errorf("want positional fallback slug section-2, have %v", idx.Slugs())
	}
}

func TestBuild_PreambleNotIndexed(t *testing.T) {
	pre := model.NewSection(model.PreambleLevel, "")
	coll := model.NewCollection("guide")
	coll.Add(makeDoc("a.md", pre, model.NewSection(1, "Intro")))

	idx, err := Build(coll)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if idx.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (preamble is not a link target)", idx.Len())
	}
}

func TestResolve(t *testing.T) {
	coll := model.NewCollection("guide")
	coll.Add(makeDoc("a.md", model.NewSection(1, "Security")))

	idx, err := Build(coll)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if _, ok := idx.Resolve("#security"); !ok {
		t.Error("Resolve(#security) should find the section")
	}
	if _, ok := idx.Resolve("security"); !ok {
		t.Error("Resolve(security) should accept a bare slug")
	}
	if _, ok := idx.Resolve("#missing"); ok {
		t.Error("Resolve(#missing) should fail")
	}
}

func TestSlugsSortedEntriesOrdered(t *testing.T) {
	coll := model.NewCollection("guide")
	coll.Add(makeDoc("a.md", model.NewSection(1, "Zebra")))
	coll.Add(makeDoc("b.md", model.NewSection(1, "Alpha")))

	idx, err := Build(coll)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	slugs := idx.Slugs()
	if slugs[0] != "alpha" || slugs[1] != "zebra" {
		t.Errorf("Slugs() = %v, want sorted", slugs)
	}

	entries := idx.Entries()
	if entries[0].Slug != "zebra" || entries[1].Slug != "alpha" {
		t.Errorf("Entries() order = %q, %q, want collection order", entries[0].Slug, entries[1].Slug)
	}
}

func TestTableOfContents_SlugsAssigned(t *testing.T) {
	coll := model.NewCollection("guide")
	coll.Add(makeDoc("a.md",
		model.NewSection(1, "Security"),
		model.NewSection(2, "Password Hashing"),
	))

	idx, err := Build(coll)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	toc := idx.TableOfContents()
	if len(toc) != 2 {
		t.Fatalf("TableOfContents() = %d entries, want 2", len(toc))
	}
	if toc[0].Slug != "security" || toc[1].Slug != "password-hashing" {
		t.Errorf("slugs = %q, %q", toc[0].Slug, toc[1].Slug)
	}
}
