package mddoc

import (
	"errors"
	"strings"
	"testing"

	"github.com/tsawler/quire/model"
)

const securityChapter = `# Security

Never trust user input.

## Password Hashing

Use a slow KDF with a per-user salt.

` + "```php\n$hash = password_hash($pw, PASSWORD_DEFAULT);\n```" + `

See [the intro](#security) for context.
`

func TestParse_SecurityExample(t *testing.T) {
	doc, err := Parse("chapters/01-security.md", securityChapter)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if doc.Title != "Security" {
		t.Errorf("Title = %q, want %q", doc.Title, "Security")
	}
	if doc.SectionCount() != 2 {
		t.Fatalf("SectionCount() = %d, want 2", doc.SectionCount())
	}

	sec := doc.Sections[0]
	if sec.Level != 1 || sec.Title != "Security" {
		t.Errorf("section[0] = level %d %q, want level 1 %q", sec.Level, sec.Title, "Security")
	}
	hash := doc.Sections[1]
	if hash.Level != 2 || hash.Title != "Password Hashing" {
		t.Errorf("section[1] = level %d %q, want level 2 %q", hash.Level, hash.Title, "Password Hashing")
	}
	if hash.Parent() != sec {
		t.Error("Password Hashing should nest under Security")
	}

	code := hash.CodeBlocks()
	if len(code) != 1 {
		t.Fatalf("CodeBlocks() = %d, want 1", len(code))
	}
	if code[0].Language != "php" {
		t.Errorf("Language = %q, want php", code[0].Language)
	}
	if code[0].Content != "$hash = password_hash($pw, PASSWORD_DEFAULT);" {
		t.Errorf("code content altered: %q", code[0].Content)
	}

	links := hash.Links
	if len(links) != 1 || links[0].Target != "#security" {
		t.Errorf("Links = %v, want one link to #security", links)
	}
}

func TestParse_SectionCountEqualsHeadingCount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		sections int
		headings int
	}{
		{"single heading", "# One\n\nbody\n", 1, 1},
		{"six levels", "# a\n## b\n### c\n#### d\n##### e\n###### f\n", 6, 6},
		{"preamble adds one", "intro text\n\n# One\n", 2, 1},
		{"heading-like code excluded", "# Real\n\n```\n# not a heading\n## also not\n```\n", 1, 1},
		{"empty input", "", 0, 0},
		{"only prose", "just a paragraph\n", 1, 0},
		{"seven hashes is prose", "####### not a heading\n", 1, 0},
		{"hash without space is prose", "#hashtag\n", 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse("test.md", tt.input)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if doc.SectionCount() != tt.sections {
				t.Errorf("SectionCount() = %d, want %d", doc.SectionCount(), tt.sections)
			}
			if doc.HeadingCount() != tt.headings {
				t.Errorf("HeadingCount() = %d, want %d", doc.HeadingCount(), tt.headings)
			}
		})
	}
}

func TestParse_Preamble(t *testing.T) {
	doc, err := Parse("test.md", "This chapter has an introduction.\n\n# First\n\nbody\n")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	pre := doc.Preamble()
	if pre == nil {
		t.Fatal("Preamble() = nil, want the pre-heading section")
	}
	if !pre.IsPreamble() {
		t.Error("preamble section should report IsPreamble")
	}
	if got := pre.Text(); got != "This chapter has an introduction." {
		t.Errorf("preamble text = %q", got)
	}
}

func TestParse_UnterminatedFence(t *testing.T) {
	input := "# Security\n\nSome text.\n\n```php\n$x = 1;\n"

	_, err := Parse("chapters/bad.md", input)
	if !errors.Is(err, ErrUnclosedFence) {
		t.Fatalf("Parse() error = %v, want ErrUnclosedFence", err)
	}
	if !strings.Contains(err.Error(), "chapters/bad.md") {
		t.Errorf("error %q does not name the offending path", err)
	}
	if !strings.Contains(err.Error(), ":5") {
		t.Errorf("error %q does not name the opening fence line", err)
	}
}

func TestParse_FencePreservesBytes(t *testing.T) {
	// Indentation, blank lines, and marker-looking lines inside a fence
	// must come through untouched.
	content := "def f():\n\n\treturn [1,\n\t        2]\n# comment\n> not a quote\n- not a list"
	input := "# T\n\n```python\n" + content + "\n```\n"

	doc, err := Parse("test.md", input)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	code := doc.CodeBlocks()
	if len(code) != 1 {
		t.Fatalf("CodeBlocks() = %d, want 1", len(code))
	}
	if code[0].Content != content {
		t.Errorf("fence content altered:\ngot  %q\nwant %q", code[0].Content, content)
	}
}

func TestParse_FenceVariants(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		lang    string
		content string
	}{
		{"tilde fence", "~~~sql\nSELECT 1;\n~~~\n", "sql", "SELECT 1;"},
		{"longer close", "```\nx\n`````\n", "", "x"},
		{"four backticks", "````\n```\ninner\n```\n````\n", "", "```\ninner\n```"},
		{"empty block", "```\n```\n", "", ""},
		{"info with spaces", "```php startline=3\necho 1;\n```\n", "php", "echo 1;"},
		{"uppercase language", "```PHP\necho 1;\n```\n", "php", "echo 1;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse("test.md", tt.input)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			code := doc.CodeBlocks()
			if len(code) != 1 {
				t.Fatalf("CodeBlocks() = %d, want 1", len(code))
			}
			if code[0].Language != tt.lang {
				t.Errorf("Language = %q, want %q", code[0].Language, tt.lang)
			}
			if code[0].Content != tt.content {
				t.Errorf("Content = %q, want %q", code[0].Content, tt.content)
			}
		})
	}
}

func TestParse_ShorterCloseDoesNotTerminate(t *testing.T) {
	_, err := Parse("test.md", "````\ncode\n```\n")
	if !errors.Is(err, ErrUnclosedFence) {
		t.Fatalf("Parse() error = %v, want ErrUnclosedFence for shorter closing fence", err)
	}
}

func TestParse_MismatchedFenceChar(t *testing.T) {
	// A tilde line cannot close a backtick fence.
	_, err := Parse("test.md", "```\ncode\n~~~\n")
	if !errors.Is(err, ErrUnclosedFence) {
		t.Fatalf("Parse() error = %v, want ErrUnclosedFence for mismatched fence chars", err)
	}
}

func TestParse_HeadingForms(t *testing.T) {
	tests := []struct {
		name  string
		input string
		level int
		title string
	}{
		{"h1", "# Title\n", 1, "Title"},
		{"h6", "###### Deep\n", 6, "Deep"},
		{"trailing hashes stripped", "## Title ##\n", 2, "Title"},
		{"hash in title kept", "# Writing C#\n", 1, "Writing C#"},
		{"tab after hashes", "#\tTitle\n", 1, "Title"},
		{"leading spaces", "   ## Indented\n", 2, "Indented"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse("test.md", tt.input)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if doc.HeadingCount() != 1 {
				t.Fatalf("HeadingCount() = %d, want 1", doc.HeadingCount())
			}
			s := doc.Sections[0]
			if s.Level != tt.level || s.Title != tt.title {
				t.Errorf("section = level %d %q, want level %d %q", s.Level, s.Title, tt.level, tt.title)
			}
		})
	}
}

func TestParse_ExplicitID(t *testing.T) {
	doc, err := Parse("test.md", "## Password Hashing {#pw-hash}\n\nbody\n")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	s := doc.Sections[0]
	if s.Title != "Password Hashing" {
		t.Errorf("Title = %q, annotation should be stripped", s.Title)
	}
	if s.ID != "pw-hash" {
		t.Errorf("ID = %q, want %q", s.ID, "pw-hash")
	}
}

func TestParse_Lists(t *testing.T) {
	input := "# T\n\n- first\n- second\n  - nested\n\n1. one\n2. two\n"

	doc, err := Parse("test.md", input)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	s := doc.Sections[0]
	if len(s.Blocks) != 2 {
		t.Fatalf("Blocks = %d, want 2 lists", len(s.Blocks))
	}

	ul, ok := s.Blocks[0].(*model.List)
	if !ok {
		t.Fatalf("first block = %T, want List", s.Blocks[0])
	}
	if ul.Ordered {
		t.Error("first list should be unordered")
	}
	if len(ul.Items) != 3 {
		t.Fatalf("unordered items = %d, want 3", len(ul.Items))
	}
	if ul.Items[2].Level != 1 {
		t.Errorf("nested item level = %d, want 1", ul.Items[2].Level)
	}

	ol, ok := s.Blocks[1].(*model.List)
	if !ok || !ol.Ordered {
		t.Fatalf("second block = %T, want ordered list", s.Blocks[1])
	}
	if ol.Items[1].Marker != "2." {
		t.Errorf("ordered marker = %q, want %q", ol.Items[1].Marker, "2.")
	}
}

func TestParse_Quote(t *testing.T) {
	doc, err := Parse("test.md", "# T\n\n> never trust input\n> always escape output\n")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	q, ok := doc.Sections[0].Blocks[0].(*model.Quote)
	if !ok {
		t.Fatalf("block = %T, want Quote", doc.Sections[0].Blocks[0])
	}
	if len(q.Lines) != 2 || q.Lines[0] != "never trust input" {
		t.Errorf("quote lines = %v", q.Lines)
	}
}

func TestParse_RuleVersusList(t *testing.T) {
	doc, err := Parse("test.md", "# T\n\n---\n\n- item\n\n***\n")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	blocks := doc.Sections[0].Blocks
	if len(blocks) != 3 {
		t.Fatalf("Blocks = %d, want rule, list, rule", len(blocks))
	}
	if blocks[0].Type() != model.BlockTypeRule {
		t.Errorf("blocks[0] = %v, want Rule", blocks[0].Type())
	}
	if blocks[1].Type() != model.BlockTypeList {
		t.Errorf("blocks[1] = %v, want List", blocks[1].Type())
	}
	if blocks[2].Type() != model.BlockTypeRule {
		t.Errorf("blocks[2] = %v, want Rule", blocks[2].Type())
	}
}

func TestParse_ReferenceDefinitions(t *testing.T) {
	input := "# T\n\nSee [the docs][php-docs] for details.\n\n[php-docs]: https://www.php.net/manual\n"

	doc, err := Parse("test.md", input)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got := doc.RefDefs["php-docs"]; got != "https://www.php.net/manual" {
		t.Errorf("RefDefs[php-docs] = %q", got)
	}

	links := doc.Links()
	if len(links) != 1 {
		t.Fatalf("Links() = %d, want 1", len(links))
	}
	if links[0].Kind != model.LinkReference {
		t.Errorf("Kind = %v, want Reference", links[0].Kind)
	}
	if links[0].Target != "https://www.php.net/manual" {
		t.Errorf("Target = %q, definition should be resolved", links[0].Target)
	}
}

func TestParse_TitleFromPath(t *testing.T) {
	doc, err := Parse("chapters/02-community.md", "## No Level One Here\n")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if doc.Title != "02-community" {
		t.Errorf("Title = %q, want %q", doc.Title, "02-community")
	}
}

func TestParse_LinkKinds(t *testing.T) {
	input := "# T\n\nAn [inline](https://example.com) link, an ![image](img/x.png), and <https://php.net>.\n"

	doc, err := Parse("test.md", input)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	links := doc.Links()
	if len(links) != 3 {
		t.Fatalf("Links() = %d, want 3", len(links))
	}
	wantKinds := []model.LinkKind{model.LinkInline, model.LinkImage, model.LinkAuto}
	for i, k := range wantKinds {
		if links[i].Kind != k {
			t.Errorf("links[%d].Kind = %v, want %v", i, links[i].Kind, k)
		}
	}
}

func TestParse_SectionLineNumbers(t *testing.T) {
	doc, err := Parse("test.md", "intro\n\n# First\n\nbody\n\n## Second\n")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	wantLines := []int{1, 3, 7}
	for i, s := range doc.Sections {
		if s.Line != wantLines[i] {
			t.Errorf("section[%d].Line = %d, want %d", i, s.Line, wantLines[i])
		}
	}
}

func TestParseReader(t *testing.T) {
	doc, err := ParseReader("test.md", strings.NewReader("# Hello\n"))
	if err != nil {
		t.Fatalf("ParseReader() error = %v", err)
	}
	if doc.Title != "Hello" {
		t.Errorf("Title = %q, want Hello", doc.Title)
	}
}
