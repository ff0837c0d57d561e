package mddoc

import (
	"testing"

	"github.com/tsawler/quire/model"
)

func TestScanInline(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		label  string
		target string
		kind   model.LinkKind
	}{
		{"inline", "see [hashing](#password-hashing) here", "hashing", "#password-hashing", model.LinkInline},
		{"bare slug target", "see [hashing](password-hashing)", "hashing", "password-hashing", model.LinkInline},
		{"external", "[PHP](https://www.php.net)", "PHP", "https://www.php.net", model.LinkInline},
		{"with title", `[docs](https://php.net "The Docs")`, "docs", "https://php.net", model.LinkInline},
		{"angle target", "[docs](<https://php.net/a b>)", "docs", "https://php.net/a b", model.LinkInline},
		{"image", "![diagram](img/flow.png)", "diagram", "img/flow.png", model.LinkImage},
		{"reference", "see [docs][php] here", "docs", "php", model.LinkReference},
		{"collapsed reference", "see [php][] here", "php", "php", model.LinkReference},
		{"autolink", "visit <https://php.net> now", "https://php.net", "https://php.net", model.LinkAuto},
		{"mailto autolink", "<mailto:team@example.com>", "mailto:team@example.com", "mailto:team@example.com", model.LinkAuto},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			links := ScanInline(tt.line)
			if len(links) != 1 {
				t.Fatalf("ScanInline(%q) found %d links, want 1", tt.line, len(links))
			}
			l := links[0]
			if l.Label != tt.label {
				t.Errorf("Label = %q, want %q", l.Label, tt.label)
			}
			if l.Target != tt.target {
				t.Errorf("Target = %q, want %q", l.Target, tt.target)
			}
			if l.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", l.Kind, tt.kind)
			}
		})
	}
}

func TestScanInline_NoLinks(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"plain text", "nothing to see here"},
		{"code span", "use `[]byte` for raw bytes"},
		{"link inside code span", "call `render([x](y))` directly"},
		{"escaped bracket", `literal \[not a link](x)`},
		{"unclosed bracket", "[dangling"},
		{"bracket without target", "array [0] notation"},
		{"html tag is not autolink", "an <em>emphasis</em> tag"},
		{"empty line", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if links := ScanInline(tt.line); len(links) != 0 {
				t.Errorf("ScanInline(%q) = %v, want none", tt.line, links)
			}
		})
	}
}

func TestScanInline_MultipleLinks(t *testing.T) {
	line := "see [a](#a) and [b](#b), or visit <https://php.net>"
	links := ScanInline(line)

	if len(links) != 3 {
		t.Fatalf("ScanInline() found %d links, want 3", len(links))
	}
	if links[0].Target != "#a" || links[1].Target != "#b" || links[2].Target != "https://php.net" {
		t.Errorf("targets = %q, %q, %q", links[0].Target, links[1].Target, links[2].Target)
	}
}

func TestScanInline_Offsets(t *testing.T) {
	line := "read [the guide](#security) today"
	links := ScanInline(line)

	if len(links) != 1 {
		t.Fatalf("ScanInline() found %d links, want 1", len(links))
	}
	l := links[0]
	if got := line[l.Start:l.End]; got != "[the guide](#security)" {
		t.Errorf("line[Start:End] = %q", got)
	}
	if got := line[l.TargetStart:l.TargetEnd]; got != l.Target {
		t.Errorf("line[TargetStart:TargetEnd] = %q, want %q", got, l.Target)
	}
}

func TestScanInline_CodeSpanMasksOnlyItself(t *testing.T) {
	line := "`code` then [real](#target)"
	links := ScanInline(line)

	if len(links) != 1 || links[0].Target != "#target" {
		t.Errorf("ScanInline() = %v, want the link after the code span", links)
	}
}

func TestScanInline_ImageReferenceStaysReference(t *testing.T) {
	// The bang stays literal; the bracket pair is scanned as a
	// reference link so the definition can still resolve.
	line := "![alt][imgref]"
	links := ScanInline(line)

	if len(links) != 1 {
		t.Fatalf("ScanInline() found %d links, want 1", len(links))
	}
	if links[0].Kind != model.LinkReference || links[0].Target != "imgref" {
		t.Errorf("link = %+v, want reference to imgref", links[0])
	}
}

func TestExtractLinks_LineNumbers(t *testing.T) {
	links := ExtractLinks("see [a](#a)", 42)
	if len(links) != 1 {
		t.Fatalf("ExtractLinks() = %d links, want 1", len(links))
	}
	if links[0].Line != 42 {
		t.Errorf("Line = %d, want 42", links[0].Line)
	}
}

func TestHeadingAttr(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		title string
		id    string
	}{
		{"with id", "Password Hashing {#pw-hash}", "Password Hashing", "pw-hash"},
		{"no id", "Password Hashing", "Password Hashing", ""},
		{"id only", "{#anchor}", "", "anchor"},
		{"brace not at end", "Braces {#x} in middle", "Braces {#x} in middle", ""},
		{"empty id not matched", "Title {#}", "Title {#}", ""},
		{"underscore and dots", "API {#v2.1_spec}", "API", "v2.1_spec"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, id := headingAttr(tt.text)
			if title != tt.title || id != tt.id {
				t.Errorf("headingAttr(%q) = %q, %q, want %q, %q", tt.text, title, id, tt.title, tt.id)
			}
		})
	}
}
