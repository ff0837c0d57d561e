package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tsawler/quire/index"
)

// resetFlags returns the package-level flag state to its defaults so
// tests can call the run functions directly.
func resetFlags() {
	verbose = false
	manifestPath = ""
	strict = false
	formatName = ""
	outPath = ""
	withTOC = false
	bookTitle = ""
	highlight = ""
	watchMode = false
	exportName = ""
	exportText = false
	logger = zap.NewNop()
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestRunBuild(t *testing.T) {
	resetFlags()
	dir := t.TempDir()
	a := writeFile(t, dir, "01.md", "# Security\n\nSee [hashing](#password-hashing).\n")
	b := writeFile(t, dir, "02.md", "# Password Hashing\n\nUse a KDF.\n")
	outPath = filepath.Join(dir, "book.html")

	output := captureOutput(t, func() {
		if err := runBuild(&cobra.Command{}, []string{a, b}); err != nil {
			t.Fatalf("runBuild failed: %v", err)
		}
	})

	if !strings.Contains(output, "wrote ") {
		t.Fatalf("expected build confirmation, got: %s", output)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("artifact missing: %v", err)
	}
	if !strings.Contains(string(data), `<a href="#password-hashing">hashing</a>`) {
		t.Fatal("artifact should contain the resolved cross-reference")
	}
}

func TestRunBuild_Manifest(t *testing.T) {
	resetFlags()
	dir := t.TempDir()
	writeFile(t, dir, "intro.md", "# Intro\n\nWelcome.\n")
	out := filepath.Join(dir, "guide.html")
	manifestPath = writeFile(t, dir, "book.yaml",
		"title: Guide\nchapters:\n  - intro.md\noutput:\n  path: "+out+"\n")

	captureOutput(t, func() {
		if err := runBuild(&cobra.Command{}, nil); err != nil {
			t.Fatalf("runBuild failed: %v", err)
		}
	})

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("artifact missing: %v", err)
	}
	if !strings.Contains(string(data), "<title>Guide</title>") {
		t.Fatal("artifact should carry the manifest title")
	}
}

func TestRunBuild_NoChapters(t *testing.T) {
	resetFlags()
	if err := runBuild(&cobra.Command{}, nil); err == nil {
		t.Fatal("expected error without chapters or manifest")
	}
}

func TestRunBuild_ManifestExclusive(t *testing.T) {
	resetFlags()
	manifestPath = "book.yaml"
	err := runBuild(&cobra.Command{}, []string{"ch.md"})
	if err == nil || !strings.Contains(err.Error(), "mutually exclusive") {
		t.Fatalf("expected exclusivity error, got: %v", err)
	}
}

func TestRunBuild_DuplicateSlugWritesNothing(t *testing.T) {
	resetFlags()
	dir := t.TempDir()
	a := writeFile(t, dir, "a.md", "# Security\n\nFirst.\n")
	b := writeFile(t, dir, "b.md", "# Security\n\nSecond.\n")
	outPath = filepath.Join(dir, "book.html")

	err := runBuild(&cobra.Command{}, []string{a, b})
	if !errors.Is(err, index.ErrDuplicateSlug) {
		t.Fatalf("expected ErrDuplicateSlug, got: %v", err)
	}
	if _, statErr := os.Stat(outPath); !os.IsNotExist(statErr) {
		t.Fatal("no artifact may exist after a failed build")
	}
}

func TestRunCheck(t *testing.T) {
	resetFlags()
	dir := t.TempDir()
	path := writeFile(t, dir, "guide.md", "# Guide\n\nSee [missing](#no-such).\n")

	output := captureOutput(t, func() {
		if err := runCheck(&cobra.Command{}, []string{path}); err != nil {
			t.Fatalf("runCheck failed: %v", err)
		}
	})
	if !strings.Contains(output, "no section matches") {
		t.Fatalf("expected unresolved-ref warning, got: %s", output)
	}
	if !strings.Contains(output, "1 warning(s)") {
		t.Fatalf("expected warning count, got: %s", output)
	}

	// Same input fails under --strict.
	strict = true
	if err := runCheck(&cobra.Command{}, []string{path}); err == nil {
		t.Fatal("expected error under strict with warnings present")
	}
}

func TestRunCheck_Clean(t *testing.T) {
	resetFlags()
	dir := t.TempDir()
	path := writeFile(t, dir, "guide.md", "# Guide\n\nAll good.\n")

	output := captureOutput(t, func() {
		if err := runCheck(&cobra.Command{}, []string{path}); err != nil {
			t.Fatalf("runCheck failed: %v", err)
		}
	})
	if !strings.Contains(output, "ok: 1 chapters, 1 sections") {
		t.Fatalf("expected clean summary, got: %s", output)
	}
}

func TestRunOutline(t *testing.T) {
	resetFlags()
	dir := t.TempDir()
	path := writeFile(t, dir, "ch.md", "# Security\n\nIntro.\n\n## Password Hashing\n\nBody.\n")

	output := captureOutput(t, func() {
		if err := runOutline(&cobra.Command{}, []string{path}); err != nil {
			t.Fatalf("runOutline failed: %v", err)
		}
	})

	if !strings.Contains(output, "Security  #security\n") {
		t.Fatalf("expected top-level entry, got: %s", output)
	}
	if !strings.Contains(output, "  Password Hashing  #password-hashing\n") {
		t.Fatalf("expected indented nested entry, got: %s", output)
	}
}

func TestRunOutline_Export(t *testing.T) {
	resetFlags()
	dir := t.TempDir()
	path := writeFile(t, dir, "ch.md", "# Security\n\nBody.\n")
	exportName = "json"

	output := captureOutput(t, func() {
		if err := runOutline(&cobra.Command{}, []string{path}); err != nil {
			t.Fatalf("runOutline failed: %v", err)
		}
	})
	if !strings.Contains(output, `"slug": "security"`) {
		t.Fatalf("expected JSON export, got: %s", output)
	}

	exportName = "bogus"
	if err := runOutline(&cobra.Command{}, []string{path}); err == nil {
		t.Fatal("expected error for unknown export format")
	}
}

func TestRunPreview(t *testing.T) {
	resetFlags()
	dir := t.TempDir()
	path := writeFile(t, dir, "ch.md", "# Security\n\nNever trust input.\n")

	output := captureOutput(t, func() {
		if err := runPreview(&cobra.Command{}, []string{path}); err != nil {
			t.Fatalf("runPreview failed: %v", err)
		}
	})
	if !strings.Contains(output, "Security") {
		t.Fatalf("expected rendered heading, got: %s", output)
	}
}

func TestVersionCmd(t *testing.T) {
	output := captureOutput(t, func() {
		versionCmd.Run(versionCmd, nil)
	})
	if !strings.Contains(output, "quire "+version) {
		t.Fatalf("expected version string, got: %s", output)
	}
}

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origOut := os.Stdout
	origErr := os.Stderr
	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout = wOut
	os.Stderr = wErr

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, rOut)
		_, _ = io.Copy(&buf, rErr)
		done <- buf.String()
	}()

	fn()

	_ = wOut.Close()
	_ = wErr.Close()
	os.Stdout = origOut
	os.Stderr = origErr
	return <-done
}
