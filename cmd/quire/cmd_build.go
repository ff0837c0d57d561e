package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tsawler/quire"
	"github.com/tsawler/quire/manifest"
	"github.com/tsawler/quire/render"
	"github.com/tsawler/quire/watch"
)

// collectionFromFlags assembles the Binder plus the output format, the
// output path and the list of files a --watch run should monitor.
// Chapters come from the argument list or from --manifest, never both;
// explicit flags win over manifest settings.
func collectionFromFlags(cmd *cobra.Command, args []string) (*quire.Binder, render.Format, string, []string, error) {
	if manifestPath == "" {
		return collectionFromArgs(cmd, args)
	}
	if len(args) > 0 {
		return nil, 0, "", nil, fmt.Errorf("chapter arguments and --manifest are mutually exclusive")
	}

	m, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, 0, "", nil, err
	}

	b := quire.Collect(m.Chapters...)
	if m.Title != "" {
		b = b.Title(m.Title)
	}
	if bookTitle != "" {
		b = b.Title(bookTitle)
	}

	toc := m.Output.TOC
	if cmd.Flags().Changed("toc") {
		toc = withTOC
	}
	if toc {
		b = b.WithTOC()
	}

	style := m.Output.Highlight
	if cmd.Flags().Changed("highlight") {
		style = highlight
	}
	if style != "" {
		b = b.Highlight(style)
	}

	format := m.Format()
	if cmd.Flags().Changed("format") {
		format, err = render.ParseFormat(formatName)
		if err != nil {
			return nil, 0, "", nil, err
		}
	}

	out := m.OutputPath()
	if cmd.Flags().Changed("out") {
		out = outPath
	}

	watched := append(append([]string(nil), m.Chapters...), manifestPath)
	return b, format, out, watched, nil
}

func collectionFromArgs(cmd *cobra.Command, args []string) (*quire.Binder, render.Format, string, []string, error) {
	if len(args) == 0 {
		return nil, 0, "", nil, fmt.Errorf("no chapters: pass chapter files or --manifest")
	}

	b := quire.Collect(args...)
	if bookTitle != "" {
		b = b.Title(bookTitle)
	}
	if withTOC {
		b = b.WithTOC()
	}

	style := highlight
	if style == "" {
		style = "github"
	}
	b = b.Highlight(style)

	format := render.FormatHTML
	if formatName != "" {
		var err error
		format, err = render.ParseFormat(formatName)
		if err != nil {
			return nil, 0, "", nil, err
		}
	}

	out := outPath
	if out == "" {
		out = "book" + format.FileExtension()
	}

	return b, format, out, args, nil
}

// runBuild renders the artifact, optionally staying resident to rebuild
// on changes.
func runBuild(cmd *cobra.Command, args []string) error {
	// Validate flags and resolve the watch list up front.
	_, _, _, watched, err := collectionFromFlags(cmd, args)
	if err != nil {
		return err
	}

	// Each build starts from a fresh Binder so chapter and manifest
	// edits are picked up.
	buildOnce := func() error {
		b, format, out, _, err := collectionFromFlags(cmd, args)
		if err != nil {
			return err
		}
		if strict {
			b = b.StrictRefs()
		}

		warnings, err := b.WriteFile(format, out)
		if len(warnings) > 0 {
			fmt.Fprintln(os.Stderr, quire.FormatWarnings(warnings))
		}
		if err != nil {
			return err
		}

		stats, _ := b.Stats()
		fmt.Printf("wrote %s (%d chapters, %d sections)\n", out, stats.Chapters, stats.Sections)
		return nil
	}

	if !watchMode {
		return buildOnce()
	}

	if err := buildOnce(); err != nil {
		// Stay resident; the next save may fix it.
		logger.Warn("initial build failed", zap.Error(err))
	}

	w, err := watch.New(watched, buildOnce)
	if err != nil {
		return err
	}
	w.Logger = logger

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	w.Start(ctx)
	defer w.Stop()

	fmt.Printf("watching %d files; Ctrl-C to stop\n", len(watched))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	fmt.Println()
	return nil
}
