package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tsawler/quire"
	"github.com/tsawler/quire/index"
)

// runCheck validates the collection without writing anything.
func runCheck(cmd *cobra.Command, args []string) error {
	b, _, _, _, err := collectionFromFlags(cmd, args)
	if err != nil {
		return err
	}

	warnings, err := b.Check()
	if err != nil {
		return err
	}

	if len(warnings) > 0 {
		fmt.Fprintln(os.Stderr, quire.FormatWarnings(warnings))
		if strict {
			return fmt.Errorf("%d warning(s)", len(warnings))
		}
	}

	stats, _ := b.Stats()
	label := "ok"
	if len(warnings) > 0 {
		label = fmt.Sprintf("%d warning(s)", len(warnings))
	}
	fmt.Printf("%s: %d chapters, %d sections, %d links\n", label, stats.Chapters, stats.Sections, stats.Links)
	return nil
}

// runOutline prints the heading tree, or a machine-readable index dump
// with --export.
func runOutline(cmd *cobra.Command, args []string) error {
	b, _, _, _, err := collectionFromFlags(cmd, args)
	if err != nil {
		return err
	}

	if exportName != "" {
		return exportOutline(b)
	}

	outline, err := b.Outline()
	if err != nil {
		return err
	}
	for _, e := range outline {
		indent := ""
		if e.Level > 1 {
			indent = strings.Repeat("  ", e.Level-1)
		}
		fmt.Printf("%s%s  #%s\n", indent, e.Title, e.Slug)
	}
	return nil
}

func exportOutline(b *quire.Binder) error {
	idx, err := b.Index()
	if err != nil {
		return err
	}

	config := index.DefaultExportConfig()
	config.IncludeText = exportText
	switch strings.ToLower(exportName) {
	case "json":
		config.PrettyPrint = true
	case "jsonl":
		config.Format = index.ExportFormatJSONL
	case "csv":
		config.Format = index.ExportFormatCSV
	default:
		return fmt.Errorf("unknown export format %q (want json, jsonl or csv)", exportName)
	}

	return index.NewExporterWithConfig(config).Export(idx, os.Stdout)
}
