package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/tsawler/quire"
)

// runPreview renders one chapter to the terminal. Cross-references into
// other chapters are reported as warnings since only this chapter is
// bound.
func runPreview(cmd *cobra.Command, args []string) error {
	md, warnings, err := quire.Collect(args[0]).Markdown()
	if err != nil {
		return err
	}
	if len(warnings) > 0 {
		fmt.Fprintln(os.Stderr, quire.FormatWarnings(warnings))
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return fmt.Errorf("initializing terminal renderer: %w", err)
	}

	out, err := renderer.Render(md)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", args[0], err)
	}
	fmt.Print(out)
	return nil
}
