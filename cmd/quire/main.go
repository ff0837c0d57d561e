// Command quire binds heading-structured chapter files into a single
// reference document.
package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const version = "0.3.0"

var (
	// Global flags
	verbose bool

	// Shared by build, check and outline
	manifestPath string
	strict       bool

	// Build flags
	formatName string
	outPath    string
	withTOC    bool
	bookTitle  string
	highlight  string
	watchMode  bool

	// Outline flags
	exportName string
	exportText bool

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "quire",
	Short: "quire - bind chapter files into one reference document",
	Long: `quire collects heading-structured chapters (Markdown or HTML) into a
single navigable artifact: one HTML page, one Markdown file, or plain
text.

Chapters are parsed into a section tree, every heading gets a stable
anchor slug, and cross-references between chapters are resolved at
build time. Slug collisions and malformed chapters fail the build;
nothing is written on error.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		if isatty.IsTerminal(os.Stderr.Fd()) {
			config.Encoding = "console"
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// buildCmd renders the bound artifact
var buildCmd = &cobra.Command{
	Use:   "build [chapters...]",
	Short: "Bind chapters and write the rendered artifact",
	Long: `Runs the full pipeline: load chapters, parse, index headings, resolve
cross-references and write the rendered output.

Chapters come either from the command line or from a YAML manifest:

  quire build chapters/*.md --format html --out book.html
  quire build --manifest book.yaml
  quire build --manifest book.yaml --watch

Explicit flags override manifest settings. With --watch, quire stays
running and rebuilds whenever a chapter or the manifest changes; a
failing rebuild is reported and watching continues.`,
	RunE: runBuild,
}

// checkCmd validates without writing anything
var checkCmd = &cobra.Command{
	Use:   "check [chapters...]",
	Short: "Validate chapters without writing output",
	Long: `Loads, parses and indexes the collection, then reports what a build
would reject: slug collisions, malformed chapters, unresolved internal
cross-references.

Exits non-zero on any error, or with --strict on any warning.`,
	RunE: runCheck,
}

// outlineCmd prints the collection structure
var outlineCmd = &cobra.Command{
	Use:   "outline [chapters...]",
	Short: "Print the heading outline with anchor slugs",
	Long: `Prints the collection's table of contents as an indented tree, one
heading per line with its anchor slug.

With --export the outline is emitted machine-readable instead (json,
jsonl or csv); --text additionally includes each section's plain text,
for feeding a search index.`,
	RunE: runOutline,
}

// previewCmd renders one chapter to the terminal
var previewCmd = &cobra.Command{
	Use:   "preview [chapter]",
	Short: "Render a single chapter to the terminal",
	Args:  cobra.ExactArgs(1),
	RunE:  runPreview,
}

// versionCmd prints the version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the quire version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("quire %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	buildCmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "Book manifest (YAML)")
	buildCmd.Flags().StringVarP(&formatName, "format", "f", "", "Output format: html, md or text")
	buildCmd.Flags().StringVarP(&outPath, "out", "o", "", "Output path")
	buildCmd.Flags().BoolVar(&withTOC, "toc", false, "Include a table of contents")
	buildCmd.Flags().StringVar(&bookTitle, "title", "", "Collection title")
	buildCmd.Flags().StringVar(&highlight, "highlight", "", "Chroma style for HTML code blocks")
	buildCmd.Flags().BoolVar(&strict, "strict", false, "Treat unresolved cross-references as errors")
	buildCmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "Rebuild when chapter files change")

	checkCmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "Book manifest (YAML)")
	checkCmd.Flags().BoolVar(&strict, "strict", false, "Fail on warnings, not just errors")

	outlineCmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "Book manifest (YAML)")
	outlineCmd.Flags().StringVar(&exportName, "export", "", "Machine-readable output: json, jsonl or csv")
	outlineCmd.Flags().BoolVar(&exportText, "text", false, "Include section text in the export")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(outlineCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "quire: %v\n", err)
		os.Exit(1)
	}
}
