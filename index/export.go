package index

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
)

// ExportFormat defines the available index export formats
type ExportFormat int

const (
	// ExportFormatJSON exports as a JSON array
	ExportFormatJSON ExportFormat = iota
	// ExportFormatJSONL exports as JSON Lines (one JSON object per line)
	ExportFormatJSONL
	// ExportFormatCSV exports as comma-separated values
	ExportFormatCSV
)

// String returns a human-readable representation of the export format
func (ef ExportFormat) String() string {
	switch ef {
	case ExportFormatJSON:
		return "json"
	case ExportFormatJSONL:
		return "jsonl"
	case ExportFormatCSV:
		return "csv"
	default:
		return "unknown"
	}
}

// FileExtension returns the typical file extension for this format
func (ef ExportFormat) FileExtension() string {
	switch ef {
	case ExportFormatJSON:
		return ".json"
	case ExportFormatJSONL:
		return ".jsonl"
	case ExportFormatCSV:
		return ".csv"
	default:
		return ".txt"
	}
}

// ExportConfig holds configuration options for index export
type ExportConfig struct {
	// Format specifies the export format
	Format ExportFormat

	// IncludeText includes the section plain text, for client-side
	// search tooling
	IncludeText bool

	// PrettyPrint enables indentation for JSON output
	PrettyPrint bool

	// IncludeHeader includes a header row in CSV export
	IncludeHeader bool
}

// DefaultExportConfig returns sensible defaults for index export
func DefaultExportConfig() ExportConfig {
	return ExportConfig{
		Format:        ExportFormatJSON,
		IncludeText:   false,
		PrettyPrint:   false,
		IncludeHeader: true,
	}
}

// SearchExportConfig returns config for search-index ingestion: JSON
// Lines with section text included.
func SearchExportConfig() ExportConfig {
	config := DefaultExportConfig()
	config.Format = ExportFormatJSONL
	config.IncludeText = true
	return config
}

// Exporter writes an index in a machine-readable format. Entries are
// emitted in collection order, so identical input always produces
// identical output.
type Exporter struct {
	config ExportConfig
}

// NewExporter creates an exporter with default configuration
func NewExporter() *Exporter {
	return &Exporter{config: DefaultExportConfig()}
}

// NewExporterWithConfig creates an exporter with custom configuration
func NewExporterWithConfig(config ExportConfig) *Exporter {
	return &Exporter{config: config}
}

// ExportedEntry represents an index entry prepared for export
type ExportedEntry struct {
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Level   int    `json:"level"`
	Chapter int    `json:"chapter"`
	Path    string `json:"path"`
	Text    string `json:"text,omitempty"`
}

// Export writes the index to w in the configured format
func (e *Exporter) Export(idx *Index, w io.Writer) error {
	switch e.config.Format {
	case ExportFormatJSON:
		return e.exportJSON(idx, w)
	case ExportFormatJSONL:
		return e.exportJSONL(idx, w)
	case ExportFormatCSV:
		return e.exportCSV(idx, w)
	default:
		return fmt.Errorf("unsupported export format: %v", e.config.Format)
	}
}

// ExportToFile writes the index to a file
func (e *Exporter) ExportToFile(idx *Index, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	return e.Export(idx, f)
}

// ExportToString returns the exported index as a string
func (e *Exporter) ExportToString(idx *Index) (string, error) {
	var buf bytes.Buffer
	if err := e.Export(idx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (e *Exporter) record(entry *Entry) ExportedEntry {
	rec := ExportedEntry{
		Slug:    entry.Slug,
		Title:   entry.Title,
		Level:   entry.Level,
		Chapter: entry.Chapter,
		Path:    entry.Path,
	}
	if e.config.IncludeText && entry.Section != nil {
		rec.Text = entry.Section.Text()
	}
	return rec
}

func (e *Exporter) exportJSON(idx *Index, w io.Writer) error {
	records := make([]ExportedEntry, 0, idx.Len())
	for _, entry := range idx.Entries() {
		records = append(records, e.record(entry))
	}

	enc := json.NewEncoder(w)
	if e.config.PrettyPrint {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encoding index: %w", err)
	}
	return nil
}

func (e *Exporter) exportJSONL(idx *Index, w io.Writer) error {
	enc := json.NewEncoder(w)
	for i, entry := range idx.Entries() {
		if err := enc.Encode(e.record(entry)); err != nil {
			return fmt.Errorf("encoding entry %d: %w", i, err)
		}
	}
	return nil
}

func (e *Exporter) exportCSV(idx *Index, w io.Writer) error {
	cw := csv.NewWriter(w)

	if e.config.IncludeHeader {
		header := []string{"slug", "title", "level", "chapter", "path"}
		if e.config.IncludeText {
			header = append(header, "text")
		}
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("writing CSV header: %w", err)
		}
	}

	for i, entry := range idx.Entries() {
		rec := e.record(entry)
		row := []string{rec.Slug, rec.Title, strconv.Itoa(rec.Level), strconv.Itoa(rec.Chapter), rec.Path}
		if e.config.IncludeText {
			row = append(row, rec.Text)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
