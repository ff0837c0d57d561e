package quire

import (
	"strings"

	"github.com/tsawler/quire/render"
)

// Warning is a non-fatal issue found while binding or rendering. It is
// the render package's warning type, re-exported so callers of the
// fluent API need only this package.
type Warning = render.Warning

// FormatWarnings formats warnings one per line for logging.
//
// Example:
//
//	html, warnings, err := quire.Collect("a.md").HTML()
//	if len(warnings) > 0 {
//	    log.Println("Warnings:\n" + quire.FormatWarnings(warnings))
//	}
func FormatWarnings(warnings []Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}
