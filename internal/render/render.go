// Package render writes reports in the file formats: markdown, csv and
// json. Terminal text lives with the CLI formatter.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/alexanderramin/redtally/internal/domain"
	"github.com/alexanderramin/redtally/internal/report"
)

// Writer writes a report to w.
type Writer func(w io.Writer, r *report.Report) error

// Format names accepted by ForFormat.
const (
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
	FormatJSON     = "json"
)

// ForFormat returns the writer for a file format.
func ForFormat(format string) (Writer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatMarkdown, "md":
		return Markdown, nil
	case FormatCSV:
		return CSV, nil
	case FormatJSON:
		return JSON, nil
	default:
		return nil, fmt.Errorf("%w: no file writer for format %q", domain.ErrConfiguration, format)
	}
}
