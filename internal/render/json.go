package render

import (
	"encoding/json"
	"io"

	"github.com/alexanderramin/redtally/internal/report"
)

// JSON writes the report as an indented JSON document.
func JSON(w io.Writer, r *report.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
