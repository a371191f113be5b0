// Package report turns aggregation stores into presentation-ready tables
// and groups them into a report document.
package report

import (
	"math"
	"strconv"
)

// Row is one labeled line of hours, one value per reported activity.
type Row struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

// Table is a header, one row per user and a trailing totals row.
type Table struct {
	Header []string `json:"header"`
	Rows   []Row    `json:"rows"`
	Total  Row      `json:"total"`
}

// Label returns the table's first header cell.
func (t Table) Label() string {
	if len(t.Header) == 0 {
		return ""
	}
	return t.Header[0]
}

// Activities returns the activity columns.
func (t Table) Activities() []string {
	if len(t.Header) < 2 {
		return nil
	}
	return t.Header[1:]
}

// Records flattens the table into string cells, header first and totals
// last, for writers that only deal in text.
func (t Table) Records() [][]string {
	out := make([][]string, 0, len(t.Rows)+2)
	out = append(out, append([]string(nil), t.Header...))
	for _, r := range t.Rows {
		out = append(out, r.Cells())
	}
	out = append(out, t.Total.Cells())
	return out
}

// Cells returns the label followed by formatted values.
func (r Row) Cells() []string {
	cells := make([]string, 0, len(r.Values)+1)
	cells = append(cells, r.Label)
	for _, v := range r.Values {
		cells = append(cells, FormatHours(v))
	}
	return cells
}

// FormatHours renders hours with at most three decimals and no trailing
// zeros: 2.5, 1.25, 0.333, 3.
func FormatHours(h float64) string {
	return strconv.FormatFloat(Round(h), 'f', -1, 64)
}

// Round rounds hours to three decimal places.
func Round(h float64) float64 {
	return math.Round(h*1000) / 1000
}
