package formatter

import (
	"strings"

	"github.com/alexanderramin/redtally/internal/report"
	"github.com/charmbracelet/lipgloss"
)

const colGap = 2

// RenderTable renders a simple aligned table with a header separator line.
// The first column is left-aligned, the rest are right-aligned.
func RenderTable(headers []string, rows [][]string) string {
	return RenderTableWithFooter(headers, rows, nil)
}

// RenderTableWithFooter renders like RenderTable and, when footer is not
// empty, closes the table with a second separator and the footer row in
// the totals style. Columns are padded to the widest visible cell across
// headers, rows and footer.
func RenderTableWithFooter(headers []string, rows [][]string, footer []string) string {
	if len(headers) == 0 {
		return ""
	}

	cols := len(headers)

	// Measure visible width so ANSI sequences don't skew alignment.
	widths := make([]int, cols)
	measure := func(cells []string) {
		for i := 0; i < cols && i < len(cells); i++ {
			if w := lipgloss.Width(cells[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(headers)
	for _, row := range rows {
		measure(row)
	}
	measure(footer)

	var b strings.Builder
	writeRow := func(cells []string, style func(...string) string) {
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			pad := widths[i] - lipgloss.Width(cell)
			if pad < 0 {
				pad = 0
			}
			styled := cell
			if style != nil {
				styled = style(cell)
			}
			if i == 0 {
				b.WriteString(styled)
				if i < cols-1 {
					b.WriteString(strings.Repeat(" ", pad+colGap))
				}
				continue
			}
			b.WriteString(strings.Repeat(" ", pad))
			b.WriteString(styled)
			if i < cols-1 {
				b.WriteString(strings.Repeat(" ", colGap))
			}
		}
		b.WriteString("\n")
	}
	writeSeparator := func() {
		for i, w := range widths {
			b.WriteString(StyleDim.Render(strings.Repeat("─", w)))
			if i < cols-1 {
				b.WriteString(strings.Repeat(" ", colGap))
			}
		}
		b.WriteString("\n")
	}

	writeRow(headers, StyleHeader.Render)
	writeSeparator()
	for _, row := range rows {
		writeRow(row, nil)
	}
	if len(footer) > 0 {
		writeSeparator()
		writeRow(footer, StyleTotal.Render)
	}

	return b.String()
}

// RenderHoursTable renders a projected report table, dimming empty cells
// and setting the totals row apart.
func RenderHoursTable(t report.Table) string {
	rows := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		cells := r.Cells()
		for i := 1; i < len(cells); i++ {
			cells[i] = Hours(cells[i])
		}
		rows = append(rows, cells)
	}
	return RenderTableWithFooter(t.Header, rows, t.Total.Cells())
}
