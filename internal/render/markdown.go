package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/alexanderramin/redtally/internal/report"
)

// Markdown writes the report as a markdown document with one pipe table
// per project and per issue.
func Markdown(w io.Writer, r *report.Report) error {
	b := bufio.NewWriter(w)
	m := r.Messages

	fmt.Fprintf(b, "# %s\n\n", m.Title)
	fmt.Fprintf(b, "%s\n\n", r.PeriodLine())

	if r.Empty() {
		fmt.Fprintf(b, "_%s_\n", m.NoData)
		return b.Flush()
	}

	if len(r.Projects) > 0 {
		fmt.Fprintf(b, "## %s\n\n", m.ProjectSpentTime)
		for _, p := range r.Projects {
			writeMarkdownTable(b, p.Table)
		}
	}

	if len(r.Issues) > 0 {
		fmt.Fprintf(b, "## %s\n\n", m.RootIssuesSpent)
		for _, p := range r.Issues {
			fmt.Fprintf(b, "### %s\n\n", escapeMarkdown(m.ProjectHeading(p.Name)))
			for _, it := range p.Issues {
				fmt.Fprintf(b, "#### %s%s\n\n", strings.Repeat("› ", it.Level), escapeMarkdown(it.Subject))
				writeMarkdownTable(b, it.Table)
			}
		}
	}

	return b.Flush()
}

func writeMarkdownTable(b *bufio.Writer, t report.Table) {
	header := make([]string, len(t.Header))
	for i, h := range t.Header {
		header[i] = escapeMarkdown(h)
	}
	fmt.Fprintf(b, "| %s |\n", strings.Join(header, " | "))

	align := make([]string, len(t.Header))
	for i := range align {
		align[i] = "---:"
	}
	if len(align) > 0 {
		align[0] = "---"
	}
	fmt.Fprintf(b, "| %s |\n", strings.Join(align, " | "))

	for _, row := range t.Rows {
		cells := row.Cells()
		cells[0] = escapeMarkdown(cells[0])
		fmt.Fprintf(b, "| %s |\n", strings.Join(cells, " | "))
	}

	total := t.Total.Cells()
	for i, c := range total {
		total[i] = "**" + escapeMarkdown(c) + "**"
	}
	fmt.Fprintf(b, "| %s |\n\n", strings.Join(total, " | "))
}

var markdownEscaper = strings.NewReplacer(`|`, `\|`, `*`, `\*`, `_`, `\_`)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
