package formatter

import (
	"strings"

	"github.com/alexanderramin/redtally/internal/report"
)

// FormatReport renders a full report for the terminal: a title box with
// the period, then the project and root issue sections.
func FormatReport(r *report.Report) string {
	return FormatReportHeader(r) + "\n\n" + FormatReportBody(r)
}

// FormatReportHeader renders the title box.
func FormatReportHeader(r *report.Report) string {
	lines := []string{r.PeriodLine()}
	if r.RunID != "" {
		lines = append(lines, Dim("run ")+ShortID(r.RunID))
	}
	return TitleBox(r.Messages.Title, lines...)
}

// FormatReportBody renders the report sections without the title box.
func FormatReportBody(r *report.Report) string {
	var b strings.Builder

	if r.Empty() {
		b.WriteString(Dim(r.Messages.NoData))
		b.WriteString("\n")
		return b.String()
	}

	if len(r.Projects) > 0 {
		b.WriteString(Header(r.Messages.ProjectSpentTime))
		b.WriteString("\n\n")
		for _, p := range r.Projects {
			b.WriteString(RenderHoursTable(p.Table))
			b.WriteString("\n")
		}
	}

	if len(r.Issues) > 0 {
		b.WriteString(Header(r.Messages.RootIssuesSpent))
		b.WriteString("\n\n")
		for _, p := range r.Issues {
			b.WriteString(Bold(r.Messages.ProjectHeading(p.Name)))
			b.WriteString("\n\n")
			for _, it := range p.Issues {
				block := StyleYellow.Render(it.Subject) + "\n" + RenderHoursTable(it.Table)
				b.WriteString(Indent(block, 2*it.Level))
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}
