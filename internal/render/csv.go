package render

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/alexanderramin/redtally/internal/report"
)

// CSV section markers.
const (
	SectionProject = "project"
	SectionIssue   = "issue"
)

// CSV writes every table row, totals included, as one flat record:
// section, project, issue, subject, level, label, then one column per
// reported activity.
func CSV(w io.Writer, r *report.Report) error {
	cw := csv.NewWriter(w)

	header := append([]string{"section", "project", "issue", "subject", "level", "label"}, r.Activities...)
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, p := range r.Projects {
		if err := writeCSVTable(cw, []string{SectionProject, p.Name, "", "", ""}, p.Table); err != nil {
			return err
		}
	}
	for _, p := range r.Issues {
		for _, it := range p.Issues {
			prefix := []string{SectionIssue, p.Name, strconv.Itoa(it.IssueID), it.Subject, strconv.Itoa(it.Level)}
			if err := writeCSVTable(cw, prefix, it.Table); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func writeCSVTable(cw *csv.Writer, prefix []string, t report.Table) error {
	rows := append(append([]report.Row(nil), t.Rows...), t.Total)
	for _, row := range rows {
		record := append(append([]string(nil), prefix...), row.Cells()...)
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	return nil
}
