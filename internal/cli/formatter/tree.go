package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TreeRow is one issue line of a rendered hierarchy. Rows are given in
// depth-first order.
type TreeRow struct {
	Depth   int
	Last    bool // last child of its parent
	IssueID int  // 0 hides the "#id" tag
	Subject string
	Muted   bool
	Badge   string
}

const (
	guideTee    = "├─ "
	guideElbow  = "└─ "
	guideSpine  = "│  "
	guideBlank  = "   "
	badgeMargin = 2
)

// RenderTree draws rows with box-drawing guides. A guide column stays open
// below an ancestor only while that ancestor has later siblings. Badges
// line up in one column after the widest subject.
func RenderTree(rows []TreeRow) string {
	if len(rows) == 0 {
		return ""
	}

	// open[d] reports whether the most recent row at depth d has siblings
	// still to come.
	var open []bool
	left := make([]string, len(rows))
	width := 0

	for i, row := range rows {
		for len(open) <= row.Depth {
			open = append(open, false)
		}
		open[row.Depth] = !row.Last
		open = open[:row.Depth+1]

		var guide strings.Builder
		for d := 1; d < row.Depth; d++ {
			if open[d] {
				guide.WriteString(guideSpine)
			} else {
				guide.WriteString(guideBlank)
			}
		}
		if row.Depth > 0 {
			if row.Last {
				guide.WriteString(guideElbow)
			} else {
				guide.WriteString(guideTee)
			}
		}

		subject := row.Subject
		if row.Muted {
			subject = Dim(subject)
		}
		if row.IssueID > 0 {
			subject = StyleYellowBold.Render(fmt.Sprintf("#%d ", row.IssueID)) + subject
		}
		left[i] = StyleDim.Render(guide.String()) + subject
		width = max(width, lipgloss.Width(left[i]))
	}

	var b strings.Builder
	for i, row := range rows {
		b.WriteString(left[i])
		if row.Badge != "" {
			pad := width - lipgloss.Width(left[i]) + badgeMargin
			b.WriteString(strings.Repeat(" ", pad))
			b.WriteString(StyleBlue.Render("[ " + row.Badge + " ]"))
		}
		b.WriteString("\n")
	}
	return b.String()
}
