package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/redtally/internal/issuetree"
	"github.com/alexanderramin/redtally/internal/report"
)

const shareBarWidth = 8

// FormatIssueTree renders a project's issue hierarchy. Nodes with time
// carry their own hours and their share of the project's issue time.
func FormatIssueTree(project string, tree *issuetree.Tree) string {
	var b strings.Builder

	total := 0.0
	tree.Walk(func(_ issuetree.NodeID, n *issuetree.Node) bool {
		total += n.Store.Total()
		return true
	})

	b.WriteString(Bold(project))
	b.WriteString(" " + Dim(fmt.Sprintf("(%sh)", report.FormatHours(total))))
	b.WriteString("\n")

	if tree.Len() == 0 {
		b.WriteString(Dim("  no issues"))
		b.WriteString("\n")
		return b.String()
	}

	roots := tree.Roots()
	var rows []TreeRow
	tree.Walk(func(id issuetree.NodeID, n *issuetree.Node) bool {
		siblings := roots
		if !n.IsRoot() {
			if p, err := tree.Node(n.Parent); err == nil {
				siblings = p.Children
			}
		}
		row := TreeRow{
			Depth:   n.Level,
			Last:    len(siblings) > 0 && siblings[len(siblings)-1] == id,
			IssueID: n.IssueID,
			Subject: n.Subject,
			Muted:   n.Store.Empty(),
		}
		if !row.Muted {
			hours := n.Store.Total()
			share := 0.0
			if total > 0 {
				share = hours / total
			}
			row.Badge = report.FormatHours(hours) + "h " + RenderCompactBar(share, shareBarWidth, false)
		}
		rows = append(rows, row)
		return true
	})

	b.WriteString(RenderTree(rows))
	return b.String()
}
