package domain

import "fmt"

// Issue describes a tracker issue as far as the aggregation needs it.
type Issue struct {
	ID        int
	ProjectID int
	ParentID  *int
	Subject   string
}

// Label returns the "#<id>" marker used to title issue tables.
func (i Issue) Label() string {
	return IssueLabel(i.ID)
}

// IssueLabel formats an issue ID the way the tracker UI does.
func IssueLabel(id int) string {
	return fmt.Sprintf("#%d", id)
}
