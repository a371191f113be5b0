package domain

import "time"

// TimeEntry is one spent-time record logged by a user.
type TimeEntry struct {
	ID        int
	ProjectID int
	IssueID   *int // nil when logged against the project itself
	User      string
	Activity  string
	Hours     float64
	SpentOn   time.Time
	Comments  string
}

// HasIssue reports whether the entry was logged against an issue.
func (e TimeEntry) HasIssue() bool {
	return e.IssueID != nil
}
