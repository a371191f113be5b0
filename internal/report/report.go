package report

import (
	"fmt"
	"time"

	"github.com/alexanderramin/redtally/internal/domain"
)

// Report is one generation: project-level tables followed by per-project
// root issue tables.
type Report struct {
	RunID       string          `json:"run_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Language    Language        `json:"language"`
	From        string          `json:"from"`
	To          string          `json:"to"`
	DepthLimit  int             `json:"depth_limit"`
	Activities  []string        `json:"activities"`
	Projects    []ProjectTable  `json:"projects"`
	Issues      []ProjectIssues `json:"issues"`

	Messages Messages `json:"-"`
}

// ProjectTable is the time logged on a project without an issue.
type ProjectTable struct {
	ProjectID int    `json:"project_id"`
	Name      string `json:"name"`
	Table     Table  `json:"table"`
}

// ProjectIssues groups the issue tables of one project.
type ProjectIssues struct {
	ProjectID int          `json:"project_id"`
	Name      string       `json:"name"`
	Issues    []IssueTable `json:"issues"`
}

// IssueTable is the time logged on one issue node.
type IssueTable struct {
	IssueID int    `json:"issue_id"`
	Subject string `json:"subject"`
	Level   int    `json:"level"`
	Table   Table  `json:"table"`
}

// New starts an empty report for window.
func New(runID string, lang Language, msgs Messages, window domain.Window, depth int, activities []string, now time.Time) *Report {
	return &Report{
		RunID:       runID,
		GeneratedAt: now,
		Language:    lang,
		From:        window.FromString(),
		To:          window.ToString(),
		DepthLimit:  depth,
		Activities:  append([]string(nil), activities...),
		Messages:    msgs,
	}
}

// Window reconstructs the report's window.
func (r *Report) Window() (domain.Window, error) {
	return domain.ParseWindow(r.From, r.To)
}

// PeriodLine returns the localized period sentence.
func (r *Report) PeriodLine() string {
	return fmt.Sprintf(r.Messages.Period, r.From, r.To)
}

// Empty reports whether no section holds a table.
func (r *Report) Empty() bool {
	return len(r.Projects) == 0 && len(r.Issues) == 0
}

// AddProject appends a project-level table.
func (r *Report) AddProject(p domain.Project, t Table) {
	r.Projects = append(r.Projects, ProjectTable{ProjectID: p.ID, Name: p.DisplayName(), Table: t})
}

// AddIssues appends a project's issue tables; projects without any are
// skipped.
func (r *Report) AddIssues(p domain.Project, issues []IssueTable) {
	if len(issues) == 0 {
		return
	}
	r.Issues = append(r.Issues, ProjectIssues{ProjectID: p.ID, Name: p.DisplayName(), Issues: issues})
}
