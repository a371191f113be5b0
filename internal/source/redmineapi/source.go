package redmineapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/alexanderramin/redtally/internal/domain"
	"github.com/alexanderramin/redtally/internal/source"
)

var _ source.Source = (*Client)(nil)

type ref struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type projectJSON struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Identifier string `json:"identifier"`
	Parent     *ref   `json:"parent"`
}

type membershipJSON struct {
	User  *ref  `json:"user"`
	Group *ref  `json:"group"`
	Roles []ref `json:"roles"`
}

type timeEntryJSON struct {
	ID       int     `json:"id"`
	Project  ref     `json:"project"`
	Issue    *ref    `json:"issue"`
	User     ref     `json:"user"`
	Activity ref     `json:"activity"`
	Hours    float64 `json:"hours"`
	Comments string  `json:"comments"`
	SpentOn  string  `json:"spent_on"`
}

type issueJSON struct {
	ID      int    `json:"id"`
	Project ref    `json:"project"`
	Parent  *ref   `json:"parent"`
	Subject string `json:"subject"`
}

func (c *Client) Activities(ctx context.Context) ([]string, error) {
	items, err := fetchAll[ref](ctx, c, "/enumerations/time_entry_activities.json", nil, "time_entry_activities")
	if err != nil {
		return nil, source.Failure("listing activities", err)
	}
	return names(items), nil
}

func (c *Client) Roles(ctx context.Context) ([]string, error) {
	items, err := fetchAll[ref](ctx, c, "/roles.json", nil, "roles")
	if err != nil {
		return nil, source.Failure("listing roles", err)
	}
	return names(items), nil
}

func names(items []ref) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}

func (c *Client) Projects(ctx context.Context) ([]domain.Project, error) {
	items, err := fetchAll[projectJSON](ctx, c, "/projects.json", nil, "projects")
	if err != nil {
		return nil, source.Failure("listing projects", err)
	}
	out := make([]domain.Project, 0, len(items))
	for _, p := range items {
		out = append(out, domain.Project{
			ID:         p.ID,
			Identifier: p.Identifier,
			Name:       p.Name,
			ParentID:   refID(p.Parent),
		})
	}
	return out, nil
}

// ProjectRoles lists user memberships. Group memberships are skipped: the
// roles a group grants are repeated on each member's own entry.
func (c *Client) ProjectRoles(ctx context.Context, projectID int) (domain.RoleMap, error) {
	path := "/projects/" + strconv.Itoa(projectID) + "/memberships.json"
	items, err := fetchAll[membershipJSON](ctx, c, path, nil, "memberships")
	if err != nil {
		return nil, source.Failure(fmt.Sprintf("listing members of project %d", projectID), err)
	}
	roles := domain.RoleMap{}
	for _, m := range items {
		if m.User == nil {
			continue
		}
		for _, r := range m.Roles {
			roles.Grant(m.User.Name, r.Name)
		}
	}
	return roles, nil
}

func windowQuery(w domain.Window) url.Values {
	q := url.Values{}
	q.Set("from", w.FromString())
	q.Set("to", w.ToString())
	return q
}

func (c *Client) ProjectTimeEntries(ctx context.Context, projectID int, window domain.Window) ([]domain.TimeEntry, error) {
	q := windowQuery(window)
	q.Set("project_id", strconv.Itoa(projectID))
	q.Set("subproject_id", "!*")
	items, err := fetchAll[timeEntryJSON](ctx, c, "/time_entries.json", q, "time_entries")
	if err != nil {
		return nil, source.Failure(fmt.Sprintf("listing time entries of project %d", projectID), err)
	}
	entries, err := toEntries(items, func(e timeEntryJSON) bool { return e.Project.ID == projectID })
	if err != nil {
		return nil, source.Failure(fmt.Sprintf("listing time entries of project %d", projectID), err)
	}
	return entries, nil
}

// IssueTimeEntries keeps only entries logged on the issue itself; Redmine
// also returns entries of subtasks for issue_id.
func (c *Client) IssueTimeEntries(ctx context.Context, issueID int, window domain.Window) ([]domain.TimeEntry, error) {
	q := windowQuery(window)
	q.Set("issue_id", strconv.Itoa(issueID))
	items, err := fetchAll[timeEntryJSON](ctx, c, "/time_entries.json", q, "time_entries")
	if err != nil {
		return nil, source.Failure(fmt.Sprintf("listing time entries of issue %d", issueID), err)
	}
	entries, err := toEntries(items, func(e timeEntryJSON) bool { return e.Issue != nil && e.Issue.ID == issueID })
	if err != nil {
		return nil, source.Failure(fmt.Sprintf("listing time entries of issue %d", issueID), err)
	}
	return entries, nil
}

func toEntries(items []timeEntryJSON, keep func(timeEntryJSON) bool) ([]domain.TimeEntry, error) {
	out := make([]domain.TimeEntry, 0, len(items))
	for _, it := range items {
		if !keep(it) {
			continue
		}
		spent, err := time.Parse(domain.DateLayout, it.SpentOn)
		if err != nil {
			return nil, fmt.Errorf("time entry %d: parsing spent_on %q: %w", it.ID, it.SpentOn, err)
		}
		out = append(out, domain.TimeEntry{
			ID:        it.ID,
			ProjectID: it.Project.ID,
			IssueID:   refID(it.Issue),
			User:      it.User.Name,
			Activity:  it.Activity.Name,
			Hours:     it.Hours,
			SpentOn:   spent,
			Comments:  it.Comments,
		})
	}
	return out, nil
}

func (c *Client) RootIssues(ctx context.Context, projectID int) ([]domain.Issue, error) {
	q := url.Values{}
	q.Set("project_id", strconv.Itoa(projectID))
	q.Set("subproject_id", "!*")
	q.Set("parent_id", "!*")
	q.Set("status_id", "*")
	q.Set("sort", "id")
	items, err := fetchAll[issueJSON](ctx, c, "/issues.json", q, "issues")
	if err != nil {
		return nil, source.Failure(fmt.Sprintf("listing root issues of project %d", projectID), err)
	}
	return toIssues(items, func(i issueJSON) bool { return i.Parent == nil && i.Project.ID == projectID }), nil
}

func (c *Client) ChildIssues(ctx context.Context, issueID int) ([]domain.Issue, error) {
	q := url.Values{}
	q.Set("parent_id", strconv.Itoa(issueID))
	q.Set("status_id", "*")
	q.Set("sort", "id")
	items, err := fetchAll[issueJSON](ctx, c, "/issues.json", q, "issues")
	if err != nil {
		return nil, source.Failure(fmt.Sprintf("listing child issues of %d", issueID), err)
	}
	return toIssues(items, func(i issueJSON) bool { return i.Parent != nil && i.Parent.ID == issueID }), nil
}

func toIssues(items []issueJSON, keep func(issueJSON) bool) []domain.Issue {
	out := make([]domain.Issue, 0, len(items))
	for _, it := range items {
		if !keep(it) {
			continue
		}
		out = append(out, domain.Issue{
			ID:        it.ID,
			ProjectID: it.Project.ID,
			ParentID:  refID(it.Parent),
			Subject:   it.Subject,
		})
	}
	return out
}

func refID(r *ref) *int {
	if r == nil {
		return nil
	}
	id := r.ID
	return &id
}
