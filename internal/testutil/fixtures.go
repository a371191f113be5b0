package testutil

import (
	"sort"
	"time"

	"github.com/alexanderramin/redtally/internal/domain"
)

// FixtureDay is the date every fixture time entry is spent on by default.
var FixtureDay = time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

// FixtureWindow is a window that contains FixtureDay.
var FixtureWindow = domain.Window{
	From: FixtureDay.AddDate(0, 0, -30),
	To:   FixtureDay.AddDate(0, 0, 5),
}

// Member grants roles to a user on a project.
type Member struct {
	ProjectID int
	User      string
	Roles     []string
}

// Fixture is a small tracker world shared by the fake source, the SQLite
// source tests and the REST client tests.
type Fixture struct {
	Activities []string
	Roles      []string
	Projects   []domain.Project
	Members    []Member
	Issues     []domain.Issue
	Entries    []domain.TimeEntry
}

// NewFixture returns the standard world:
//
//	project 1 "Apollo": alice (Developer), bob (Developer, Manager), carol (Manager)
//	  #10 Launch
//	    #11 Engines
//	      #12 Fuel pump
//	  #20 Docs
//	project 2 "Zeus": dave (Reporter), no issues
func NewFixture() *Fixture {
	f := &Fixture{
		Activities: []string{"Development", "Management", "Meeting", "Admin", "Coordination", "Testing"},
		Roles:      []string{"Developer", "Manager", "Reporter"},
		Projects: []domain.Project{
			{ID: 1, Identifier: "apollo", Name: "Apollo"},
			{ID: 2, Identifier: "zeus", Name: "Zeus"},
		},
		Members: []Member{
			{ProjectID: 1, User: "alice", Roles: []string{"Developer"}},
			{ProjectID: 1, User: "bob", Roles: []string{"Developer", "Manager"}},
			{ProjectID: 1, User: "carol", Roles: []string{"Manager"}},
			{ProjectID: 2, User: "dave", Roles: []string{"Reporter"}},
		},
		Issues: []domain.Issue{
			NewTestIssue(10, "Launch", WithIssueProject(1)),
			NewTestIssue(11, "Engines", WithIssueProject(1), WithParent(10)),
			NewTestIssue(12, "Fuel pump", WithIssueProject(1), WithParent(11)),
			NewTestIssue(20, "Docs", WithIssueProject(1)),
		},
	}
	f.Entries = []domain.TimeEntry{
		NewTestEntry("alice", "Development", 2.5, WithEntryID(1), WithEntryProject(1)),
		NewTestEntry("bob", "Development", 1.25, WithEntryID(2), WithEntryProject(1)),
		NewTestEntry("carol", "Meeting", 1, WithEntryID(3), WithEntryProject(1)),
		NewTestEntry("alice", "Development", 3, WithEntryID(4), WithEntryProject(1), WithIssue(10)),
		NewTestEntry("bob", "Meeting", 0.5, WithEntryID(5), WithEntryProject(1), WithIssue(10)),
		NewTestEntry("alice", "Testing", 1.5, WithEntryID(6), WithEntryProject(1), WithIssue(11)),
		NewTestEntry("carol", "Development", 2, WithEntryID(7), WithEntryProject(1), WithIssue(12)),
		NewTestEntry("bob", "Development", 4, WithEntryID(8), WithEntryProject(1), WithIssue(20)),
		NewTestEntry("alice", "Development", 8, WithEntryID(9), WithEntryProject(1), WithIssue(10),
			WithSpentOn(FixtureDay.AddDate(0, -6, 0))),
	}
	return f
}

// RoleMap returns the memberships of one project.
func (f *Fixture) RoleMap(projectID int) domain.RoleMap {
	m := domain.RoleMap{}
	for _, mem := range f.Members {
		if mem.ProjectID == projectID {
			m.Grant(mem.User, mem.Roles...)
		}
	}
	return m
}

// Users returns every user name that appears in memberships or entries.
func (f *Fixture) Users() []string {
	seen := map[string]bool{}
	var out []string
	add := func(u string) {
		if !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}
	for _, m := range f.Members {
		add(m.User)
	}
	for _, e := range f.Entries {
		add(e.User)
	}
	sort.Strings(out)
	return out
}

// Issue options
type IssueOption func(*domain.Issue)

func WithParent(id int) IssueOption {
	return func(i *domain.Issue) {
		i.ParentID = &id
	}
}

func WithIssueProject(id int) IssueOption {
	return func(i *domain.Issue) {
		i.ProjectID = id
	}
}

func NewTestIssue(id int, subject string, opts ...IssueOption) domain.Issue {
	i := domain.Issue{ID: id, ProjectID: 1, Subject: subject}
	for _, opt := range opts {
		opt(&i)
	}
	return i
}

// TimeEntry options
type EntryOption func(*domain.TimeEntry)

func WithIssue(id int) EntryOption {
	return func(e *domain.TimeEntry) {
		e.IssueID = &id
	}
}

func WithEntryProject(id int) EntryOption {
	return func(e *domain.TimeEntry) {
		e.ProjectID = id
	}
}

func WithEntryID(id int) EntryOption {
	return func(e *domain.TimeEntry) {
		e.ID = id
	}
}

func WithSpentOn(t time.Time) EntryOption {
	return func(e *domain.TimeEntry) {
		e.SpentOn = t
	}
}

func WithComments(c string) EntryOption {
	return func(e *domain.TimeEntry) {
		e.Comments = c
	}
}

func NewTestEntry(user, activity string, hours float64, opts ...EntryOption) domain.TimeEntry {
	e := domain.TimeEntry{
		ProjectID: 1,
		User:      user,
		Activity:  activity,
		Hours:     hours,
		SpentOn:   FixtureDay,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}
