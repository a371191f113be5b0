package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/alexanderramin/redtally/internal/domain"
	"github.com/alexanderramin/redtally/internal/source"
)

// FakeSource serves a Fixture from memory and records every call.
// Failures can be injected per method and record ID.
type FakeSource struct {
	Fixture *Fixture

	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

var _ source.Source = (*FakeSource)(nil)

// NewFakeSource serves f, or the standard fixture when f is nil.
func NewFakeSource(f *Fixture) *FakeSource {
	if f == nil {
		f = NewFixture()
	}
	return &FakeSource{Fixture: f, fail: map[string]error{}}
}

// FailOn makes method return err when called for id. Methods without an ID
// argument use id 0.
func (s *FakeSource) FailOn(method string, id int, err error) *FakeSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[callKey(method, id)] = err
	return s
}

// Calls returns the recorded calls as "Method:id" strings.
func (s *FakeSource) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// CallCount counts recorded calls of method.
func (s *FakeSource) CallCount(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if len(c) > len(method) && c[:len(method)+1] == method+":" {
			n++
		}
	}
	return n
}

func callKey(method string, id int) string {
	return fmt.Sprintf("%s:%d", method, id)
}

func (s *FakeSource) record(method string, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := callKey(method, id)
	s.calls = append(s.calls, key)
	if err, ok := s.fail[key]; ok {
		return source.Failure(method, err)
	}
	return nil
}

func (s *FakeSource) Activities(ctx context.Context) ([]string, error) {
	if err := s.record("Activities", 0); err != nil {
		return nil, err
	}
	return append([]string(nil), s.Fixture.Activities...), nil
}

func (s *FakeSource) Roles(ctx context.Context) ([]string, error) {
	if err := s.record("Roles", 0); err != nil {
		return nil, err
	}
	return append([]string(nil), s.Fixture.Roles...), nil
}

func (s *FakeSource) Projects(ctx context.Context) ([]domain.Project, error) {
	if err := s.record("Projects", 0); err != nil {
		return nil, err
	}
	return append([]domain.Project(nil), s.Fixture.Projects...), nil
}

func (s *FakeSource) ProjectRoles(ctx context.Context, projectID int) (domain.RoleMap, error) {
	if err := s.record("ProjectRoles", projectID); err != nil {
		return nil, err
	}
	return s.Fixture.RoleMap(projectID), nil
}

func (s *FakeSource) ProjectTimeEntries(ctx context.Context, projectID int, window domain.Window) ([]domain.TimeEntry, error) {
	if err := s.record("ProjectTimeEntries", projectID); err != nil {
		return nil, err
	}
	var out []domain.TimeEntry
	for _, e := range s.Fixture.Entries {
		if e.ProjectID == projectID && window.Contains(e.SpentOn) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *FakeSource) IssueTimeEntries(ctx context.Context, issueID int, window domain.Window) ([]domain.TimeEntry, error) {
	if err := s.record("IssueTimeEntries", issueID); err != nil {
		return nil, err
	}
	var out []domain.TimeEntry
	for _, e := range s.Fixture.Entries {
		if e.IssueID != nil && *e.IssueID == issueID && window.Contains(e.SpentOn) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *FakeSource) RootIssues(ctx context.Context, projectID int) ([]domain.Issue, error) {
	if err := s.record("RootIssues", projectID); err != nil {
		return nil, err
	}
	var out []domain.Issue
	for _, i := range s.Fixture.Issues {
		if i.ProjectID == projectID && i.ParentID == nil {
			out = append(out, i)
		}
	}
	sortIssues(out)
	return out, nil
}

func (s *FakeSource) ChildIssues(ctx context.Context, issueID int) ([]domain.Issue, error) {
	if err := s.record("ChildIssues", issueID); err != nil {
		return nil, err
	}
	var out []domain.Issue
	for _, i := range s.Fixture.Issues {
		if i.ParentID != nil && *i.ParentID == issueID {
			out = append(out, i)
		}
	}
	sortIssues(out)
	return out, nil
}

func sortIssues(issues []domain.Issue) {
	sort.Slice(issues, func(a, b int) bool { return issues[a].ID < issues[b].ID })
}
