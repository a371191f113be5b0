// Package source defines what the report needs from a time-tracking
// backend. Implementations live in subpackages: redmineapi talks to the
// REST API, redminedb reads a Redmine SQLite database directly.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/redtally/internal/domain"
)

// Source yields the raw records a report is built from. Every failure an
// implementation returns wraps domain.ErrSourceFailure.
type Source interface {
	// Activities lists the time entry activity names in tracker order.
	Activities(ctx context.Context) ([]string, error)
	// Roles lists the assignable role names.
	Roles(ctx context.Context) ([]string, error)
	// Projects lists all visible projects.
	Projects(ctx context.Context) ([]domain.Project, error)
	// ProjectRoles maps each project member to the roles held on it.
	ProjectRoles(ctx context.Context, projectID int) (domain.RoleMap, error)
	// ProjectTimeEntries lists entries logged on the project itself or its
	// issues, excluding subprojects.
	ProjectTimeEntries(ctx context.Context, projectID int, window domain.Window) ([]domain.TimeEntry, error)
	// IssueTimeEntries lists entries logged against one issue.
	IssueTimeEntries(ctx context.Context, issueID int, window domain.Window) ([]domain.TimeEntry, error)
	// RootIssues lists parentless issues of the project in any status,
	// excluding subprojects.
	RootIssues(ctx context.Context, projectID int) ([]domain.Issue, error)
	// ChildIssues lists the direct children of an issue in any status.
	ChildIssues(ctx context.Context, issueID int) ([]domain.Issue, error)
}

// Snapshotter is implemented by sources that can serve a whole report
// generation from one consistent view of the data.
type Snapshotter interface {
	WithinSnapshot(ctx context.Context, fn func(ctx context.Context, src Source) error) error
}

// Run calls fn with a snapshot of src when src supports it, or src itself.
func Run(ctx context.Context, src Source, fn func(ctx context.Context, src Source) error) error {
	if s, ok := src.(Snapshotter); ok {
		return s.WithinSnapshot(ctx, fn)
	}
	return fn(ctx, src)
}

// Failure wraps err as a source failure for op. Errors already marked as
// source failures and context errors are returned with op prepended only.
// Sources must turn their own timeouts into plain errors so that a context
// error here always means the caller's context is done.
func Failure(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrSourceFailure) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrSourceFailure, err)
}
