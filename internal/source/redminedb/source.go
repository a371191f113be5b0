// Package redminedb reads report data straight from a Redmine SQLite
// database, for offline runs against a backup or a local instance.
package redminedb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/redtally/internal/db"
	"github.com/alexanderramin/redtally/internal/domain"
	"github.com/alexanderramin/redtally/internal/source"
)

// Redmine project status codes that are visible in reports. Archived (9)
// and scheduled-for-deletion (10) projects are skipped.
const (
	statusActive = 1
	statusClosed = 5
)

// Source implements source.Source over Redmine's tables.
type Source struct {
	q   db.DBTX
	uow db.UnitOfWork
}

var (
	_ source.Source      = (*Source)(nil)
	_ source.Snapshotter = (*Source)(nil)
)

// New creates a Source that serves each generation from one snapshot.
func New(database *sql.DB) *Source {
	return &Source{q: database, uow: db.NewSnapshotUnitOfWork(database)}
}

// NewWithUoW creates a Source with an explicit connection and UnitOfWork.
// A nil uow runs generations without a snapshot.
func NewWithUoW(q db.DBTX, uow db.UnitOfWork) *Source {
	return &Source{q: q, uow: uow}
}

// WithinSnapshot runs fn against a Source bound to one read transaction.
func (s *Source) WithinSnapshot(ctx context.Context, fn func(ctx context.Context, src source.Source) error) error {
	if s.uow == nil {
		return fn(ctx, s)
	}
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, &Source{q: tx})
	})
	return err
}

func (s *Source) Activities(ctx context.Context) ([]string, error) {
	query := `SELECT name FROM enumerations
		WHERE type = 'TimeEntryActivity' AND project_id IS NULL
		ORDER BY position, id`
	names, err := s.names(ctx, query)
	if err != nil {
		return nil, source.Failure("listing activities", err)
	}
	return names, nil
}

func (s *Source) Roles(ctx context.Context) ([]string, error) {
	query := `SELECT name FROM roles WHERE builtin = 0 ORDER BY position, id`
	names, err := s.names(ctx, query)
	if err != nil {
		return nil, source.Failure("listing roles", err)
	}
	return names, nil
}

func (s *Source) names(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scanning name: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Source) Projects(ctx context.Context) ([]domain.Project, error) {
	query := `SELECT id, name, COALESCE(identifier, ''), parent_id
		FROM projects WHERE status IN (?, ?) ORDER BY id`
	rows, err := s.q.QueryContext(ctx, query, statusActive, statusClosed)
	if err != nil {
		return nil, source.Failure("listing projects", err)
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		var (
			p      domain.Project
			parent sql.NullInt64
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Identifier, &parent); err != nil {
			return nil, source.Failure("scanning project", err)
		}
		p.ParentID = intPtr(parent)
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, source.Failure("listing projects", err)
	}
	return projects, nil
}

func (s *Source) ProjectRoles(ctx context.Context, projectID int) (domain.RoleMap, error) {
	query := `SELECT TRIM(u.firstname || ' ' || u.lastname), r.name
		FROM members m
		JOIN users u ON u.id = m.user_id
		JOIN member_roles mr ON mr.member_id = m.id
		JOIN roles r ON r.id = mr.role_id
		WHERE m.project_id = ? AND COALESCE(u.type, 'User') = 'User'
		ORDER BY m.id, r.position`
	rows, err := s.q.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, source.Failure(fmt.Sprintf("listing members of project %d", projectID), err)
	}
	defer rows.Close()

	roles := domain.RoleMap{}
	for rows.Next() {
		var user, role string
		if err := rows.Scan(&user, &role); err != nil {
			return nil, source.Failure("scanning membership", err)
		}
		roles.Grant(user, role)
	}
	if err := rows.Err(); err != nil {
		return nil, source.Failure(fmt.Sprintf("listing members of project %d", projectID), err)
	}
	return roles, nil
}

// entryColumns selects a time entry with the user's display name and the
// shared activity name; project-specific activities report under the
// activity they override.
const entryColumns = `SELECT te.id, te.project_id, te.issue_id,
		TRIM(u.firstname || ' ' || u.lastname),
		COALESCE(shared.name, e.name),
		te.hours, strftime('%Y-%m-%d', te.spent_on), COALESCE(te.comments, '')
	FROM time_entries te
	JOIN users u ON u.id = te.user_id
	JOIN enumerations e ON e.id = te.activity_id
	LEFT JOIN enumerations shared ON shared.id = e.parent_id`

func (s *Source) ProjectTimeEntries(ctx context.Context, projectID int, window domain.Window) ([]domain.TimeEntry, error) {
	query := entryColumns + `
		WHERE te.project_id = ? AND date(te.spent_on) BETWEEN ? AND ?
		ORDER BY te.spent_on, te.id`
	entries, err := s.entries(ctx, query, projectID, window.FromString(), window.ToString())
	if err != nil {
		return nil, source.Failure(fmt.Sprintf("listing time entries of project %d", projectID), err)
	}
	return entries, nil
}

func (s *Source) IssueTimeEntries(ctx context.Context, issueID int, window domain.Window) ([]domain.TimeEntry, error) {
	query := entryColumns + `
		WHERE te.issue_id = ? AND date(te.spent_on) BETWEEN ? AND ?
		ORDER BY te.spent_on, te.id`
	entries, err := s.entries(ctx, query, issueID, window.FromString(), window.ToString())
	if err != nil {
		return nil, source.Failure(fmt.Sprintf("listing time entries of issue %d", issueID), err)
	}
	return entries, nil
}

func (s *Source) entries(ctx context.Context, query string, args ...any) ([]domain.TimeEntry, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.TimeEntry
	for rows.Next() {
		var (
			e       domain.TimeEntry
			issue   sql.NullInt64
			spentOn string
		)
		if err := rows.Scan(&e.ID, &e.ProjectID, &issue, &e.User, &e.Activity, &e.Hours, &spentOn, &e.Comments); err != nil {
			return nil, fmt.Errorf("scanning time entry: %w", err)
		}
		e.IssueID = intPtr(issue)
		e.SpentOn, err = time.Parse(domain.DateLayout, spentOn)
		if err != nil {
			return nil, fmt.Errorf("time entry %d: parsing spent_on %q: %w", e.ID, spentOn, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Source) RootIssues(ctx context.Context, projectID int) ([]domain.Issue, error) {
	query := `SELECT id, project_id, parent_id, subject FROM issues
		WHERE project_id = ? AND parent_id IS NULL ORDER BY id`
	issues, err := s.issues(ctx, query, projectID)
	if err != nil {
		return nil, source.Failure(fmt.Sprintf("listing root issues of project %d", projectID), err)
	}
	return issues, nil
}

func (s *Source) ChildIssues(ctx context.Context, issueID int) ([]domain.Issue, error) {
	query := `SELECT id, project_id, parent_id, subject FROM issues
		WHERE parent_id = ? ORDER BY id`
	issues, err := s.issues(ctx, query, issueID)
	if err != nil {
		return nil, source.Failure(fmt.Sprintf("listing child issues of %d", issueID), err)
	}
	return issues, nil
}

func (s *Source) issues(ctx context.Context, query string, args ...any) ([]domain.Issue, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Issue
	for rows.Next() {
		var (
			is     domain.Issue
			parent sql.NullInt64
		)
		if err := rows.Scan(&is.ID, &is.ProjectID, &parent, &is.Subject); err != nil {
			return nil, fmt.Errorf("scanning issue: %w", err)
		}
		is.ParentID = intPtr(parent)
		out = append(out, is)
	}
	return out, rows.Err()
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
