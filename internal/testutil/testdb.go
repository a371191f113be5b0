package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/alexanderramin/redtally/internal/db"
	"github.com/alexanderramin/redtally/internal/domain"
)

// NewTestDB creates an in-memory SQLite database with the Redmine schema
// applied. The database is closed when the test completes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(db.MemoryPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// NewSeededDB creates a test database holding f, or the standard fixture
// when f is nil.
func NewSeededDB(t *testing.T, f *Fixture) *sql.DB {
	t.Helper()
	if f == nil {
		f = NewFixture()
	}
	database := NewTestDB(t)
	SeedFixture(t, database, f)
	return database
}

// SeedFixture writes f into Redmine's tables. Users get IDs in the order
// of f.Users(); their display name is stored as the first name. A builtin
// role is added to check that sources ignore it.
func SeedFixture(t *testing.T, database *sql.DB, f *Fixture) {
	t.Helper()
	ctx := context.Background()
	exec := func(query string, args ...any) {
		t.Helper()
		if _, err := database.ExecContext(ctx, query, args...); err != nil {
			t.Fatalf("seeding fixture: %v\n%s", err, query)
		}
	}

	for i, name := range f.Activities {
		exec(`INSERT INTO enumerations (id, name, position, type, active) VALUES (?, ?, ?, 'TimeEntryActivity', 1)`,
			i+1, name, i+1)
	}
	activityIDs := nameIDs(f.Activities)

	for i, name := range f.Roles {
		exec(`INSERT INTO roles (id, name, position, builtin) VALUES (?, ?, ?, 0)`, i+1, name, i+1)
	}
	exec(`INSERT INTO roles (id, name, position, builtin) VALUES (?, 'Non member', ?, 1)`,
		len(f.Roles)+1, len(f.Roles)+1)
	roleIDs := nameIDs(f.Roles)

	users := f.Users()
	for i, name := range users {
		exec(`INSERT INTO users (id, login, firstname, lastname, type) VALUES (?, ?, ?, '', 'User')`,
			i+1, name, name)
	}
	userIDs := nameIDs(users)

	for _, p := range f.Projects {
		exec(`INSERT INTO projects (id, name, identifier, parent_id) VALUES (?, ?, ?, ?)`,
			p.ID, p.Name, p.Identifier, nullableInt(p.ParentID))
	}

	for i, m := range f.Members {
		memberID := i + 1
		exec(`INSERT INTO members (id, user_id, project_id) VALUES (?, ?, ?)`, memberID, userIDs[m.User], m.ProjectID)
		for _, r := range m.Roles {
			exec(`INSERT INTO member_roles (member_id, role_id) VALUES (?, ?)`, memberID, roleIDs[r])
		}
	}

	for _, is := range f.Issues {
		exec(`INSERT INTO issues (id, project_id, subject, parent_id) VALUES (?, ?, ?, ?)`,
			is.ID, is.ProjectID, is.Subject, nullableInt(is.ParentID))
	}

	for i, e := range f.Entries {
		id := e.ID
		if id == 0 {
			id = 1000 + i
		}
		exec(`INSERT INTO time_entries (id, project_id, user_id, issue_id, hours, comments, activity_id, spent_on)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, e.ProjectID, userIDs[e.User], nullableInt(e.IssueID), e.Hours, e.Comments,
			activityIDs[e.Activity], e.SpentOn.Format(domain.DateLayout))
	}
}

func nameIDs(names []string) map[string]int {
	ids := make(map[string]int, len(names))
	for i, n := range names {
		ids[n] = i + 1
	}
	return ids
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

// NewSeededFile writes f (or the standard fixture) into a fresh SQLite
// file under t.TempDir and returns its path. The file is closed, ready to
// be opened read-only.
func NewSeededFile(t *testing.T, f *Fixture) string {
	t.Helper()
	if f == nil {
		f = NewFixture()
	}
	path := filepath.Join(t.TempDir(), "redmine.sqlite3")
	database, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("creating database file: %v", err)
	}
	if err := db.ApplySchema(context.Background(), database); err != nil {
		database.Close()
		t.Fatalf("applying schema: %v", err)
	}
	SeedFixture(t, database, f)
	if err := database.Close(); err != nil {
		t.Fatalf("closing database file: %v", err)
	}
	return path
}
