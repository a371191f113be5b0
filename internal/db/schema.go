package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/alexanderramin/redtally/internal/domain"
)

// RequiredTables are the Redmine tables the offline source reads.
var RequiredTables = []string{
	"projects",
	"issues",
	"time_entries",
	"users",
	"members",
	"member_roles",
	"roles",
	"enumerations",
}

// schema is the subset of Redmine's tables and columns that is queried.
// Column names and types follow Redmine's own migrations.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id          INTEGER PRIMARY KEY,
		name        VARCHAR(255) NOT NULL DEFAULT '',
		identifier  VARCHAR(255),
		parent_id   INTEGER,
		status      INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id        INTEGER PRIMARY KEY,
		login     VARCHAR(255) NOT NULL DEFAULT '',
		firstname VARCHAR(30) NOT NULL DEFAULT '',
		lastname  VARCHAR(255) NOT NULL DEFAULT '',
		type      VARCHAR(255)
	)`,
	`CREATE TABLE IF NOT EXISTS roles (
		id       INTEGER PRIMARY KEY,
		name     VARCHAR(255) NOT NULL DEFAULT '',
		position INTEGER,
		builtin  INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS members (
		id         INTEGER PRIMARY KEY,
		user_id    INTEGER NOT NULL DEFAULT 0,
		project_id INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS member_roles (
		id             INTEGER PRIMARY KEY,
		member_id      INTEGER NOT NULL,
		role_id        INTEGER NOT NULL,
		inherited_from INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS enumerations (
		id         INTEGER PRIMARY KEY,
		name       VARCHAR(30) NOT NULL DEFAULT '',
		position   INTEGER,
		is_default BOOLEAN NOT NULL DEFAULT 0,
		type       VARCHAR(255),
		active     BOOLEAN NOT NULL DEFAULT 1,
		project_id INTEGER,
		parent_id  INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS issues (
		id         INTEGER PRIMARY KEY,
		project_id INTEGER NOT NULL DEFAULT 0,
		subject    VARCHAR(255) NOT NULL DEFAULT '',
		status_id  INTEGER NOT NULL DEFAULT 1,
		parent_id  INTEGER,
		root_id    INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS time_entries (
		id          INTEGER PRIMARY KEY,
		project_id  INTEGER NOT NULL,
		user_id     INTEGER NOT NULL,
		issue_id    INTEGER,
		hours       FLOAT NOT NULL,
		comments    VARCHAR(1024),
		activity_id INTEGER NOT NULL,
		spent_on    DATE NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS index_time_entries_on_project_id ON time_entries (project_id)`,
	`CREATE INDEX IF NOT EXISTS index_time_entries_on_issue_id ON time_entries (issue_id)`,
	`CREATE INDEX IF NOT EXISTS index_issues_on_parent_id ON issues (parent_id)`,
	`CREATE INDEX IF NOT EXISTS index_members_on_project_id ON members (project_id)`,
}

// ApplySchema creates the Redmine tables on a writable database.
// Running it twice is a no-op.
func ApplySchema(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}

// CheckSchema verifies that every table in RequiredTables exists.
func CheckSchema(ctx context.Context, db DBTX) error {
	rows, err := db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table'`)
	if err != nil {
		return fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	present := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("scanning table name: %w", err)
		}
		present[name] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("listing tables: %w", err)
	}

	var missing []string
	for _, t := range RequiredTables {
		if !present[t] {
			missing = append(missing, t)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: not a Redmine database, missing tables: %s",
			domain.ErrConfiguration, strings.Join(missing, ", "))
	}
	return nil
}
