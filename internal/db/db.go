package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"

	"github.com/alexanderramin/redtally/internal/domain"
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// OpenDB opens the Redmine SQLite database at path.
// A file database is opened read-only and must already carry the Redmine
// tables. If path is ":memory:", a writable in-memory database is created
// and the Redmine schema is applied to it.
func OpenDB(path string) (*sql.DB, error) {
	if path == MemoryPath {
		return openMemory()
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: redmine database: %w", domain.ErrConfiguration, err)
	}

	db, err := sql.Open("sqlite", readOnlyDSN(path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := CheckSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func openMemory() (*sql.DB, error) {
	db, err := sql.Open("sqlite", MemoryPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	if err := ApplySchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return db, nil
}

// readOnlyDSN builds a URI filename that keeps every pooled connection
// read-only and waits on a locked database instead of failing at once.
func readOnlyDSN(path string) string {
	q := url.Values{}
	q.Set("mode", "ro")
	q.Add("_pragma", "query_only(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	return "file:" + path + "?" + q.Encode()
}
