package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	"github.com/alexanderramin/redtally/internal/db"
)

// FailOnNthQueryUoW is a test UoW that injects an error on the Nth
// QueryContext call within a snapshot. This lets source tests simulate a
// database failure partway through a generation.
//
// QueryContext calls are counted starting at 1. QueryRowContext and
// ExecContext pass through.
type FailOnNthQueryUoW struct {
	DB     *sql.DB
	FailOn int32
	Err    error
}

func (u *FailOnNthQueryUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	wrapped := &failOnNthQuery{DBTX: tx, failOn: u.FailOn, err: u.Err}
	return fn(ctx, wrapped)
}

type failOnNthQuery struct {
	db.DBTX
	count  atomic.Int32
	failOn int32
	err    error
}

func (f *failOnNthQuery) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	n := f.count.Add(1)
	if n == f.failOn {
		return nil, f.err
	}
	return f.DBTX.QueryContext(ctx, query, args...)
}
