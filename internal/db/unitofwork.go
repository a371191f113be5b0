package db

import (
	"context"
	"database/sql"
	"fmt"
)

// UnitOfWork manages transactional boundaries. The callback receives a DBTX
// backed by a *sql.Tx; callers create tx-scoped sources from it so that
// every read of one report generation sees the same snapshot.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error
}

// SnapshotUnitOfWork implements UnitOfWork as a read snapshot. The
// transaction is always rolled back: a generation only reads.
type SnapshotUnitOfWork struct {
	db *sql.DB
}

// NewSnapshotUnitOfWork creates a UnitOfWork backed by the given *sql.DB.
func NewSnapshotUnitOfWork(db *sql.DB) *SnapshotUnitOfWork {
	return &SnapshotUnitOfWork{db: db}
}

func (u *SnapshotUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning snapshot: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	fnErr := fn(ctx, tx)
	if rbErr := tx.Rollback(); rbErr != nil && fnErr == nil {
		return fmt.Errorf("releasing snapshot: %w", rbErr)
	}
	return fnErr
}
