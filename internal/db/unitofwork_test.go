package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/redtally/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *db.SnapshotUnitOfWork {
	t.Helper()
	database, err := db.OpenDB(db.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	_, err = database.Exec(`INSERT INTO projects (id, name, identifier) VALUES (1, 'Apollo', 'apollo')`)
	require.NoError(t, err)

	return db.NewSnapshotUnitOfWork(database)
}

func countProjects(t *testing.T, uow *db.SnapshotUnitOfWork) int {
	t.Helper()
	var n int
	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		return tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&n)
	})
	require.NoError(t, err)
	return n
}

func TestWithinTx_ReadsSeeData(t *testing.T) {
	uow := openTestDB(t)
	assert.Equal(t, 1, countProjects(t, uow))
}

func TestWithinTx_WritesAreDiscarded(t *testing.T) {
	uow := openTestDB(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO projects (id, name) VALUES (2, 'Zeus')`)
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, 1, countProjects(t, uow))
}

func TestWithinTx_ReturnsCallbackError(t *testing.T) {
	uow := openTestDB(t)
	boom := errors.New("boom")

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestWithinTx_RollbackOnPanic(t *testing.T) {
	uow := openTestDB(t)

	assert.Panics(t, func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
			_, _ = tx.ExecContext(ctx, `INSERT INTO projects (id, name) VALUES (3, 'Hera')`)
			panic("boom")
		})
	})

	assert.Equal(t, 1, countProjects(t, uow))
}

func TestWithinTx_CancelledContext(t *testing.T) {
	uow := openTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
}
