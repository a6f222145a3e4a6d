package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/themer/internal/storage"
)

// NewTestDB opens a migrated SQLite database in a temp dir. It is closed
// when the test ends.
func NewTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.NewDB(filepath.Join(t.TempDir(), "preferences.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// NewSQLiteStorage returns a Storage over a fresh SQLite database.
func NewSQLiteStorage(t *testing.T, prefix string) *storage.Storage {
	t.Helper()
	return storage.New(storage.NewSQLiteBackend(NewTestDB(t)), prefix)
}
