// Package storagetest opens migrated in-memory SQLite databases for store tests.
package storagetest

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"fieldops/internal/adapters/storage"
)

// Open returns a migrated in-memory database closed at test cleanup.
// The pool is pinned to one connection because every new connection to
// ":memory:" would otherwise see its own empty database.
func Open(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}
