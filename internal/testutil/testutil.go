// Package testutil provides shared test helpers for databases and blob stores.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/starford/canvas/internal/database"
	"github.com/starford/canvas/internal/storage"
)

// TestDB creates a migrated temporary SQLite database that is closed on cleanup.
func TestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(context.Background(), filepath.Join(t.TempDir(), "canvas-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestBlobs creates a temporary file-system blob store serving under /assets.
func TestBlobs(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir, "/assets")
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}
