// Package testutil provides shared test helpers for setting up vault
// databases and upload directories.
package testutil

import (
	"os"
	"testing"

	"github.com/formvault/formvault/internal/storage"
	"github.com/formvault/formvault/internal/vault"
)

// TestDB creates a temporary SQLite vault database that is
// automatically cleaned up.
func TestDB(t *testing.T) *vault.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "formvault-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := vault.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestUploads creates a temporary uploads directory with a
// storage.Provider.
func TestUploads(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}
