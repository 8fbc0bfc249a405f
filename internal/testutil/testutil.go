// Package testutil provides shared test helpers for setting up adapters
// and stores.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/halver/careband/internal/health"
	"github.com/halver/careband/internal/storage"
)

// TestAdapter creates a temporary SQLite-backed adapter that is
// automatically cleaned up.
func TestAdapter(t *testing.T) storage.Adapter {
	t.Helper()
	dbFile, err := os.CreateTemp("", "careband-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	adapter, err := storage.OpenSQLiteAdapter(dbFile.Name(), nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { adapter.Close() })
	return adapter
}

// TestStore creates a store over a temporary SQLite adapter and loads it.
func TestStore(t *testing.T) *health.Store {
	t.Helper()
	store := health.NewStore(TestAdapter(t), nil)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return store
}
