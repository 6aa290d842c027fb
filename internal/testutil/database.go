// Package testutil provides shared test utilities for taxora.
package testutil

import (
	"context"
	"testing"

	"github.com/curationd/taxora/internal/model"
	"github.com/curationd/taxora/internal/storage"
)

// TestDB represents a migrated in-memory test database.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database with migrations applied
// and cleanup registered.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{Storage: store, t: t}
}

// SeedFragment stores a fragment, failing the test on error.
func (db *TestDB) SeedFragment(fragmentID, text string) {
	db.t.Helper()
	if err := db.Storage.SaveFragment(context.Background(), fragmentID, text); err != nil {
		db.t.Fatalf("failed to seed fragment %q: %v", fragmentID, err)
	}
}

// SeedLeaves stores taxonomy leaves, failing the test on error.
func (db *TestDB) SeedLeaves(leaves []model.TaxonomyLeaf) {
	db.t.Helper()
	if err := db.Storage.SaveTaxonomyLeaves(context.Background(), leaves); err != nil {
		db.t.Fatalf("failed to seed taxonomy leaves: %v", err)
	}
}
