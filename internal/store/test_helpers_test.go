package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/pairsort/internal/sorter"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestSession inserts a session with the given item ids.
func createTestSession(t *testing.T, s *Store, id string, ids ...string) {
	t.Helper()
	items := make([]sorter.Item, len(ids))
	for i, itemID := range ids {
		items[i] = sorter.Item{ID: itemID, Label: "Item " + itemID}
	}
	if _, err := s.CreateSession(context.Background(), id, "test "+id, items); err != nil {
		t.Fatalf("CreateSession(%q) failed: %v", id, err)
	}
}
