package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/camlkit/internal/testutil"
)

// createTestStore creates a file-backed store with sequential revision IDs.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithIDGenerator(testutil.NewSequentialIDGenerator("rev")))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// mustSave saves a revision whose definition and CAML are derived from the
// fingerprint.
func mustSave(t *testing.T, s *Store, name, fingerprint string) (Revision, bool) {
	t.Helper()
	rev, inserted, err := s.SaveRevision(context.Background(), name, fingerprint,
		`{"name":"`+name+`"}`, "<Where>"+fingerprint+"</Where>")
	if err != nil {
		t.Fatalf("SaveRevision(%q, %q) failed: %v", name, fingerprint, err)
	}
	return rev, inserted
}
