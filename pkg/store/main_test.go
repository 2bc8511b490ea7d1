package store

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/CTAG07/loremipsum/pkg/lorem"
)

// setupTestDB opens a fresh SQLite file and returns a Store on it.
// It uses t.Cleanup to ensure resources are released.
func setupTestDB(t *testing.T, opts ...Option) (*sql.DB, *Store) {
	t.Helper()
	dbFile := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", dbFile)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := SetupSchema(db); err != nil {
		t.Fatalf("failed to set up schema: %v", err)
	}

	s, err := New(db, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(s.Close)

	return db, s
}

func newSample(t *testing.T, text string) *lorem.Sample {
	t.Helper()
	s, err := lorem.NewSample(text, []string{"xx yy zzz"}, ",.", ".")
	if err != nil {
		t.Fatalf("NewSample() failed: %v", err)
	}
	return s
}
