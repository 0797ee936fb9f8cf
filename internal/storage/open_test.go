package storage

import (
	"path/filepath"
	"testing"
)

func TestOpenStorageAt_FallsBackToJSON(t *testing.T) {
	dir := t.TempDir()

	s, err := openStorageAt(filepath.Join(dir, "notes.db"), filepath.Join(dir, "notes.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := s.(*JSONStorage); !ok {
		t.Errorf("expected JSONStorage, got %T", s)
	}
}

func TestOpenStorageAt_PrefersSQLite(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "notes.db")

	created, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("failed to create db: %v", err)
	}
	created.Close()

	s, err := openStorageAt(dbPath, filepath.Join(dir, "notes.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sqlite, ok := s.(*SQLiteStorage)
	if !ok {
		t.Fatalf("expected SQLiteStorage, got %T", s)
	}
	sqlite.Close()
}
