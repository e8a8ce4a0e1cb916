package store

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	if _, ok := s.Get(KeyCode); ok {
		t.Errorf("Expected absent value for fresh key")
	}

	if err := s.Set(KeyCode, "<html></html>"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	v, ok := s.Get(KeyCode)
	if !ok {
		t.Fatalf("Expected value after Set")
	}
	if v != "<html></html>" {
		t.Errorf("Expected stored value, got %q", v)
	}

	// Overwrite
	if err := s.Set(KeyCode, "<html>v2</html>"); err != nil {
		t.Fatalf("Overwrite failed: %v", err)
	}
	v, _ = s.Get(KeyCode)
	if v != "<html>v2</html>" {
		t.Errorf("Expected overwritten value, got %q", v)
	}

	s.Remove(KeyCode)
	if _, ok := s.Get(KeyCode); ok {
		t.Errorf("Expected absent value after Remove")
	}

	// Removing again must not panic or error.
	s.Remove(KeyCode)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	if err := s.Set(KeyTheme, "dark"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	s.Close()

	s2, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer s2.Close()

	v, ok := s2.Get(KeyTheme)
	if !ok || v != "dark" {
		t.Errorf("Expected persisted value after reopen, got %q (present=%v)", v, ok)
	}
}

func TestSQLiteStoreRemoveOnClosedBackend(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	s.Close()

	// Remove has no error return; a dead backend must be logged, not panic.
	s.Remove(KeyCode)
}

func TestMemoryStoreFailWrites(t *testing.T) {
	s := NewMemoryStore()
	s.FailWrites = true

	err := s.Set(KeyProjects, "{}")
	if err == nil {
		t.Fatalf("Expected write failure")
	}

	var se *StorageError
	if !errors.As(err, &se) {
		t.Fatalf("Expected *StorageError, got %T", err)
	}
	if se.Key != KeyProjects {
		t.Errorf("Expected failing key %q, got %q", KeyProjects, se.Key)
	}
	if s.Len() != 0 {
		t.Errorf("Expected no values stored after failed write")
	}
}

func TestNopStoreAbsentTolerant(t *testing.T) {
	var s Store = NopStore{}

	if err := s.Set(KeyCode, "x"); err != nil {
		t.Fatalf("NopStore Set should not fail: %v", err)
	}
	if _, ok := s.Get(KeyCode); ok {
		t.Errorf("NopStore must report absent for every key")
	}
	s.Remove(KeyCode)
}
