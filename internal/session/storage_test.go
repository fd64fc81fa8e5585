package session

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
)

// exerciseStorage runs the contract every Storage implementation shares.
func exerciseStorage(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	// Absent key reads as nil without error.
	got, err := s.Get(ctx, "missing")
	if err != nil {
		t.Fatalf("Get(missing): %v", err)
	}
	if got != nil {
		t.Errorf("Get(missing) = %q, want nil", got)
	}

	if err := s.Set(ctx, "doc", []byte(`{"v":1}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err = s.Get(ctx, "doc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, []byte(`{"v":1}`)) {
		t.Errorf("Get = %q, want stored value", got)
	}

	// Overwrite replaces in place.
	if err := s.Set(ctx, "doc", []byte(`{"v":2}`)); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, _ = s.Get(ctx, "doc")
	if !bytes.Equal(got, []byte(`{"v":2}`)) {
		t.Errorf("Get after overwrite = %q, want new value", got)
	}

	if err := s.Delete(ctx, "doc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, _ = s.Get(ctx, "doc")
	if got != nil {
		t.Errorf("Get after delete = %q, want nil", got)
	}

	// Deleting an absent key stays quiet.
	if err := s.Delete(ctx, "doc"); err != nil {
		t.Errorf("Delete(absent): %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStorage(t, NewMemoryStore())
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	value := []byte("original")
	if err := s.Set(ctx, "doc", value); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value[0] = 'X'

	got, _ := s.Get(ctx, "doc")
	if !bytes.Equal(got, []byte("original")) {
		t.Errorf("Get = %q, want value isolated from caller mutation", got)
	}
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	exerciseStorage(t, s)
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s1, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := s1.Set(ctx, "doc", []byte("durable")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	s2, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	got, err := s2.Get(ctx, "doc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, []byte("durable")) {
		t.Errorf("Get = %q, want value written by first instance", got)
	}
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer s.Close()
	exerciseStorage(t, s)
}

func TestSQLiteStorePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mentor.db")
	ctx := context.Background()

	s1, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	if err := s1.Set(ctx, "doc", []byte("durable")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer s2.Close()

	got, err := s2.Get(ctx, "doc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, []byte("durable")) {
		t.Errorf("Get = %q, want value written before reopen", got)
	}
}
