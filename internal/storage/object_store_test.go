package storage

import (
	"errors"
	"testing"

	"certprep-platform/internal/apperr"
)

func TestFileObjectStoreRoundTrip(t *testing.T) {
	store, err := NewFileObjectStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	data := []byte("%PDF-1.4 fake document body")
	if err := store.Put("saa/uploads/doc.pdf", data); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	got, err := store.Get("saa/uploads/doc.pdf")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(got) != string(data) {
		t.Error("read back different bytes")
	}

	if err := store.Delete("saa/uploads/doc.pdf"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.Get("saa/uploads/doc.pdf"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not-found after delete, got %v", err)
	}
}

func TestFileObjectStoreMissingKey(t *testing.T) {
	store, err := NewFileObjectStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	if _, err := store.Get("nope/missing.pdf"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not-found, got %v", err)
	}
}

func TestFileObjectStoreRejectsTraversal(t *testing.T) {
	store, err := NewFileObjectStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	for _, key := range []string{"../outside.txt", "/etc/passwd", ""} {
		if err := store.Put(key, []byte("x")); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("key %q: expected validation error, got %v", key, err)
		}
	}
}
