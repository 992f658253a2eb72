package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveCreatesUserDirectory(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)
	if err := store.Save(context.Background(), "5/20250101T000000_abcdef0123456789.pdf", "application/pdf", []byte("%PDF")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "5", "20250101T000000_abcdef0123456789.pdf")); err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}
}

func TestRejectsTraversal(t *testing.T) {
	store := New(t.TempDir())
	for _, key := range []string{"../escape.txt", "/abs/path", ""} {
		if err := store.Save(context.Background(), key, "", []byte("x")); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
		if _, err := store.Open(context.Background(), key); err == nil {
			t.Fatalf("expected open error for key %q", key)
		}
	}
}
