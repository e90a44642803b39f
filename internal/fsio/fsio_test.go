package fsio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFileAtomicCreatesFile(t *testing.T) {
	dir := t.TempDir()
	fs := NewOSFileSystem()
	path := filepath.Join(dir, "sub", "data.json")

	if err := fs.WriteFileAtomic(path, []byte(`{"ok":true}`), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Errorf("content = %q, want %q", data, `{"ok":true}`)
	}
}

func TestWriteFileAtomicReplacesContent(t *testing.T) {
	dir := t.TempDir()
	fs := NewOSFileSystem()
	path := filepath.Join(dir, "data.json")

	if err := fs.WriteFileAtomic(path, []byte("old"), 0o644); err != nil {
		t.Fatalf("first write error = %v", err)
	}
	if err := fs.WriteFileAtomic(path, []byte("new"), 0o644); err != nil {
		t.Fatalf("second write error = %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "new" {
		t.Errorf("content = %q, want %q", data, "new")
	}
}

func TestWriteFileAtomicLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	fs := NewOSFileSystem()

	if err := fs.WriteFileAtomic(filepath.Join(dir, "data.json"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("leftover temp file: %s", e.Name())
		}
	}
}

func TestAppendFile(t *testing.T) {
	dir := t.TempDir()
	fs := NewOSFileSystem()
	path := filepath.Join(dir, "journal.log")

	if err := fs.AppendFile(path, []byte("one\n"), 0o644); err != nil {
		t.Fatalf("AppendFile() error = %v", err)
	}
	if err := fs.AppendFile(path, []byte("two\n"), 0o644); err != nil {
		t.Fatalf("AppendFile() error = %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "one\ntwo\n" {
		t.Errorf("content = %q, want %q", data, "one\ntwo\n")
	}
}
