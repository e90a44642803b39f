// Package fsio provides the file access primitives used by the catalog and
// collection stores. Filesystem access is an injected port so that stores can
// be exercised against in-memory fakes in tests.
package fsio

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// FileSystem is the narrow filesystem surface the engine depends on.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	// WriteFileAtomic replaces the file at path with data. The replacement
	// is all-or-nothing: either the old content survives or the new content
	// is fully in place.
	WriteFileAtomic(path string, data []byte, perm fs.FileMode) error
	AppendFile(path string, data []byte, perm fs.FileMode) error
	Remove(path string) error
	Stat(path string) (fs.FileInfo, error)
	ReadDir(path string) ([]fs.DirEntry, error)
	MkdirAll(path string, perm fs.FileMode) error
}

// OSFileSystem implements FileSystem against the real OS filesystem.
// Atomic writes go through a temp file in the target directory followed by a
// rename, retried a bounded number of times to absorb transient file-lock
// contention (concurrent readers on Windows hold the destination open).
type OSFileSystem struct {
	// RenameRetries is the number of additional rename attempts after the
	// first failure. Default: 3.
	RenameRetries int

	// RetryDelay is the pause between rename attempts. Default: 50ms.
	RetryDelay time.Duration
}

// NewOSFileSystem returns an OSFileSystem with default retry settings.
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{
		RenameRetries: 3,
		RetryDelay:    50 * time.Millisecond,
	}
}

// ReadFile reads the named file.
func (f *OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFileAtomic writes data to a temp file next to path and renames it into
// place. The temp file is removed on any failure.
func (f *OSFileSystem) WriteFileAtomic(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		_ = os.Remove(tmpPath)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}

	// Bounded retry on rename. This absorbs transient contention but is not
	// a cross-process lock; two writers can still race at this boundary.
	retries := f.RenameRetries
	if retries <= 0 {
		retries = 3
	}
	delay := f.RetryDelay
	if delay <= 0 {
		delay = 50 * time.Millisecond
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if lastErr = os.Rename(tmpPath, path); lastErr == nil {
			return nil
		}
		if attempt < retries {
			time.Sleep(delay)
		}
	}

	cleanup()
	return fmt.Errorf("rename %s -> %s: %w", tmpPath, path, lastErr)
}

// AppendFile appends data to the named file, creating it if needed.
func (f *OSFileSystem) AppendFile(path string, data []byte, perm fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, perm)
	if err != nil {
		return fmt.Errorf("open for append: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		return fmt.Errorf("append: %w", err)
	}
	return file.Close()
}

// Remove removes the named file.
func (f *OSFileSystem) Remove(path string) error {
	return os.Remove(path)
}

// Stat returns file info for the named file.
func (f *OSFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// ReadDir lists the named directory.
func (f *OSFileSystem) ReadDir(path string) ([]fs.DirEntry, error) {
	return os.ReadDir(path)
}

// MkdirAll creates the named directory and any parents.
func (f *OSFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	return os.MkdirAll(path, perm)
}
