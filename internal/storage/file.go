package storage

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gradtrack/gradtrack/internal/types"
)

// File stores the document as a single pretty-printed JSON file.
type File struct {
	path string

	mu        sync.Mutex
	lastWrite [sha256.Size]byte
	written   bool
}

// NewFile returns a file backend rooted at path. The file and its parent
// directory are created on first write.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the data file location.
func (f *File) Path() string {
	return f.path
}

// Read returns the file contents, or ErrNotExist when the file is missing.
func (f *File) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// #nosec G304 - path comes from configuration
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotExist
		}
		return nil, fmt.Errorf("failed to read data file %s: %w", f.path, err)
	}
	return data, nil
}

// Write replaces the file atomically via a temp file and rename.
func (f *File) Write(ctx context.Context, schema *types.DataSchema) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Marshal(schema)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := writeAtomic(f.path, data); err != nil {
		return err
	}
	f.lastWrite = sha256.Sum256(data)
	f.written = true
	return nil
}

// Backup copies the current file to <path>.<reason>.<timestamp>.
// It returns "" with no error when there is nothing to back up.
func (f *File) Backup(ctx context.Context, reason string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	// #nosec G304 - path comes from configuration
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read input for backup: %w", err)
	}

	backupPath := fmt.Sprintf("%s.%s.%s", f.path, reason, time.Now().Format(backupStamp))
	if err := os.WriteFile(backupPath, data, 0600); err != nil {
		return "", fmt.Errorf("failed to create backup: %w", err)
	}
	return backupPath, nil
}

// ChangedExternally reports whether the file on disk differs from the last
// content this backend wrote. A file never written by this backend counts as
// changed when it exists.
func (f *File) ChangedExternally() bool {
	// #nosec G304 - path comes from configuration
	data, err := os.ReadFile(f.path)
	if err != nil {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.written {
		return true
	}
	return sha256.Sum256(data) != f.lastWrite
}

func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
