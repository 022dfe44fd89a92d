// Package storage provides the object-store contract the pipeline uses to
// fetch raw audio, plus a filesystem-backed implementation.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ObjectStore is the minimal byte-storage contract the pipeline depends on.
type ObjectStore interface {
	// Put stores bytes under a new path derived from the given name and
	// returns that path.
	Put(name string, data []byte) (string, error)
	// Get retrieves the bytes stored at path.
	Get(path string) ([]byte, error)
}

// FileStore stores objects under a base directory on the local filesystem.
type FileStore struct {
	baseDir string
}

// NewFileStore creates the base directory if needed and returns the store.
func NewFileStore(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir %s: %w", baseDir, err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// Put writes data under a unique path keyed off the original filename's
// extension. The returned path is relative to the store.
func (fs *FileStore) Put(name string, data []byte) (string, error) {
	ext := filepath.Ext(name)
	if ext == "" {
		ext = ".bin"
	}
	rel := uuid.New().String() + strings.ToLower(ext)
	abs := filepath.Join(fs.baseDir, rel)
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return "", fmt.Errorf("write object %s: %w", rel, err)
	}
	return rel, nil
}

// Get reads the object stored at the given relative path.
func (fs *FileStore) Get(path string) ([]byte, error) {
	// Reject traversal outside the base directory.
	clean := filepath.Clean(path)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, fmt.Errorf("invalid object path %q", path)
	}
	data, err := os.ReadFile(filepath.Join(fs.baseDir, clean))
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", path, err)
	}
	return data, nil
}
