package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"certprep-platform/internal/apperr"
)

// ObjectStore is the blob storage collaborator used by ingestion. Uploads are
// written under a key and read back later by the processing pipeline.
type ObjectStore interface {
	Put(key string, data []byte) error
	Get(key string) ([]byte, error)
	Delete(key string) error
}

// FileObjectStore keeps blobs on the local filesystem under a base directory.
type FileObjectStore struct {
	baseDir string
}

// NewFileObjectStore creates the base directory if needed.
func NewFileObjectStore(baseDir string) (*FileObjectStore, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("object store base directory is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileObjectStore{baseDir: baseDir}, nil
}

// Put writes the blob, creating intermediate directories from the key path.
func (s *FileObjectStore) Put(key string, data []byte) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create object directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write object %s: %w", key, err)
	}
	return nil
}

// Get reads a blob back, returning a not-found error for missing keys.
func (s *FileObjectStore) Get(key string) ([]byte, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.NotFoundf("object %s not found", key)
		}
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}
	return data, nil
}

// Delete removes a blob. Deleting a missing key is not an error.
func (s *FileObjectStore) Delete(key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// resolve maps a key onto the base directory and rejects traversal outside it.
func (s *FileObjectStore) resolve(key string) (string, error) {
	if key == "" {
		return "", apperr.Validationf("object key is required")
	}

	cleaned := filepath.Clean(filepath.FromSlash(key))
	if strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", apperr.Validationf("invalid object key: %s", key)
	}

	return filepath.Join(s.baseDir, cleaned), nil
}
