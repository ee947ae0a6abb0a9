package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore persists each key as one file under a base directory. Writes go
// through a temp file plus rename so a crash never leaves a half-written
// value behind.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) Read(key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return data, nil
}

func (f *FileStore) Write(key string, value []byte) error {
	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to commit key %q: %w", key, err)
	}
	return nil
}

func (f *FileStore) Remove(key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove key %q: %w", key, err)
	}
	return nil
}

func (f *FileStore) path(key string) string {
	// Keys are internal names like "guest_cart"; replace separators anyway so
	// a bad key cannot escape the base directory.
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
	return filepath.Join(f.dir, safe+".json")
}
