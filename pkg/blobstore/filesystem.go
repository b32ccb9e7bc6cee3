package blobstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// Filesystem stores blobs as files under a base directory. Keys may contain
// forward slashes, which map to subdirectories.
type Filesystem struct {
	fs      afero.Fs
	baseDir string
}

// NewFilesystem ensures the base directory exists on the OS filesystem and
// returns a handle.
func NewFilesystem(baseDir string) (*Filesystem, error) {
	return NewFilesystemWithFs(afero.NewOsFs(), baseDir)
}

// NewFilesystemWithFs is like NewFilesystem but over an explicit afero
// filesystem. Tests use it with an in-memory one.
func NewFilesystemWithFs(fs afero.Fs, baseDir string) (*Filesystem, error) {
	if baseDir == "" {
		baseDir = "./cache"
	}
	if err := fs.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &Filesystem{fs: fs, baseDir: baseDir}, nil
}

// Get reads the blob stored under key.
func (s *Filesystem) Get(_ context.Context, key string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, s.resolve(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read cache file %s: %w", key, err)
	}
	return data, nil
}

// Put writes the blob under key, creating parent directories as needed.
func (s *Filesystem) Put(_ context.Context, key string, data []byte) error {
	path := s.resolve(key)
	if err := s.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("prepare cache directory: %w", err)
	}
	if err := afero.WriteFile(s.fs, path, data, 0o644); err != nil {
		return fmt.Errorf("write cache file %s: %w", key, err)
	}
	return nil
}

// Delete removes the blob under key if present.
func (s *Filesystem) Delete(_ context.Context, key string) error {
	if err := s.fs.Remove(s.resolve(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete cache file %s: %w", key, err)
	}
	return nil
}

// CleanupOlderThan removes files whose modification time is older than the
// provided TTL and returns the removed keys, relative to the base directory.
func (s *Filesystem) CleanupOlderThan(ttl time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-ttl)
	deleted := make([]string, 0)
	err := afero.Walk(s.fs, s.baseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if info.ModTime().After(cutoff) {
			return nil
		}
		if err := s.fs.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		rel, err := filepath.Rel(s.baseDir, path)
		if err != nil {
			rel = path
		}
		deleted = append(deleted, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cleanup cache files: %w", err)
	}
	return deleted, nil
}

func (s *Filesystem) resolve(key string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(key))
}
