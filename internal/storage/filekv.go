package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

type fileKV struct {
	dir string
}

// NewFileKV creates a KVStore that keeps each key in its own JSON file
// under dir. The directory is created on first write.
func NewFileKV(dir string) (KVStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("creating file store: directory must not be empty")
	}
	return &fileKV{dir: dir}, nil
}

func (s *fileKV) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *fileKV) lockPath(key string) string {
	return filepath.Join(s.dir, "."+key+".lock")
}

func (s *fileKV) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return data, nil
}

// Set writes to a temporary file in the same directory and renames it over
// the target, so a crash mid-write leaves the previous value intact. The
// rename happens under a per-key file lock shared with other processes
// using the same directory.
func (s *fileKV) Set(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("writing %s: creating directory: %w", key, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("writing %s: creating temp file: %w", key, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing %s: syncing: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: closing temp file: %w", key, err)
	}

	unlock, err := lockFile(s.lockPath(key))
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	defer func() { _ = unlock() }()

	if err := os.Rename(tmpName, s.path(key)); err != nil {
		return fmt.Errorf("writing %s: replacing file: %w", key, err)
	}
	return nil
}

func (s *fileKV) Close() error { return nil }
