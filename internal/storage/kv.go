// Package storage provides the durable key-value slots the task list is
// persisted to, and the codec that turns a task collection into a slot value.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/valter-silva-au/todo/pkg/models"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("key not found")

// KVStore is a durable key-value slot. Set replaces the whole value
// atomically: a reader sees either the previous or the new value, never a
// mix of both.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Open returns the KVStore for the named backend rooted at basePath.
func Open(backend, basePath string) (KVStore, error) {
	switch backend {
	case models.BackendFile, "":
		return NewFileKV(filepath.Join(basePath, "data"))
	case models.BackendSQLite:
		return NewSQLiteKV(filepath.Join(basePath, "todo.db"))
	case models.BackendMemory:
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("opening storage: unknown backend %q", backend)
	}
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("invalid key: must not be empty")
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("invalid key %q: must not contain path separators", key)
	}
	return nil
}
