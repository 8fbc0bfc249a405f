package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FileKV is a KV backend that keeps one JSON document per key in a data
// directory. It exists so the data stays inspectable and editable with a
// text editor; the watcher picks up external edits.
type FileKV struct {
	root string // absolute path to the data directory
}

// NewFileKV creates a FileKV rooted at the given directory, creating it if
// necessary.
func NewFileKV(root string) (*FileKV, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create data dir: %w", err)
	}
	return &FileKV{root: abs}, nil
}

// OpenFileAdapter creates the data directory and wraps it in the adapter
// contract.
func OpenFileAdapter(root string, logger *slog.Logger) (Adapter, error) {
	kv, err := NewFileKV(root)
	if err != nil {
		return nil, err
	}
	return NewKV(kv, logger), nil
}

// Root returns the absolute data directory, for the watcher.
func (f *FileKV) Root() string {
	return f.root
}

func (f *FileKV) path(key string) string {
	return filepath.Join(f.root, key+".json")
}

func (f *FileKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("storage: read %s: %w", key, err)
	}
	return data, true, nil
}

// Set atomically replaces the document: write temp, fsync, rename.
func (f *FileKV) Set(_ context.Context, key string, value []byte) error {
	tmp, err := os.CreateTemp(f.root, ".careband-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(value); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, f.path(key)); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

func (f *FileKV) Delete(_ context.Context, key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: delete %s: %w", key, err)
	}
	return nil
}

// Close is a no-op; the file backend holds no open handles between calls.
func (f *FileKV) Close() error {
	return nil
}
