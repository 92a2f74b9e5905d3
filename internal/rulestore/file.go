package rulestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists rule text in a local file. The file is the canonical
// copy and may be edited out-of-band with any text editor; pair the store
// with a [Watcher] to pick up such edits while the server runs.
//
// Thread-safe for concurrent use.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// Compile-time interface check.
var _ Store = (*FileStore)(nil)

// NewFileStore creates a FileStore backed by the file at path. The file is
// created on the first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the rules file. A missing file is an empty dictionary.
func (fs *FileStore) Load(_ context.Context) (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := os.ReadFile(fs.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("rulestore: read %q: %w", fs.path, err)
	}
	return string(data), nil
}

// Save validates text and writes it to the rules file via a temp file and
// rename, so a crash mid-write never leaves a truncated dictionary behind.
func (fs *FileStore) Save(_ context.Context, text string) error {
	if err := checkRuleText(text); err != nil {
		return err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	dir := filepath.Dir(fs.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(fs.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("rulestore: create temp file in %q: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("rulestore: write %q: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rulestore: close %q: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, fs.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rulestore: rename %q to %q: %w", tmpName, fs.path, err)
	}
	return nil
}

// Ping verifies the directory holding the rules file exists.
func (fs *FileStore) Ping(_ context.Context) error {
	if _, err := os.Stat(filepath.Dir(fs.path)); err != nil {
		return fmt.Errorf("rulestore: %w", err)
	}
	return nil
}

// Path returns the rules file location, for wiring a [Watcher].
func (fs *FileStore) Path() string {
	return fs.path
}
