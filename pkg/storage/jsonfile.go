package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

const (
	tmpSuffix    = ".tmp"
	backupSuffix = ".bak"
)

// JSONFile is a single JSON document on disk. Writes go to a temporary file
// that is renamed over the previous version, which is kept as a backup.
type JSONFile struct {
	path string
	mu   sync.RWMutex
}

// NewJSONFile prepares the directory holding path.
func NewJSONFile(path string) (*JSONFile, error) {
	if path == "" {
		return nil, fmt.Errorf("json file path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &JSONFile{path: path}, nil
}

// Path returns the document location.
func (f *JSONFile) Path() string {
	return f.path
}

// Read decodes the document into dest. A missing file leaves dest untouched.
func (f *JSONFile) Read(dest interface{}) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.readLocked(dest)
}

// Update reads the document into dest, lets mutate change it and writes the
// result back, all under one lock.
func (f *JSONFile) Update(dest interface{}, mutate func() error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.readLocked(dest); err != nil {
		return err
	}
	if err := mutate(); err != nil {
		return err
	}
	return f.writeLocked(dest)
}

func (f *JSONFile) readLocked(dest interface{}) error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", f.path, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode %s: %w", f.path, err)
	}
	return nil
}

func (f *JSONFile) writeLocked(value interface{}) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", f.path, err)
	}

	tmp := f.path + tmpSuffix
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if _, err := os.Stat(f.path); err == nil {
		if err := copyFile(f.path, f.path+backupSuffix); err != nil {
			return err
		}
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read %s for backup: %w", src, err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("write backup %s: %w", dst, err)
	}
	return nil
}
