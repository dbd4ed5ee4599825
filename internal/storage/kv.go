// Package storage persists small named values such as the best score.
package storage

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// KV is a string key-value store.
type KV interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// MemoryKV keeps values in process memory.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryKV creates an empty in-memory store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

// Get returns the value stored under key.
func (m *MemoryKV) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set stores value under key.
func (m *MemoryKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// FileKV keeps values in a YAML mapping on disk.
// The file is read on every Get so several processes see each other's writes,
// and written atomically through a temporary file.
type FileKV struct {
	mu   sync.Mutex
	path string
}

// NewFileKV creates a store backed by path. The file need not exist yet.
func NewFileKV(path string) *FileKV {
	return &FileKV{path: path}
}

// Path returns the backing file path.
func (f *FileKV) Path() string {
	return f.path
}

// Get returns the value stored under key.
func (f *FileKV) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.readLocked()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

// Set stores value under key, creating the file if needed.
func (f *FileKV) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.readLocked()
	if err != nil {
		return err
	}
	values[key] = value
	return f.writeLocked(values)
}

// update applies fn to the current value of key and stores the result,
// holding the lock across the read and the write.
func (f *FileKV) update(key string, fn func(old string, ok bool) string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.readLocked()
	if err != nil {
		return err
	}
	old, ok := values[key]
	values[key] = fn(old, ok)
	return f.writeLocked(values)
}

func (f *FileKV) readLocked() (map[string]string, error) {
	values := make(map[string]string)
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read store")
	}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, errors.Wrapf(err, "parse store %s", f.path)
	}
	if values == nil {
		values = make(map[string]string)
	}
	return values, nil
}

func (f *FileKV) writeLocked(values map[string]string) error {
	data, err := yaml.Marshal(values)
	if err != nil {
		return errors.Wrap(err, "encode store")
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create store directory")
	}
	tmp, err := os.CreateTemp(dir, ".kv-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return errors.Wrapf(err, "replace %s", f.path)
	}
	return nil
}
