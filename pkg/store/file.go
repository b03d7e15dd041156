package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/slotwatch/internal/logger"
)

// DefaultFileName is used under the home directory when no path is given.
const DefaultFileName = ".slotwatch/store.yaml"

// File keeps values in a flat YAML mapping. The file is read once on open
// and rewritten in full on every Set.
type File struct {
	path   string
	mu     sync.RWMutex
	values map[string]string
}

// OpenFile loads path, creating nothing until the first Set. An empty path
// means $HOME/.slotwatch/store.yaml.
func OpenFile(path string) (*File, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		path = filepath.Join(home, DefaultFileName)
	}

	f := &File{path: path, values: map[string]string{}}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		logger.Debug("store file not found, starting empty", "path", path)
		return f, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}

	if err := yaml.Unmarshal(data, &f.values); err != nil {
		return nil, fmt.Errorf("failed to parse store file %s: %w", path, err)
	}
	if f.values == nil {
		f.values = map[string]string{}
	}
	logger.Debug("store file loaded", "path", path, "keys", len(f.values))
	return f, nil
}

// Path returns the backing file location.
func (f *File) Path() string { return f.path }

// Get returns the value for key or def.
func (f *File) Get(key, def string) string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if v, ok := f.values[key]; ok {
		return v
	}
	return def
}

// Set stores value and rewrites the file through a temp file and rename.
func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := make(map[string]string, len(f.values)+1)
	for k, v := range f.values {
		next[k] = v
	}
	next[key] = value

	data, err := yaml.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".store-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp store file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write store: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}

	f.values = next
	return nil
}

// Close is a no-op; every Set is already durable.
func (f *File) Close() error { return nil }
