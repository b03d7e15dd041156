// Package store provides key/value persistence for booking details.
//
// All stores satisfy config.Store: Get never fails (a read problem is
// logged and the default returned) and Set reports write errors.
package store

import (
	"fmt"
	"sync"
)

// Kind selects a store implementation.
type Kind string

const (
	KindMemory Kind = "memory"
	KindFile   Kind = "file"
	KindRedis  Kind = "redis"
)

// Options configures Open.
type Options struct {
	Path      string // file store location
	RedisAddr string
	RedisDB   int
	Prefix    string // redis key prefix
}

// KV is the union of the store behaviours the CLI needs.
type KV interface {
	Get(key, def string) string
	Set(key, value string) error
	Close() error
}

// Open creates the store named by kind.
func Open(kind Kind, opts Options) (KV, error) {
	switch kind {
	case KindMemory:
		return NewMemory(nil), nil
	case KindFile, "":
		return OpenFile(opts.Path)
	case KindRedis:
		return NewRedis(RedisConfig{Addr: opts.RedisAddr, DB: opts.RedisDB, Prefix: opts.Prefix})
	default:
		return nil, fmt.Errorf("unknown store: %s (use file, redis or memory)", kind)
	}
}

// Memory is an in-process store.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory returns a memory store seeded with a copy of initial.
func NewMemory(initial map[string]string) *Memory {
	values := make(map[string]string, len(initial))
	for k, v := range initial {
		values[k] = v
	}
	return &Memory{values: values}
}

// Get returns the value for key or def.
func (m *Memory) Get(key, def string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.values[key]; ok {
		return v
	}
	return def
}

// Set stores value.
func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Snapshot returns a copy of every stored value.
func (m *Memory) Snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
