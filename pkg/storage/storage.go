// Package storage provides the synchronous key-value blob stores that back
// recently-used history and other small pieces of persisted picker state.
package storage

import (
	"errors"
	"fmt"
	"sync"
)

var ErrClosed = errors.New("storage closed")

// Blobs is a synchronous string key-value store.
type Blobs interface {
	// LoadBlob returns the value stored under key and whether it exists.
	LoadBlob(key string) (string, bool, error)

	// StoreBlob writes value under key, replacing any previous value.
	StoreBlob(key, value string) error

	// Close releases the underlying resources.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
)

// Open returns the blob store for backend, rooted at path for on-disk backends.
func Open(backend, path string) (Blobs, error) {
	switch backend {
	case BackendMemory, "":
		return NewMemory(), nil
	case BackendBolt:
		return OpenBolt(path)
	case BackendSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// Memory keeps blobs in a map; nothing survives the process.
type Memory struct {
	mu     sync.RWMutex
	blobs  map[string]string
	closed bool
}

func NewMemory() *Memory {
	return &Memory{blobs: make(map[string]string)}
}

func (m *Memory) LoadBlob(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", false, ErrClosed
	}
	v, ok := m.blobs[key]
	return v, ok, nil
}

func (m *Memory) StoreBlob(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.blobs[key] = value
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
