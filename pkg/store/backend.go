package store

import (
	"context"
	"sync"
)

// Key is the key the collection is stored under.
const Key = "banktags:layouts"

// Backend is a key/value blob store.
type Backend interface {
	// Load returns the blob for key; ok is false when none is stored.
	Load(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Save replaces the blob for key.
	Save(ctx context.Context, key string, data []byte) error

	// Close releases connections held by the backend.
	Close() error
}

// Backend names accepted by [Open].
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// MemoryBackend keeps blobs in a map. It is safe for concurrent use.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

func (m *MemoryBackend) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), d...), true, nil
}

func (m *MemoryBackend) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryBackend) Close() error { return nil }
