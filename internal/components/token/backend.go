package token

import (
	"context"
	"sync"
)

// Key is the well-known key the bearer token is stored under.
const Key = "token"

type (
	// Backend is a durable key-value store.
	Backend interface {
		// Get returns the value for key and whether it exists.
		Get(ctx context.Context, key string) (string, bool, error)
		Set(ctx context.Context, key, value string) error
		// Delete removes key. Deleting a missing key is not an error.
		Delete(ctx context.Context, key string) error
		Ping(ctx context.Context) error
		Close() error
	}

	// MemoryBackend keeps values for the lifetime of the process only.
	MemoryBackend struct {
		mu     sync.RWMutex
		values map[string]string
	}
)

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string]string)}
}

func (m *MemoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[key]
	return value, ok, nil
}

func (m *MemoryBackend) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *MemoryBackend) Ping(context.Context) error { return nil }

func (m *MemoryBackend) Close() error { return nil }
