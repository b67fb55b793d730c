package storage

import (
	"context"
	"sync"
)

// MemoryProvider keeps entries for the lifetime of the process only.
type MemoryProvider struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{entries: make(map[string]string)}
}

func (m *MemoryProvider) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.entries[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (m *MemoryProvider) Set(_ context.Context, key string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = value
	return nil
}

func (m *MemoryProvider) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}
