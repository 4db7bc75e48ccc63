package storage

import (
	"context"
	"sync"
)

// MemoryStorage is a map-backed Storage. It backs ephemeral runs and is the
// fake injected by unit tests.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]string

	// FailWrites makes Set/Remove return failErr, for exercising the
	// store's persistence-failure path.
	FailWrites bool
	FailErr    error
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]string)}
}

func (m *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(_ context.Context, key, value string) error {
	if m.FailWrites {
		return m.FailErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStorage) Remove(_ context.Context, key string) error {
	if m.FailWrites {
		return m.FailErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Len reports the number of stored keys.
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
