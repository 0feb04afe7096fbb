package storage

import (
	"context"
	"sync"
)

type memoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStorage() Storage {
	return &memoryStorage{
		values: make(map[string]string),
	}
}

func (m *memoryStorage) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	val, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return val, nil
}

func (m *memoryStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	return nil
}

func (m *memoryStorage) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}
