package kvstore

import (
	"context"
	"sync"
)

// Memory is an in-process Store for local development and tests.
// Nothing survives a restart.
type Memory struct {
	mu        sync.RWMutex
	values    map[string]string
	namespace string
}

var _ Store = (*Memory)(nil)

func NewMemory(namespace string) *Memory {
	return &Memory{values: make(map[string]string), namespace: namespace}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.values, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) GenerateKey(operation, key string) string {
	return generateKey(m.namespace, operation, key)
}

func (m *Memory) Close() error { return nil }
