package datautil

import (
	"sync"

	"github.com/dataloop-ml/datakit/errors"
)

// WriteOnceMap is a concurrency-safe map whose entries cannot be
// overwritten once set. The zero value is ready to use.
type WriteOnceMap[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]V
}

// Set stores value under key. Storing to an existing key fails, even
// with an equal value.
func (m *WriteOnceMap[K, V]) Set(key K, value V) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[key]; ok {
		return errors.DuplicateKey(key)
	}
	if m.entries == nil {
		m.entries = map[K]V{}
	}
	m.entries[key] = value
	return nil
}

// Get returns the value stored under key.
func (m *WriteOnceMap[K, V]) Get(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.entries[key]
	return v, ok
}

// Len returns the number of stored entries.
func (m *WriteOnceMap[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}
