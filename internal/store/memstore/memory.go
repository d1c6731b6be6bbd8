// Package memstore provides an in-memory implementation of store.Backend.
// This implementation is designed for fast unit testing and does not persist data.
package memstore

import (
	"slices"
	"sync"

	"github.com/greminder/greminder/internal/store"
)

// MemoryStore is an ordered in-memory key-value store.
// It keeps keys in a sorted slice next to a map of values and is
// thread-safe via a mutex. Data exists only for the lifetime of the process.
type MemoryStore struct {
	mu     sync.RWMutex
	keys   []string // sorted
	values map[string][]byte
	closed bool
}

var (
	_ store.Backend = (*MemoryStore)(nil)
	_ store.Counter = (*MemoryStore)(nil)
)

// NewMemoryStore creates a new, empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string][]byte),
	}
}

// Get returns a copy of the value stored under key.
func (m *MemoryStore) Get(key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, store.ErrClosed
	}

	value, exists := m.values[string(key)]
	if !exists {
		return nil, store.ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

// Put stores a copy of value under key.
func (m *MemoryStore) Put(key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return store.ErrClosed
	}

	k := string(key)
	if _, exists := m.values[k]; !exists {
		idx, _ := slices.BinarySearch(m.keys, k)
		m.keys = slices.Insert(m.keys, idx, k)
	}
	m.values[k] = append([]byte(nil), value...)
	return nil
}

// Delete removes key if present.
func (m *MemoryStore) Delete(key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return store.ErrClosed
	}

	k := string(key)
	if _, exists := m.values[k]; !exists {
		return nil
	}
	delete(m.values, k)
	if idx, found := slices.BinarySearch(m.keys, k); found {
		m.keys = slices.Delete(m.keys, idx, idx+1)
	}
	return nil
}

// Scan visits keys in order starting at seek. The lock is not held while
// fn runs; each step looks up the next key after the previous one, so fn
// may modify the store.
func (m *MemoryStore) Scan(seek []byte, fn func(key, value []byte) bool) error {
	cursor := string(seek)
	inclusive := true

	for {
		key, value, ok, err := m.next(cursor, inclusive)
		if err != nil {
			return err
		}
		if !ok || !fn(key, value) {
			return nil
		}
		cursor = string(key)
		inclusive = false
	}
}

// next returns the first key >= cursor (or > cursor when not inclusive).
func (m *MemoryStore) next(cursor string, inclusive bool) ([]byte, []byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, nil, false, store.ErrClosed
	}

	idx, found := slices.BinarySearch(m.keys, cursor)
	if found && !inclusive {
		idx++
	}
	if idx >= len(m.keys) {
		return nil, nil, false, nil
	}

	k := m.keys[idx]
	return []byte(k), append([]byte(nil), m.values[k]...), true, nil
}

// Len returns the number of records.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.keys)
}

// Count implements store.Counter.
func (m *MemoryStore) Count() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return 0, store.ErrClosed
	}
	return len(m.keys), nil
}

// Close releases resources. Later calls fail with store.ErrClosed.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
