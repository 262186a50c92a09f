package storage

import "sync"

// MemoryStore is an in-memory store. Controls sharing one MemoryStore see each
// other's writes through Watch, the way browser tabs see local storage events.
type MemoryStore struct {
	mu     sync.RWMutex
	items  map[string]string
	closed bool

	watchers watchers
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]string)}
}

// GetItem implements Storage.
func (m *MemoryStore) GetItem(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return "", ErrStoreClosed{}
	}
	return m.items[key], nil
}

// SetItem implements Storage. Watchers of key run after the write, outside the
// lock, and only when the value actually changed.
func (m *MemoryStore) SetItem(key, value string) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrStoreClosed{}
	}
	old, existed := m.items[key]
	m.items[key] = value
	m.mu.Unlock()

	if existed && old == value {
		return nil
	}
	for _, fn := range m.watchers.snapshot(key) {
		fn()
	}
	return nil
}

// Watch implements Watcher.
func (m *MemoryStore) Watch(key string, fn func()) func() {
	return m.watchers.add(key, fn)
}

// Len returns the number of stored keys.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Close releases the stored items. Later calls fail with ErrStoreClosed.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.items = nil
	return nil
}
