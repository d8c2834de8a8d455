package storage

import "sync"

// MemoryBackend is a plain key-to-string map guarded by a mutex. It is the
// default target for tests and a fallback for callers supplying their own
// composition.
type MemoryBackend struct {
	mu      sync.RWMutex
	records map[string]string
}

// Memory constructs an empty in-memory backend.
func Memory() *MemoryBackend {
	return &MemoryBackend{records: map[string]string{}}
}

func (m *MemoryBackend) Get(key string) (string, bool, error) {
	m.mu.RLock()
	value, ok := m.records[key]
	m.mu.RUnlock()
	return value, ok, nil
}

func (m *MemoryBackend) Set(key, value string) error {
	m.mu.Lock()
	m.records[key] = value
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) Remove(key string) error {
	m.mu.Lock()
	delete(m.records, key)
	m.mu.Unlock()
	return nil
}

// Len reports how many records the backend currently holds.
func (m *MemoryBackend) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
