package store

import "sync"

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]map[string][]byte
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]map[string][]byte)}
}

func (m *MemoryStore) Get(project, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[project][key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryStore) Put(project, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries[project] == nil {
		m.entries[project] = make(map[string][]byte)
	}
	m.entries[project][key] = append([]byte(nil), value...)
	return nil
}

// Len returns the number of entries stored for project.
func (m *MemoryStore) Len(project string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries[project])
}

func (m *MemoryStore) Close() error {
	return nil
}
