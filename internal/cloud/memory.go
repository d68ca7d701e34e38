package cloud

import (
	"context"
	"sync"
)

// MemoryKV is an in-process KV. Data is lost when the process exits.
type MemoryKV struct {
	mu    sync.RWMutex
	items map[string]map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{items: make(map[string]map[string]string)}
}

func (m *MemoryKV) SetItem(_ context.Context, uid, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.items[uid]
	if !ok {
		user = make(map[string]string)
		m.items[uid] = user
	}
	user[key] = value
	return nil
}

func (m *MemoryKV) GetItem(_ context.Context, uid, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.items[uid][key], nil
}

func (m *MemoryKV) GetItems(_ context.Context, uid string, keys []string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := m.items[uid][k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (m *MemoryKV) RemoveItems(_ context.Context, uid string, keys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.items[uid], k)
	}
	return nil
}
