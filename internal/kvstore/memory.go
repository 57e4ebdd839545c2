package kvstore

import (
	"context"
	"sync"
)

// Memory is an in-process Backend used by tests and the "memory" store
// backend.  A positive Quota caps the total number of stored bytes, which
// mirrors the capacity limit of browser storage.
type Memory struct {
	mu    sync.RWMutex
	data  map[string][]byte
	size  int
	Quota int
}

// NewMemory returns an empty, unlimited Memory backend.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := m.size - len(m.data[key]) + len(value)
	if m.Quota > 0 && next > m.Quota {
		return ErrQuotaExceeded
	}
	buf := make([]byte, len(value))
	copy(buf, value)
	m.data[key] = buf
	m.size = next
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.size -= len(m.data[key])
	delete(m.data, key)
	return nil
}

// Raw stores value under key without any encoding.  Tests use it to plant
// corrupted documents.
func (m *Memory) Raw(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.size += len(value) - len(m.data[key])
	m.data[key] = []byte(value)
}
