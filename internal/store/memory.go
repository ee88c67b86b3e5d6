package store

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	updatedAt time.Time
}

// Memory keeps values in process memory. Data is lost on restart.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*memoryEntry)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := m.getOrCreateLocked(key)
	entry.value = append(entry.value[:0], value...)
	entry.updatedAt = time.Now()
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

func (m *Memory) Close() error { return nil }

func (m *Memory) getOrCreateLocked(key string) *memoryEntry {
	if entry, ok := m.entries[key]; ok {
		return entry
	}
	entry := &memoryEntry{}
	m.entries[key] = entry
	return entry
}
