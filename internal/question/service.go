package question

import (
	"context"
	"sort"
	"sync"
)

type memoryStore struct {
	mu    sync.RWMutex
	items map[string]Question
}

// NewInMemoryStore returns a Store backed by a map, seeded with qs.
func NewInMemoryStore(qs ...Question) Store {
	m := &memoryStore{items: map[string]Question{}}
	for _, q := range qs {
		m.items[q.ID] = q.Clone()
	}
	return m
}

func (m *memoryStore) FetchItems(_ context.Context, containerID string) ([]Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Question, 0, len(m.items))
	for _, q := range m.items {
		if q.ContainerID == containerID {
			out = append(out, q.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryStore) UpdateItem(_ context.Context, q Question) error {
	if q.ID == "" {
		return ErrNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[q.ID] = q.Clone()
	return nil
}
