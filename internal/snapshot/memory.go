package snapshot

import (
	"context"
	"sync"
)

// MemorySaver keeps snapshots in process memory. It is the default
// collaborator when no external store is configured and doubles as the test
// implementation.
type MemorySaver struct {
	mu    sync.RWMutex
	store map[string]*Snapshot
}

func NewMemorySaver() *MemorySaver {
	return &MemorySaver{store: make(map[string]*Snapshot)}
}

func (m *MemorySaver) Save(ctx context.Context, s *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *s
	m.store[s.ID] = &c
	return nil
}

// Load returns nil when no snapshot exists for id.
func (m *MemorySaver) Load(ctx context.Context, id string) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.store[id]
	if !ok {
		return nil, nil
	}
	c := *s
	return &c, nil
}

func (m *MemorySaver) LoadAll(ctx context.Context) ([]*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Snapshot, 0, len(m.store))
	for _, s := range m.store {
		c := *s
		out = append(out, &c)
	}
	return out, nil
}
