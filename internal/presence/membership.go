package presence

import (
	"sort"
	"sync"
)

// Memberships is the derived document -> viewing-sessions index. The engine
// keeps it consistent with each Session.Document under its single-writer
// discipline; an entry whose set becomes empty is removed, never retained.
type Memberships struct {
	mu    sync.RWMutex
	index map[string]map[string]struct{}
}

func NewMemberships() *Memberships {
	return &Memberships{index: make(map[string]map[string]struct{})}
}

func (m *Memberships) Join(docID, sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.index[docID]
	if !ok {
		set = make(map[string]struct{})
		m.index[docID] = set
	}
	set[sessionID] = struct{}{}
}

func (m *Memberships) Leave(docID, sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.index[docID]
	if !ok {
		return
	}
	delete(set, sessionID)
	if len(set) == 0 {
		delete(m.index, docID)
	}
}

// Members returns the session ids viewing docID in a stable order.
func (m *Memberships) Members(docID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	set, ok := m.index[docID]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Drop removes the whole entry for docID and returns the evicted members.
func (m *Memberships) Drop(docID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.index[docID]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	delete(m.index, docID)
	return out
}

func (m *Memberships) Contains(docID, sessionID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	set, ok := m.index[docID]
	if !ok {
		return false
	}
	_, ok = set[sessionID]
	return ok
}
