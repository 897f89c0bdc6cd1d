package document

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultID is the reserved identifier of the seeded document. It always
// exists and cannot be deleted.
const DefaultID = "default"

// UntitledTitle is used when a create request carries an empty title.
const UntitledTitle = "Untitled Document"

var (
	ErrNotFound        = errors.New("document not found")
	ErrDefaultDocument = errors.New("default document cannot be deleted")
	ErrVersionConflict = errors.New("version conflict")
)

// Store is the in-memory authoritative document store. All state is volatile;
// a process restart resets everything except the re-seeded default document.
type Store struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewStore creates a store seeded with the default document.
func NewStore(defaultTitle, defaultContent string) *Store {
	s := &Store{docs: make(map[string]*Document)}
	now := time.Now()
	s.docs[DefaultID] = &Document{
		ID:        DefaultID,
		Title:     defaultTitle,
		Content:   defaultContent,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s
}

// Create adds a new empty document at version 1 with a fresh id.
// An empty title falls back to UntitledTitle.
func (s *Store) Create(title string) *Document {
	if strings.TrimSpace(title) == "" {
		title = UntitledTitle
	}
	now := time.Now()
	d := &Document{
		ID:        uuid.New().String(),
		Title:     title,
		Content:   "",
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.mu.Lock()
	s.docs[d.ID] = d
	s.mu.Unlock()
	return d.Clone()
}

func (s *Store) Get(id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d.Clone(), nil
}

// List returns a snapshot of all documents ordered by creation time then id,
// so consecutive calls over unchanged state yield the same sequence.
func (s *Store) List() []*Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Document, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, d.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Delete removes a document. The default document is exempt.
func (s *Store) Delete(id string) error {
	if id == DefaultID {
		return ErrDefaultDocument
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

// ApplyEdit applies a full-content edit gated on the version the client last
// observed. A client strictly behind the current version is rejected and the
// store is left untouched; the returned snapshot is then the authoritative
// current state for resynchronization. On acceptance the version is bumped by
// exactly 1 regardless of the client's claimed version.
func (s *Store) ApplyEdit(id, content string, clientVersion int) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	if clientVersion < d.Version {
		return d.Clone(), ErrVersionConflict
	}
	d.Content = content
	d.UpdatedAt = time.Now()
	d.Version++
	return d.Clone(), nil
}

// Rename updates the title and touches UpdatedAt. Content and version are
// unaffected.
func (s *Store) Rename(id, title string) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	d.Title = title
	d.UpdatedAt = time.Now()
	return d.Clone(), nil
}

// Restore inserts a document loaded from an external snapshot, overwriting
// any existing entry with the same id. Used only during bootstrap.
func (s *Store) Restore(d *Document) {
	if d == nil || d.ID == "" {
		return
	}
	s.mu.Lock()
	s.docs[d.ID] = d.Clone()
	s.mu.Unlock()
}
