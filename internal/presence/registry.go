package presence

import (
	"errors"
	"strings"
	"sync"
)

var ErrEmptyUsername = errors.New("username is required")

// Selection is a half-open character range of a user's current selection.
type Selection struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Session is one connected client's live presence state. Its id equals the
// transport connection id and it lives exactly as long as the connection.
type Session struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Color     string    `json:"color"`
	Document  string    `json:"currentDocument,omitempty"`
	Editing   bool      `json:"isEditing"`
	Cursor    int       `json:"cursorPosition"`
	Selection Selection `json:"selection"`
}

// Registry tracks all connected sessions keyed by connection id. Mutations
// are serialized by the engine; the internal lock only guards against
// concurrent reads from the HTTP surface.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Register creates a session in the unjoined state with the cursor at 0.
func (r *Registry) Register(connID, username, color string) (Session, error) {
	if strings.TrimSpace(username) == "" {
		return Session{}, ErrEmptyUsername
	}
	s := &Session{ID: connID, Username: username, Color: color}
	r.mu.Lock()
	r.sessions[connID] = s
	r.mu.Unlock()
	return *s, nil
}

func (r *Registry) Get(connID string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[connID]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

func (r *Registry) Remove(connID string) {
	r.mu.Lock()
	delete(r.sessions, connID)
	r.mu.Unlock()
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// SetDocument records which document the session currently views; empty
// means unjoined.
func (r *Registry) SetDocument(connID, docID string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[connID]
	if !ok {
		return Session{}, false
	}
	s.Document = docID
	return *s, true
}

// SetEditing flips the editing flag. No-op when the session is unknown.
func (r *Registry) SetEditing(connID string, editing bool) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[connID]
	if !ok {
		return Session{}, false
	}
	s.Editing = editing
	return *s, true
}

// SetCursor records the cursor offset and selection range. No-op when the
// session is unknown.
func (r *Registry) SetCursor(connID string, position int, sel Selection) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[connID]
	if !ok {
		return Session{}, false
	}
	s.Cursor = position
	s.Selection = sel
	return *s, true
}
