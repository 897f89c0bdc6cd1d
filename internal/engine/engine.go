// Package engine is the server-side synchronization authority. Every inbound
// event is a command handled to completion under one engine-wide mutex, so
// mutations of the document store, the presence registry and the membership
// index never interleave. Outbound messages go through the Sender interface,
// which keeps the engine testable without a live transport.
package engine

import (
	"errors"
	"sync"
	"time"

	"github.com/syncpad/syncpad/internal/document"
	"github.com/syncpad/syncpad/internal/presence"
	"github.com/syncpad/syncpad/pkg/logger"
	"github.com/syncpad/syncpad/pkg/metrics"
)

var ErrNoSession = errors.New("session not registered")

// Sender delivers messages to connected sessions. Sends are fire-and-forget;
// the transport drops deliveries to connections that are already gone.
type Sender interface {
	Send(sessionID, event string, payload any)
	SendAll(event string, payload any)
}

// Relay optionally republishes room broadcasts to peer nodes.
type Relay interface {
	Publish(docID, event string, payload any)
}

type Options struct {
	// SaveAckDelay is how long after an accepted edit the deferred
	// document-saved acknowledgment fires.
	SaveAckDelay time.Duration
	Relay        Relay
}

type Engine struct {
	mu      sync.Mutex
	store   *document.Store
	reg     *presence.Registry
	members *presence.Memberships
	sender  Sender
	relay   Relay

	saveAckDelay time.Duration
}

func New(store *document.Store, sender Sender, opts Options) *Engine {
	delay := opts.SaveAckDelay
	if delay <= 0 {
		delay = 2 * time.Second
	}
	return &Engine{
		store:        store,
		reg:          presence.NewRegistry(),
		members:      presence.NewMemberships(),
		sender:       sender,
		relay:        opts.Relay,
		saveAckDelay: delay,
	}
}

// Connect pushes the current document listing to a freshly opened connection.
func (e *Engine) Connect(connID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sender.Send(connID, EventDocumentsList, e.store.List())
}

// Register creates the presence session for a connection.
func (e *Engine) Register(connID, username, color string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	metrics.EventsProcessed.WithLabelValues(EventUserJoined).Inc()

	if _, err := e.reg.Register(connID, username, color); err != nil {
		return err
	}
	metrics.ConnectedSessions.Set(float64(e.reg.Count()))
	e.sender.Send(connID, EventUserRegistered, UserRegistered{UserID: connID})
	logger.Infof("user %s registered on %s", username, connID)
	return nil
}

// CreateDocument adds a document, refreshes everyone's listing, and confirms
// to the creator when connID is set (the REST surface passes an empty id).
func (e *Engine) CreateDocument(connID, title string) *document.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	metrics.EventsProcessed.WithLabelValues(EventCreateDocument).Inc()

	d := e.store.Create(title)
	metrics.OpenDocuments.Set(float64(e.store.Count()))
	e.sender.SendAll(EventDocumentsList, e.store.List())
	if connID != "" {
		e.sender.Send(connID, EventDocumentCreated, d)
	}
	return d
}

// DeleteDocument purges a document, notifying every member exactly once and
// dropping the membership entry. The default document is exempt.
func (e *Engine) DeleteDocument(docID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	metrics.EventsProcessed.WithLabelValues(EventDeleteDocument).Inc()

	if err := e.store.Delete(docID); err != nil {
		return err
	}
	metrics.OpenDocuments.Set(float64(e.store.Count()))
	for _, member := range e.members.Drop(docID) {
		e.reg.SetDocument(member, "")
		e.sender.Send(member, EventDocumentDeleted, docID)
	}
	e.publish(docID, EventDocumentDeleted, docID)
	e.sender.SendAll(EventDocumentsList, e.store.List())
	return nil
}

// Join moves a session into a document: it first leaves any current document
// (notifying that room of the departure), then validates the target, adds the
// membership, replies with a full snapshot plus the room's presence list, and
// announces the newcomer to the rest of the room.
func (e *Engine) Join(connID, docID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	metrics.EventsProcessed.WithLabelValues(EventJoinDocument).Inc()

	sess, ok := e.reg.Get(connID)
	if !ok {
		return ErrNoSession
	}
	e.leaveLocked(sess)

	doc, err := e.store.Get(docID)
	if err != nil {
		return err
	}

	e.members.Join(docID, connID)
	sess, _ = e.reg.SetDocument(connID, docID)

	peers := make([]presence.Session, 0)
	for _, member := range e.members.Members(docID) {
		if member == connID {
			continue
		}
		if p, ok := e.reg.Get(member); ok {
			peers = append(peers, p)
		}
	}
	e.sender.Send(connID, EventDocumentContent, DocumentContent{Document: doc, Users: peers})
	e.broadcastRoomLocked(docID, connID, EventUserJoinedDocument, PeerJoined{
		UserID:   connID,
		Username: sess.Username,
		Color:    sess.Color,
	})
	return nil
}

// Edit applies a version-gated last-write-wins content change. A stale client
// gets the authoritative snapshot back and nothing is broadcast; an accepted
// edit is fanned out to the rest of the room and a deferred save
// acknowledgment is scheduled for the sender alone.
func (e *Engine) Edit(connID, content string, clientVersion int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	metrics.EventsProcessed.WithLabelValues(EventDocumentChange).Inc()

	sess, ok := e.reg.Get(connID)
	if !ok || sess.Document == "" {
		return
	}
	docID := sess.Document

	doc, err := e.store.ApplyEdit(docID, content, clientVersion)
	switch {
	case errors.Is(err, document.ErrVersionConflict):
		metrics.VersionConflicts.Inc()
		logger.Debugf("edit conflict on %s: %s held v%d, store at v%d", docID, connID, clientVersion, doc.Version)
		e.sender.Send(connID, EventConflictResolved, ConflictNotice{Document: doc, Message: ConflictMessage})
		return
	case err != nil:
		return
	}

	e.broadcastRoomLocked(docID, connID, EventDocumentContentUpdate, ContentUpdate{
		Content:   content,
		Version:   doc.Version,
		UpdatedBy: sess.Username,
	})

	// Deferred persistence confirmation. The timer callback re-enters the
	// engine lock at fire time; no lock is held across the delay.
	time.AfterFunc(e.saveAckDelay, func() {
		e.sendSaveAck(connID, docID)
	})
}

func (e *Engine) sendSaveAck(connID, docID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	sess, ok := e.reg.Get(connID)
	if !ok || sess.Document != docID {
		return
	}
	doc, err := e.store.Get(docID)
	if err != nil {
		return
	}
	e.sender.Send(connID, EventDocumentSaved, SaveAck{
		DocumentID: docID,
		Version:    doc.Version,
		SavedAt:    doc.UpdatedAt,
	})
}

// SetEditing updates the editing flag and tells the rest of the room.
func (e *Engine) SetEditing(connID string, editing bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	metrics.EventsProcessed.WithLabelValues(EventEditingState).Inc()

	sess, ok := e.reg.SetEditing(connID, editing)
	if !ok || sess.Document == "" {
		return
	}
	e.broadcastRoomLocked(sess.Document, connID, EventUserEditingState, EditingState{
		UserID:    connID,
		Username:  sess.Username,
		IsEditing: editing,
	})
}

// SetCursor updates cursor/selection and tells the rest of the room.
func (e *Engine) SetCursor(connID string, position int, sel presence.Selection) {
	e.mu.Lock()
	defer e.mu.Unlock()
	metrics.EventsProcessed.WithLabelValues(EventCursorUpdate).Inc()

	sess, ok := e.reg.SetCursor(connID, position, sel)
	if !ok || sess.Document == "" {
		return
	}
	e.broadcastRoomLocked(sess.Document, connID, EventUserCursorUpdate, CursorUpdate{
		UserID:    connID,
		Username:  sess.Username,
		Color:     sess.Color,
		Position:  position,
		Selection: sel,
	})
}

// RenameDocument updates the title, refreshes the global listing for every
// connection, and notifies the whole room (sender included).
func (e *Engine) RenameDocument(docID, title string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	metrics.EventsProcessed.WithLabelValues(EventUpdateDocumentTitle).Inc()

	if _, err := e.store.Rename(docID, title); err != nil {
		return err
	}
	e.sender.SendAll(EventDocumentsList, e.store.List())
	e.broadcastRoomLocked(docID, "", EventDocumentTitleUpdated, TitleUpdate{DocID: docID, Title: title})
	return nil
}

// Disconnect removes the session from its room (notifying the remaining
// members) and from the registry.
func (e *Engine) Disconnect(connID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, ok := e.reg.Get(connID)
	if !ok {
		return
	}
	e.leaveLocked(sess)
	e.reg.Remove(connID)
	metrics.ConnectedSessions.Set(float64(e.reg.Count()))
	logger.Infof("user %s disconnected (%s)", sess.Username, connID)
}

// leaveLocked evicts the session from its current document, if any, and
// notifies the remaining members. Caller holds e.mu.
func (e *Engine) leaveLocked(sess presence.Session) {
	if sess.Document == "" {
		return
	}
	e.members.Leave(sess.Document, sess.ID)
	e.reg.SetDocument(sess.ID, "")
	e.broadcastRoomLocked(sess.Document, sess.ID, EventUserLeftDocument, PeerLeft{
		UserID:   sess.ID,
		Username: sess.Username,
	})
}

// broadcastRoomLocked fans an event out to every member of docID except
// exclude, and republishes it to peer nodes when a relay is configured.
// Caller holds e.mu.
func (e *Engine) broadcastRoomLocked(docID, exclude, event string, payload any) {
	for _, member := range e.members.Members(docID) {
		if member == exclude {
			continue
		}
		e.sender.Send(member, event, payload)
	}
	e.publish(docID, event, payload)
}

func (e *Engine) publish(docID, event string, payload any) {
	if e.relay != nil {
		e.relay.Publish(docID, event, payload)
	}
}

// DeliverRemote forwards a relayed envelope from a peer node to the local
// members of docID. It never republishes.
func (e *Engine) DeliverRemote(docID, event string, payload any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, member := range e.members.Members(docID) {
		e.sender.Send(member, event, payload)
	}
}

// ListDocuments snapshots the store for the REST surface.
func (e *Engine) ListDocuments() []*document.Document {
	return e.store.List()
}

func (e *Engine) GetDocument(id string) (*document.Document, error) {
	return e.store.Get(id)
}

// Session exposes a presence snapshot, mainly for tests and diagnostics.
func (e *Engine) Session(connID string) (presence.Session, bool) {
	return e.reg.Get(connID)
}

// Members exposes the membership set of a document.
func (e *Engine) Members(docID string) []string {
	return e.members.Members(docID)
}
