package engine

import (
	"time"

	"github.com/syncpad/syncpad/internal/document"
	"github.com/syncpad/syncpad/internal/presence"
)

// Wire vocabulary. Client events arrive through the gateway; server events
// are produced by engine commands and fanned out by the Sender.
const (
	// client -> server
	EventUserJoined          = "user-joined"
	EventCreateDocument      = "create-document"
	EventDeleteDocument      = "delete-document"
	EventJoinDocument        = "join-document"
	EventDocumentChange      = "document-change"
	EventEditingState        = "editing-state"
	EventCursorUpdate        = "cursor-update"
	EventUpdateDocumentTitle = "update-document-title"

	// server -> client
	EventUserRegistered        = "user-registered"
	EventDocumentsList         = "documents-list"
	EventDocumentCreated       = "document-created"
	EventDocumentDeleted       = "document-deleted"
	EventDocumentContent       = "document-content"
	EventUserJoinedDocument    = "user-joined-document"
	EventUserLeftDocument      = "user-left-document"
	EventDocumentContentUpdate = "document-content-update"
	EventConflictResolved      = "conflict-resolved"
	EventDocumentSaved         = "document-saved"
	EventUserEditingState      = "user-editing-state"
	EventUserCursorUpdate      = "user-cursor-update"
	EventDocumentTitleUpdated  = "document-title-updated"
)

// ConflictMessage is the human-readable notice sent alongside the
// authoritative snapshot when an edit loses the version gate.
const ConflictMessage = "Your changes conflicted with recent updates. Document refreshed."

type UserRegistered struct {
	UserID string `json:"userId"`
}

// DocumentContent is the join reply: a full snapshot plus the presence list
// of the other sessions already viewing the document.
type DocumentContent struct {
	Document *document.Document `json:"document"`
	Users    []presence.Session `json:"users"`
}

type PeerJoined struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Color    string `json:"color"`
}

type PeerLeft struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type ContentUpdate struct {
	Content   string `json:"content"`
	Version   int    `json:"version"`
	UpdatedBy string `json:"updatedBy"`
}

type ConflictNotice struct {
	Document *document.Document `json:"document"`
	Message  string             `json:"message"`
}

type SaveAck struct {
	DocumentID string    `json:"documentId"`
	Version    int       `json:"version"`
	SavedAt    time.Time `json:"savedAt"`
}

type EditingState struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	IsEditing bool   `json:"isEditing"`
}

type CursorUpdate struct {
	UserID    string             `json:"userId"`
	Username  string             `json:"username"`
	Color     string             `json:"color"`
	Position  int                `json:"position"`
	Selection presence.Selection `json:"selection"`
}

type TitleUpdate struct {
	DocID string `json:"docId"`
	Title string `json:"title"`
}
