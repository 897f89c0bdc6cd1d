// Package snapshot is the save/load collaborator for document state. The
// sync core treats persistence as external: it hands full document snapshots
// to a Saver on the autosave sweep and may load them back at boot, but never
// depends on durability for correctness.
package snapshot

import (
	"context"
	"time"

	"github.com/syncpad/syncpad/internal/document"
)

// Snapshot is a point-in-time copy of a document plus the time it was saved.
type Snapshot struct {
	ID        string    `bson:"_id" json:"id"`
	Title     string    `bson:"title" json:"title"`
	Content   string    `bson:"content" json:"content"`
	Version   int       `bson:"version" json:"version"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
	SavedAt   time.Time `bson:"savedAt" json:"savedAt"`
}

// Saver persists and recalls document snapshots.
type Saver interface {
	Save(ctx context.Context, s *Snapshot) error
	Load(ctx context.Context, id string) (*Snapshot, error)
	LoadAll(ctx context.Context) ([]*Snapshot, error)
}

// FromDocument builds a snapshot of a document stamped with now.
func FromDocument(d *document.Document) *Snapshot {
	return &Snapshot{
		ID:        d.ID,
		Title:     d.Title,
		Content:   d.Content,
		Version:   d.Version,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
		SavedAt:   time.Now().UTC(),
	}
}

// ToDocument converts a stored snapshot back into a store document.
func (s *Snapshot) ToDocument() *document.Document {
	return &document.Document{
		ID:        s.ID,
		Title:     s.Title,
		Content:   s.Content,
		Version:   s.Version,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
