package document

import "time"

// Document is the authoritative in-memory model for a shared text document.
// Content and Version only ever change together through Store.ApplyEdit.
type Document struct {
	ID        string    `json:"id" bson:"_id"`
	Title     string    `json:"title" bson:"title"`
	Content   string    `json:"content" bson:"content"`
	Version   int       `json:"version" bson:"version"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Clone returns an independent copy safe to hand to transports and handlers.
func (d *Document) Clone() *Document {
	c := *d
	return &c
}
