package snapshot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/syncpad/syncpad/internal/document"
)

func TestMemorySaverSaveLoad(t *testing.T) {
	m := NewMemorySaver()
	ctx := context.Background()

	doc := &document.Document{
		ID:        "d1",
		Title:     "notes",
		Content:   "hello",
		Version:   3,
		CreatedAt: time.Now().Add(-time.Hour),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, m.Save(ctx, FromDocument(doc)))

	got, err := m.Load(ctx, "d1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, 3, got.Version)
	require.False(t, got.SavedAt.IsZero())

	back := got.ToDocument()
	require.Equal(t, doc.ID, back.ID)
	require.Equal(t, doc.Content, back.Content)
	require.Equal(t, doc.Version, back.Version)

	missing, err := m.Load(ctx, "nope")
	require.NoError(t, err)
	require.Nil(t, missing)

	all, err := m.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestMemorySaverOverwrites(t *testing.T) {
	m := NewMemorySaver()
	ctx := context.Background()

	require.NoError(t, m.Save(ctx, &Snapshot{ID: "d1", Version: 1}))
	require.NoError(t, m.Save(ctx, &Snapshot{ID: "d1", Version: 2}))

	got, err := m.Load(ctx, "d1")
	require.NoError(t, err)
	require.Equal(t, 2, got.Version)
}
