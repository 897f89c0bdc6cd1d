package presence

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterGetRemove(t *testing.T) {
	r := NewRegistry()
	s, err := r.Register("c1", "alice", "#ff0000")
	require.NoError(t, err)
	require.Equal(t, "c1", s.ID)
	require.Empty(t, s.Document)
	require.False(t, s.Editing)
	require.Equal(t, 0, s.Cursor)

	got, ok := r.Get("c1")
	require.True(t, ok)
	require.Equal(t, "alice", got.Username)

	r.Remove("c1")
	_, ok = r.Get("c1")
	require.False(t, ok)
	require.Equal(t, 0, r.Count())
}

func TestRegistryRejectsEmptyUsername(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register("c1", "   ", "#fff")
	require.ErrorIs(t, err, ErrEmptyUsername)
	_, ok := r.Get("c1")
	require.False(t, ok)
}

func TestRegistryMutators(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register("c1", "alice", "#fff")
	require.NoError(t, err)

	s, ok := r.SetEditing("c1", true)
	require.True(t, ok)
	require.True(t, s.Editing)

	s, ok = r.SetCursor("c1", 12, Selection{Start: 3, End: 9})
	require.True(t, ok)
	require.Equal(t, 12, s.Cursor)
	require.Equal(t, Selection{Start: 3, End: 9}, s.Selection)

	s, ok = r.SetDocument("c1", "doc-1")
	require.True(t, ok)
	require.Equal(t, "doc-1", s.Document)

	// unknown sessions are a no-op
	_, ok = r.SetEditing("ghost", true)
	require.False(t, ok)
	_, ok = r.SetCursor("ghost", 1, Selection{})
	require.False(t, ok)
}

func TestMembershipsJoinLeave(t *testing.T) {
	m := NewMemberships()
	m.Join("d1", "c1")
	m.Join("d1", "c2")
	require.Equal(t, []string{"c1", "c2"}, m.Members("d1"))
	require.True(t, m.Contains("d1", "c1"))

	m.Leave("d1", "c1")
	require.Equal(t, []string{"c2"}, m.Members("d1"))

	// emptying the set removes the whole entry
	m.Leave("d1", "c2")
	require.Nil(t, m.Members("d1"))
	require.False(t, m.Contains("d1", "c2"))
}

func TestMembershipsDrop(t *testing.T) {
	m := NewMemberships()
	m.Join("d1", "c1")
	m.Join("d1", "c2")
	evicted := m.Drop("d1")
	require.Equal(t, []string{"c1", "c2"}, evicted)
	require.Nil(t, m.Members("d1"))
	require.Nil(t, m.Drop("d1"))
}
