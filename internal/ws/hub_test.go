package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHubSendTargetsOneClient(t *testing.T) {
	h := NewHub()
	a := &Client{ID: "a", Send: make(chan []byte, 4)}
	b := &Client{ID: "b", Send: make(chan []byte, 4)}
	h.add(a)
	h.add(b)

	h.Send("a", "ping", map[string]string{"k": "v"})

	require.Len(t, a.Send, 1)
	require.Len(t, b.Send, 0)

	var env struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(<-a.Send, &env))
	require.Equal(t, "ping", env.Event)
	require.JSONEq(t, `{"k":"v"}`, string(env.Data))
}

func TestHubSendUnknownClientIsDropped(t *testing.T) {
	h := NewHub()
	h.Send("ghost", "ping", nil)
}

func TestHubSendAll(t *testing.T) {
	h := NewHub()
	a := &Client{ID: "a", Send: make(chan []byte, 4)}
	b := &Client{ID: "b", Send: make(chan []byte, 4)}
	h.add(a)
	h.add(b)

	h.SendAll("refresh", []int{1, 2})
	require.Len(t, a.Send, 1)
	require.Len(t, b.Send, 1)
}

func TestHubFullBufferDropsFrame(t *testing.T) {
	h := NewHub()
	a := &Client{ID: "a", Send: make(chan []byte, 1)}
	h.add(a)

	h.Send("a", "one", nil)
	h.Send("a", "two", nil) // buffer full, dropped
	require.Len(t, a.Send, 1)
}

func TestHubRemoveClosesSend(t *testing.T) {
	h := NewHub()
	a := &Client{ID: "a", Send: make(chan []byte, 1)}
	h.add(a)
	require.Equal(t, 1, h.Count())

	h.remove(a)
	require.Equal(t, 0, h.Count())
	_, open := <-a.Send
	require.False(t, open)

	// double remove is safe
	h.remove(a)
}
