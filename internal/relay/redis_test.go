package relay

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type captured struct {
	docID string
	event string
	data  json.RawMessage
}

type capture struct {
	mu   sync.Mutex
	msgs []captured
}

func (c *capture) handler(docID, event string, data json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, captured{docID: docID, event: event, data: data})
}

func (c *capture) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.msgs)
}

func TestRelayDeliversToPeerNodes(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	clientA := redis.NewClient(&redis.Options{Addr: m.Addr()})
	clientB := redis.NewClient(&redis.Options{Addr: m.Addr()})

	nodeA := NewRedis(clientA)
	nodeB := NewRedis(clientB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var recvA, recvB capture
	nodeA.Subscribe(ctx, recvA.handler)
	nodeB.Subscribe(ctx, recvB.handler)

	// give the subscriptions a moment to register
	time.Sleep(50 * time.Millisecond)

	nodeA.Publish("doc-1", "document-content-update", map[string]any{"content": "hi", "version": 2})

	require.Eventually(t, func() bool { return recvB.len() == 1 }, 2*time.Second, 10*time.Millisecond)

	recvB.mu.Lock()
	got := recvB.msgs[0]
	recvB.mu.Unlock()
	require.Equal(t, "doc-1", got.docID)
	require.Equal(t, "document-content-update", got.event)
	require.JSONEq(t, `{"content":"hi","version":2}`, string(got.data))

	// the origin node never hears its own publication
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, 0, recvA.len())
}

func TestRelayIgnoresGarbageFrames(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	node := NewRedis(client)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var recv capture
	node.Subscribe(ctx, recv.handler)
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, client.Publish(ctx, "doc:doc-1", "not-json").Err())
	peer := NewRedis(client)
	peer.Publish("doc-1", "cursor-update", map[string]int{"position": 3})

	require.Eventually(t, func() bool { return recv.len() == 1 }, 2*time.Second, 10*time.Millisecond)
	recv.mu.Lock()
	defer recv.mu.Unlock()
	require.Equal(t, "cursor-update", recv.msgs[0].event)
}
