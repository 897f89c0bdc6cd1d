// Package relay fans room broadcasts out to peer server nodes over redis
// pub/sub. Delivery is best-effort: a node that misses a relayed frame is
// resynchronized the next time its clients join or edit.
package relay

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/syncpad/syncpad/pkg/logger"
)

const channelPrefix = "doc:"

// Message is the relayed frame: origin node, room, event and raw payload.
type Message struct {
	Node  string          `json:"node"`
	DocID string          `json:"docId"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Handler receives frames published by other nodes.
type Handler func(docID, event string, data json.RawMessage)

// Redis publishes and subscribes on one channel per document. Each instance
// carries a random node id so it can skip its own publications.
type Redis struct {
	client *redis.Client
	node   string
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client, node: uuid.New().String()}
}

// Publish sends one room broadcast to peer nodes. Fire-and-forget with a
// short timeout so the engine is never held up by redis.
func (r *Redis) Publish(docID, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Errorf("relay marshal %s: %v", event, err)
		return
	}
	frame, err := json.Marshal(Message{Node: r.node, DocID: docID, Event: event, Data: data})
	if err != nil {
		logger.Errorf("relay marshal frame: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if err := r.client.Publish(ctx, channelPrefix+docID, frame).Err(); err != nil {
		logger.Warnf("relay publish %s: %v", event, err)
	}
}

// Subscribe starts a background loop delivering peer frames to handler until
// ctx is done. Frames from this node are skipped.
func (r *Redis) Subscribe(ctx context.Context, handler Handler) {
	pubsub := r.client.PSubscribe(ctx, channelPrefix+"*")
	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var m Message
				if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
					logger.Warnf("relay decode on %s: %v", msg.Channel, err)
					continue
				}
				if m.Node == r.node {
					continue
				}
				docID := m.DocID
				if docID == "" {
					docID = strings.TrimPrefix(msg.Channel, channelPrefix)
				}
				handler(docID, m.Event, m.Data)
			}
		}
	}()
}
