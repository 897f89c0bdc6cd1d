package ws

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/syncpad/syncpad/internal/engine"
	"github.com/syncpad/syncpad/internal/presence"
	"github.com/syncpad/syncpad/pkg/logger"
)

const sendBuffer = 512

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Gateway upgrades HTTP requests to websocket connections and translates
// inbound frames into engine commands. A malformed frame only costs the
// sending session its request, never anyone else's state.
type Gateway struct {
	hub    *Hub
	engine *engine.Engine
}

func NewGateway(hub *Hub, eng *engine.Engine) *Gateway {
	return &Gateway{hub: hub, engine: eng}
}

// Handle is the gin handler for the /ws route.
func (g *Gateway) Handle(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warnf("websocket upgrade failed: %v", err)
		return
	}

	client := &Client{ID: uuid.New().String(), conn: conn, Send: make(chan []byte, sendBuffer)}
	g.hub.add(client)
	logger.Infof("connection %s opened", client.ID)

	go g.writePump(client)

	// the listing goes out as soon as the connection is up
	g.engine.Connect(client.ID)

	g.readPump(client)

	g.engine.Disconnect(client.ID)
	g.hub.remove(client)
	conn.Close()
	logger.Infof("connection %s closed", client.ID)
}

func (g *Gateway) writePump(c *Client) {
	for {
		frame, ok := <-c.Send
		if !ok {
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			logger.Debugf("write to %s failed: %v", c.ID, err)
			return
		}
	}
}

func (g *Gateway) readPump(c *Client) {
	for {
		var env envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			logger.Debugf("read from %s ended: %v", c.ID, err)
			return
		}
		g.dispatch(c.ID, env)
	}
}

// dispatch maps one inbound frame to its engine command.
func (g *Gateway) dispatch(connID string, env envelope) {
	switch env.Event {
	case engine.EventUserJoined:
		var p struct {
			Username string `json:"username"`
			Color    string `json:"color"`
		}
		if !decode(connID, env, &p) {
			return
		}
		if err := g.engine.Register(connID, p.Username, p.Color); err != nil {
			logger.Warnf("register %s rejected: %v", connID, err)
		}

	case engine.EventCreateDocument:
		var p struct {
			Title string `json:"title"`
		}
		if !decode(connID, env, &p) {
			return
		}
		g.engine.CreateDocument(connID, p.Title)

	case engine.EventDeleteDocument:
		var docID string
		if !decode(connID, env, &docID) {
			return
		}
		if err := g.engine.DeleteDocument(docID); err != nil {
			logger.Debugf("delete %s by %s: %v", docID, connID, err)
		}

	case engine.EventJoinDocument:
		var docID string
		if !decode(connID, env, &docID) {
			return
		}
		if err := g.engine.Join(connID, docID); err != nil {
			logger.Debugf("join %s by %s: %v", docID, connID, err)
		}

	case engine.EventDocumentChange:
		var p struct {
			Content string `json:"content"`
			Version int    `json:"version"`
		}
		if !decode(connID, env, &p) {
			return
		}
		g.engine.Edit(connID, p.Content, p.Version)

	case engine.EventEditingState:
		var editing bool
		if !decode(connID, env, &editing) {
			return
		}
		g.engine.SetEditing(connID, editing)

	case engine.EventCursorUpdate:
		var p struct {
			Position  int                `json:"position"`
			Selection presence.Selection `json:"selection"`
		}
		if !decode(connID, env, &p) {
			return
		}
		g.engine.SetCursor(connID, p.Position, p.Selection)

	case engine.EventUpdateDocumentTitle:
		var p struct {
			DocID string `json:"docId"`
			Title string `json:"title"`
		}
		if !decode(connID, env, &p) {
			return
		}
		if err := g.engine.RenameDocument(p.DocID, p.Title); err != nil {
			logger.Debugf("rename %s by %s: %v", p.DocID, connID, err)
		}

	default:
		logger.Debugf("unknown event %q from %s", env.Event, connID)
	}
}

func decode(connID string, env envelope, v any) bool {
	if err := json.Unmarshal(env.Data, v); err != nil {
		logger.Warnf("malformed %s payload from %s: %v", env.Event, connID, err)
		return false
	}
	return true
}
