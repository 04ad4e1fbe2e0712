package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"mindmemos/pkg/services"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 1 << 20 // 1MB
	sendBufSize    = 64
)

// Client is one authenticated gateway connection. Identity is bound at
// handshake time and never changes for the connection's lifetime.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	dm       *services.DMService
	userID   uint
	username string

	send chan []byte
}

func NewClient(hub *Hub, conn *websocket.Conn, dm *services.DMService, userID uint, username string) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		dm:       dm,
		userID:   userID,
		username: username,
		send:     make(chan []byte, sendBufSize),
	}
}

// ReadPump consumes client events until the connection drops. Requests on
// one connection are handled in arrival order; a disconnect mid-request
// never rolls back a write that already committed.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		mt, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] read error from user %d: %v", c.userID, err)
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		var ev inboundEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			c.sendEvent(errorEvent("invalid event payload"))
			continue
		}
		c.handleEvent(&ev)
	}
}

// WritePump moves events from the send channel to the socket and keeps the
// connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Printf("[ws] write error to user %d: %v", c.userID, err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleEvent(ev *inboundEvent) {
	switch ev.Type {
	case EventDMSend:
		c.handleSend(ev)
	case EventDMMarkRead:
		c.handleMarkRead(ev)
	default:
		c.sendEvent(errorEvent("unknown event type: " + ev.Type))
	}
}

// handleSend runs the full send pipeline: validate, persist, update the
// conversation summary, then fan out to both participants' personal groups.
// The sender has no distinct ack; its own echoed dm:message is the ack.
func (c *Client) handleSend(ev *inboundEvent) {
	msg, err := c.dm.SendMessage(context.Background(), c.userID, ev.ConversationID, ev.ReceiverID, ev.Content)
	if err != nil {
		c.sendEvent(errorEvent(sendErrorMessage(err)))
		return
	}

	event := MessageEvent(msg)
	c.hub.BroadcastToUser(msg.SenderID, event)
	c.hub.BroadcastToUser(msg.ReceiverID, event)
	log.Printf("[ws] dm sent from %s to user %d", c.username, msg.ReceiverID)
}

// handleMarkRead flips the caller's unread messages and acks only to this
// connection; read state is not propagated to the other participant.
func (c *Client) handleMarkRead(ev *inboundEvent) {
	if ev.ConversationID == 0 {
		c.sendEvent(errorEvent("invalid conversation ID"))
		return
	}
	if err := c.dm.MarkRead(context.Background(), c.userID, ev.ConversationID); err != nil {
		log.Printf("[ws] mark read error for user %d: %v", c.userID, err)
		c.sendEvent(errorEvent("failed to mark messages as read"))
		return
	}
	c.sendEvent(markedReadEvent(ev.ConversationID))
}

func sendErrorMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrInvalidRequest):
		return "message content is required and the conversation ID must be valid"
	case errors.Is(err, services.ErrNotFound):
		return "conversation not found"
	case errors.Is(err, services.ErrForbidden):
		return "not authorized"
	default:
		return "failed to send message"
	}
}

// sendEvent queues an event for this connection only, via the hub loop.
func (c *Client) sendEvent(event Event) {
	c.hub.sendToClient(c, event)
}
