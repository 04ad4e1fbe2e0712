package ws

import (
	"encoding/json"
	"log"
)

// Hub is the connection registry for the messaging gateway. It maps each
// user id to the set of that user's live connections (the "personal group")
// and fans events out to all of them. All map access happens on the Run
// loop, never from handler goroutines.
type Hub struct {
	clients map[uint]map[*Client]bool // userID -> set of connections

	register   chan *Client
	unregister chan *Client
	broadcast  chan *userMessage
	direct     chan *clientMessage
}

type userMessage struct {
	userID  uint
	payload []byte
}

type clientMessage struct {
	client  *Client
	payload []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *userMessage, 256),
		direct:     make(chan *clientMessage, 256),
	}
}

// Run starts the Hub's event loop. Call this in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			if _, ok := h.clients[c.userID]; !ok {
				h.clients[c.userID] = make(map[*Client]bool)
			}
			h.clients[c.userID][c] = true
			log.Printf("[ws] user %d connected (%d connections)", c.userID, len(h.clients[c.userID]))

		case c := <-h.unregister:
			if conns, ok := h.clients[c.userID]; ok {
				if _, exists := conns[c]; exists {
					delete(conns, c)
					close(c.send)
				}
				if len(conns) == 0 {
					delete(h.clients, c.userID)
				}
				log.Printf("[ws] user %d disconnected", c.userID)
			}

		case m := <-h.broadcast:
			conns := h.clients[m.userID]
			for c := range conns {
				select {
				case c.send <- m.payload:
				default:
					// slow consumer; drop the connection, not the loop
					close(c.send)
					delete(conns, c)
				}
			}
			if len(conns) == 0 {
				delete(h.clients, m.userID)
			}

		case m := <-h.direct:
			conns, ok := h.clients[m.client.userID]
			if !ok || !conns[m.client] {
				continue // already unregistered
			}
			select {
			case m.client.send <- m.payload:
			default:
				close(m.client.send)
				delete(conns, m.client)
				if len(conns) == 0 {
					delete(h.clients, m.client.userID)
				}
			}
		}
	}
}

// Register enrolls a connection into its user's personal group.
func (h *Hub) Register(c *Client) {
	h.register <- c
}

// Unregister removes a connection; its send channel is closed by the loop.
func (h *Hub) Unregister(c *Client) {
	h.unregister <- c
}

// BroadcastToUser delivers an event to every live connection of one user.
// Delivery to a user with no open connections is a no-op.
func (h *Hub) BroadcastToUser(userID uint, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] marshal error: %v", err)
		return
	}
	h.broadcast <- &userMessage{userID: userID, payload: payload}
}

// sendToClient delivers an event to a single connection. Like broadcasts,
// the actual channel send happens on the Run loop so it can never race with
// the loop closing the client's send channel.
func (h *Hub) sendToClient(c *Client, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	h.direct <- &clientMessage{client: c, payload: payload}
}
