package ws

import (
	"time"

	"mindmemos/models"
)

// Client -> server event types.
const (
	EventDMSend     = "dm:send"
	EventDMMarkRead = "dm:mark-read"
)

// Server -> client event types.
const (
	EventDMMessage    = "dm:message"
	EventDMMarkedRead = "dm:marked-read"
	EventDMError      = "dm:error"
)

// inboundEvent is the flat envelope clients send over the gateway.
type inboundEvent struct {
	Type           string `json:"type"`
	ConversationID uint   `json:"conversationId"`
	ReceiverID     uint   `json:"receiverId"`
	Content        string `json:"content"`
}

// Event is the envelope for every server -> client payload.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type messagePayload struct {
	ID             uint      `json:"_id"`
	ConversationID uint      `json:"conversationId"`
	SenderID       uint      `json:"senderId"`
	ReceiverID     uint      `json:"receiverId"`
	Content        string    `json:"content"`
	IsRead         bool      `json:"isRead"`
	CreatedAt      time.Time `json:"createdAt"`
}

type markedReadPayload struct {
	ConversationID uint `json:"conversationId"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// MessageEvent builds the dm:message event for a persisted direct message.
func MessageEvent(m *models.DirectMessage) Event {
	return Event{
		Type: EventDMMessage,
		Data: messagePayload{
			ID:             m.ID,
			ConversationID: m.ConversationID,
			SenderID:       m.SenderID,
			ReceiverID:     m.ReceiverID,
			Content:        m.Content,
			IsRead:         m.IsRead,
			CreatedAt:      m.CreatedAt,
		},
	}
}

func markedReadEvent(conversationID uint) Event {
	return Event{Type: EventDMMarkedRead, Data: markedReadPayload{ConversationID: conversationID}}
}

func errorEvent(msg string) Event {
	return Event{Type: EventDMError, Data: errorPayload{Message: msg}}
}
