package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"mindmemos/middleware"
	"mindmemos/models"
	svc "mindmemos/pkg/services"
	"mindmemos/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func dmStatus(err error) (int, string) {
	switch {
	case errors.Is(err, svc.ErrInvalidRequest):
		return http.StatusBadRequest, "Invalid request"
	case errors.Is(err, svc.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, svc.ErrForbidden):
		return http.StatusForbidden, "You are not part of this conversation"
	default:
		return http.StatusInternalServerError, "Something went wrong"
	}
}

func conversationToJSON(conv *models.Conversation, other *models.User) gin.H {
	return gin.H{
		"id":              conv.ID,
		"other_user_id":   other.ID,
		"other_username":  other.Username,
		"last_message":    conv.LastMessage,
		"last_message_at": conv.LastMessageAt,
		"created_at":      conv.CreatedAt,
	}
}

func messageToJSON(m *models.DirectMessage) gin.H {
	return gin.H{
		"id":              m.ID,
		"conversation_id": m.ConversationID,
		"sender_id":       m.SenderID,
		"receiver_id":     m.ReceiverID,
		"content":         m.Content,
		"is_read":         m.IsRead,
		"created_at":      m.CreatedAt,
	}
}

// ListConversations is the conversation directory: every chat the caller is
// in, most recently active first, with unread counts.
func ListConversations(db *gorm.DB) gin.HandlerFunc {
	dm := svc.NewDMService(db)
	return func(c *gin.Context) {
		uid := middleware.CurrentUserID(c)

		summaries, err := dm.ListConversations(c.Request.Context(), uid)
		if err != nil {
			status, msg := dmStatus(err)
			c.JSON(status, gin.H{"msg": msg})
			return
		}

		out := make([]gin.H, 0, len(summaries))
		for _, s := range summaries {
			out = append(out, gin.H{
				"id":              s.ConversationID,
				"other_user_id":   s.OtherUserID,
				"other_username":  s.OtherUsername,
				"last_message":    s.LastMessage,
				"last_message_at": s.LastMessageAt,
				"unread_count":    s.UnreadCount,
			})
		}
		c.JSON(http.StatusOK, gin.H{"conversations": out})
	}
}

// OpenConversation returns the conversation between the caller and another
// user, creating it when it does not exist yet.
func OpenConversation(db *gorm.DB) gin.HandlerFunc {
	dm := svc.NewDMService(db)
	return func(c *gin.Context) {
		uid := middleware.CurrentUserID(c)

		var body struct {
			UserID uint `json:"user_id"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || body.UserID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "user_id is required"})
			return
		}

		conv, other, err := dm.GetOrCreateConversation(c.Request.Context(), uid, body.UserID)
		if err != nil {
			status, msg := dmStatus(err)
			if errors.Is(err, svc.ErrNotFound) {
				msg = "User not found"
			}
			c.JSON(status, gin.H{"msg": msg})
			return
		}
		c.JSON(http.StatusOK, gin.H{"conversation": conversationToJSON(conv, other)})
	}
}

// ListMessages returns the most recent messages of a conversation in
// chronological order. ?limit= caps the window.
func ListMessages(db *gorm.DB) gin.HandlerFunc {
	dm := svc.NewDMService(db)
	return func(c *gin.Context) {
		uid := middleware.CurrentUserID(c)

		convID, err := strconv.ParseUint(c.Param("conversation_id"), 10, 64)
		if err != nil || convID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid conversation id"})
			return
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

		msgs, err := dm.ListMessages(c.Request.Context(), uid, uint(convID), limit)
		if err != nil {
			status, msg := dmStatus(err)
			c.JSON(status, gin.H{"msg": msg})
			return
		}

		out := make([]gin.H, 0, len(msgs))
		for i := range msgs {
			out = append(out, messageToJSON(&msgs[i]))
		}
		c.JSON(http.StatusOK, gin.H{"messages": out})
	}
}

// CreateMessage is the REST fallback for sending a direct message. Connected
// sockets of both participants still get the dm:message event.
func CreateMessage(db *gorm.DB, hub *ws.Hub) gin.HandlerFunc {
	dm := svc.NewDMService(db)
	return func(c *gin.Context) {
		uid := middleware.CurrentUserID(c)

		convID, err := strconv.ParseUint(c.Param("conversation_id"), 10, 64)
		if err != nil || convID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid conversation id"})
			return
		}

		var body struct {
			ReceiverID uint   `json:"receiver_id"`
			Content    string `json:"content"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid request"})
			return
		}

		msg, err := dm.SendMessage(c.Request.Context(), uid, uint(convID), body.ReceiverID, body.Content)
		if err != nil {
			status, errMsg := dmStatus(err)
			c.JSON(status, gin.H{"msg": errMsg})
			return
		}

		if hub != nil {
			event := ws.MessageEvent(msg)
			hub.BroadcastToUser(msg.SenderID, event)
			hub.BroadcastToUser(msg.ReceiverID, event)
		}

		c.JSON(http.StatusCreated, gin.H{"message": messageToJSON(msg)})
	}
}

// MarkConversationRead marks every message sent to the caller in a
// conversation as read.
func MarkConversationRead(db *gorm.DB) gin.HandlerFunc {
	dm := svc.NewDMService(db)
	return func(c *gin.Context) {
		uid := middleware.CurrentUserID(c)

		convID, err := strconv.ParseUint(c.Param("conversation_id"), 10, 64)
		if err != nil || convID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid conversation id"})
			return
		}

		if err := dm.MarkRead(c.Request.Context(), uid, uint(convID)); err != nil {
			status, msg := dmStatus(err)
			c.JSON(status, gin.H{"msg": msg})
			return
		}
		c.JSON(http.StatusOK, gin.H{"msg": "ok"})
	}
}
