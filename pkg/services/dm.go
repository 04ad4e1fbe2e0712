package services

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"mindmemos/models"
	utils "mindmemos/pkg/utills"

	"gorm.io/gorm"
)

// Error taxonomy for the messaging core. Controllers and the WebSocket
// gateway map these to HTTP statuses / dm:error events.
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("not authorized")
)

const (
	maxMessageRunes     = 2000
	lastMessageRunes    = 100
	defaultMessageLimit = 50
)

// DMService owns all conversation and direct-message store logic, shared by
// the REST endpoints and the WebSocket gateway. It keeps no in-memory state:
// membership is re-read from the store on every operation.
type DMService struct {
	db *gorm.DB
}

func NewDMService(db *gorm.DB) *DMService {
	return &DMService{db: db}
}

// ConversationSummary is one row of the conversation directory.
type ConversationSummary struct {
	ConversationID uint
	OtherUserID    uint
	OtherUsername  string
	LastMessage    string
	LastMessageAt  *time.Time
	UnreadCount    int64
	createdAt      time.Time
}

// ListConversations returns every conversation the user participates in,
// with the other participant resolved and the unread count computed, ordered
// by last activity descending. Conversations without messages sort last by
// their creation time.
func (s *DMService) ListConversations(ctx context.Context, userID uint) ([]ConversationSummary, error) {
	db := s.db.WithContext(ctx)

	var convs []models.Conversation
	if err := db.Where("user_low_id = ? OR user_high_id = ?", userID, userID).Find(&convs).Error; err != nil {
		return nil, err
	}

	out := make([]ConversationSummary, 0, len(convs))
	for _, cv := range convs {
		otherID := cv.OtherParticipant(userID)

		var other models.User
		otherName := "Unknown User"
		if err := db.First(&other, otherID).Error; err == nil {
			otherName = other.Username
		}

		var unread int64
		if err := db.Model(&models.DirectMessage{}).
			Where("conversation_id = ? AND receiver_id = ? AND is_read = ?", cv.ID, userID, false).
			Count(&unread).Error; err != nil {
			return nil, err
		}

		out = append(out, ConversationSummary{
			ConversationID: cv.ID,
			OtherUserID:    otherID,
			OtherUsername:  otherName,
			LastMessage:    cv.LastMessage,
			LastMessageAt:  cv.LastMessageAt,
			UnreadCount:    unread,
			createdAt:      cv.CreatedAt,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if (a.LastMessageAt != nil) != (b.LastMessageAt != nil) {
			return a.LastMessageAt != nil // with messages first
		}
		if a.LastMessageAt != nil {
			return b.LastMessageAt.Before(*a.LastMessageAt)
		}
		return b.createdAt.Before(a.createdAt)
	})
	return out, nil
}

// GetOrCreateConversation finds or lazily creates the single conversation
// for the unordered pair (callerID, otherID). The normalized-pair unique
// index keeps concurrent calls from creating duplicates: on a create
// conflict the existing row is fetched instead.
func (s *DMService) GetOrCreateConversation(ctx context.Context, callerID, otherID uint) (*models.Conversation, *models.User, error) {
	if callerID == otherID {
		return nil, nil, ErrInvalidRequest
	}
	db := s.db.WithContext(ctx)

	var other models.User
	if err := db.First(&other, otherID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	low, high := models.NormalizePair(callerID, otherID)

	var conv models.Conversation
	err := db.Where("user_low_id = ? AND user_high_id = ?", low, high).First(&conv).Error
	if err == nil {
		return &conv, &other, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	conv = models.Conversation{UserLowID: low, UserHighID: high}
	if createErr := db.Create(&conv).Error; createErr != nil {
		// lost the race; the unique index rejected the duplicate
		if fetchErr := db.Where("user_low_id = ? AND user_high_id = ?", low, high).First(&conv).Error; fetchErr != nil {
			return nil, nil, createErr
		}
	}
	return &conv, &other, nil
}

// ListMessages returns the most recent messages of a conversation in
// ascending creation order, capped at limit (default 50). The caller must
// be a participant.
func (s *DMService) ListMessages(ctx context.Context, callerID, conversationID uint, limit int) ([]models.DirectMessage, error) {
	if limit <= 0 {
		limit = defaultMessageLimit
	}
	db := s.db.WithContext(ctx)

	var conv models.Conversation
	if err := db.First(&conv, conversationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !conv.HasParticipant(callerID) {
		return nil, ErrForbidden
	}

	var msgs []models.DirectMessage
	if err := db.Where("conversation_id = ?", conversationID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&msgs).Error; err != nil {
		return nil, err
	}

	// reverse into ascending order
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// SendMessage validates, persists and returns a new direct message. The
// conversation summary is updated afterwards; if that update fails the
// message stays persisted and the stale preview is accepted.
func (s *DMService) SendMessage(ctx context.Context, senderID, conversationID, receiverID uint, content string) (*models.DirectMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" || conversationID == 0 {
		return nil, ErrInvalidRequest
	}
	if len([]rune(content)) > maxMessageRunes {
		return nil, ErrInvalidRequest
	}
	db := s.db.WithContext(ctx)

	var conv models.Conversation
	if err := db.First(&conv, conversationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !conv.HasParticipant(senderID) {
		return nil, ErrForbidden
	}
	// the receiver is always the other participant
	if receiverID != conv.OtherParticipant(senderID) {
		return nil, ErrInvalidRequest
	}

	msg := models.DirectMessage{
		ConversationID: conversationID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Content:        content,
	}
	if err := db.Create(&msg).Error; err != nil {
		return nil, err
	}

	now := msg.CreatedAt
	if err := db.Model(&conv).Updates(map[string]any{
		"last_message":    utils.TruncateRunes(content, lastMessageRunes),
		"last_message_at": now,
	}).Error; err != nil {
		// message is durable; preview staleness is acceptable
		log.Printf("[dm] summary update failed for conversation %d: %v", conversationID, err)
	}
	return &msg, nil
}

// MarkRead flips every unread message addressed to callerID in the
// conversation to read. The receiver filter is self-limiting: a caller who
// is not a participant matches zero rows, so no membership check is made
// and repeated calls are no-ops.
func (s *DMService) MarkRead(ctx context.Context, callerID, conversationID uint) error {
	return s.db.WithContext(ctx).
		Model(&models.DirectMessage{}).
		Where("conversation_id = ? AND receiver_id = ? AND is_read = ?", conversationID, callerID, false).
		Update("is_read", true).Error
}
