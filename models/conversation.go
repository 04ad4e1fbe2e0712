package models

import (
	"time"

	"gorm.io/gorm"
)

// Conversation is a durable two-party messaging thread. The participant pair
// is normalized so that UserLowID < UserHighID; the composite unique index
// guarantees at most one conversation exists per unordered pair even under
// concurrent get-or-create calls.
type Conversation struct {
	gorm.Model
	UserLowID     uint       `gorm:"not null;uniqueIndex:idx_conversations_pair,priority:1"`
	UserHighID    uint       `gorm:"not null;uniqueIndex:idx_conversations_pair,priority:2"`
	LastMessage   string     `gorm:"size:100"`
	LastMessageAt *time.Time `gorm:"index"`
}

// NormalizePair orders two user ids into the (low, high) form used for storage.
func NormalizePair(a, b uint) (low, high uint) {
	if a < b {
		return a, b
	}
	return b, a
}

// HasParticipant reports whether uid is one of the two members.
func (cv *Conversation) HasParticipant(uid uint) bool {
	return uid == cv.UserLowID || uid == cv.UserHighID
}

// OtherParticipant returns the member that is not uid. Callers must check
// membership first.
func (cv *Conversation) OtherParticipant(uid uint) uint {
	if uid == cv.UserLowID {
		return cv.UserHighID
	}
	return cv.UserLowID
}
