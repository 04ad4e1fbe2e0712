package models

import "gorm.io/gorm"

// DirectMessage is append-only; only IsRead may change after creation
// (false -> true when the receiver marks the conversation read).
type DirectMessage struct {
	gorm.Model
	ConversationID uint   `gorm:"not null;index:idx_dm_conv_created,priority:1"`
	SenderID       uint   `gorm:"not null"`
	ReceiverID     uint   `gorm:"not null;index"`
	Content        string `gorm:"size:2000;not null"`
	IsRead         bool   `gorm:"not null;default:false"`
}
