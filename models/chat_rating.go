package models

import "gorm.io/gorm"

const (
	RatingHelpful    = "helpful"
	RatingNotHelpful = "not_helpful"
)

// ChatRating stores at most one rating per (conversation, rater, rated user)
// triple, enforced by the composite unique index.
type ChatRating struct {
	gorm.Model
	ConversationID uint   `gorm:"not null;uniqueIndex:idx_chat_ratings_triple,priority:1"`
	RaterID        uint   `gorm:"not null;uniqueIndex:idx_chat_ratings_triple,priority:2"`
	RatedUserID    uint   `gorm:"not null;uniqueIndex:idx_chat_ratings_triple,priority:3"`
	Rating         string `gorm:"size:20;not null"`
}
