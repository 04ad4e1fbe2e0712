package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"mindmemos/middleware"
	"mindmemos/models"
	svc "mindmemos/pkg/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func ratingToJSON(r *models.ChatRating) gin.H {
	return gin.H{
		"id":              r.ID,
		"conversation_id": r.ConversationID,
		"rater_id":        r.RaterID,
		"rated_user_id":   r.RatedUserID,
		"rating":          r.Rating,
		"created_at":      r.CreatedAt,
	}
}

// CreateChatRating rates the other participant of a conversation as helpful
// or not. Repeated ratings return the existing one unchanged.
func CreateChatRating(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.CurrentUserID(c)

		var body struct {
			ConversationID uint   `json:"conversation_id"`
			Rating         string `json:"rating"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || body.ConversationID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "conversation_id is required"})
			return
		}
		if body.Rating != models.RatingHelpful && body.Rating != models.RatingNotHelpful {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "rating must be helpful or not_helpful"})
			return
		}

		var conv models.Conversation
		if err := db.First(&conv, body.ConversationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"msg": "Conversation not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to rate chat"})
			return
		}
		if !conv.HasParticipant(uid) {
			c.JSON(http.StatusForbidden, gin.H{"msg": "You are not part of this conversation"})
			return
		}
		ratedID := conv.OtherParticipant(uid)
		if ratedID == uid {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "You cannot rate yourself"})
			return
		}

		var existing models.ChatRating
		err := db.Where("conversation_id = ? AND rater_id = ? AND rated_user_id = ?",
			conv.ID, uid, ratedID).First(&existing).Error
		if err == nil {
			c.JSON(http.StatusOK, gin.H{"rating": ratingToJSON(&existing), "already_rated": true})
			return
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to rate chat"})
			return
		}

		rating := models.ChatRating{
			ConversationID: conv.ID,
			RaterID:        uid,
			RatedUserID:    ratedID,
			Rating:         body.Rating,
		}
		if err := db.Create(&rating).Error; err != nil {
			// unique index backstop for concurrent double-submits
			if db.Where("conversation_id = ? AND rater_id = ? AND rated_user_id = ?",
				conv.ID, uid, ratedID).First(&existing).Error == nil {
				c.JSON(http.StatusOK, gin.H{"rating": ratingToJSON(&existing), "already_rated": true})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to rate chat"})
			return
		}

		if body.Rating == models.RatingHelpful {
			svc.AddXP(db, ratedID, svc.XPHelpfulRating)
		}

		c.JSON(http.StatusCreated, gin.H{"rating": ratingToJSON(&rating)})
	}
}

// ChatRatingStatus tells whether the caller already rated the other
// participant of a conversation.
func ChatRatingStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.CurrentUserID(c)

		convID, err := strconv.ParseUint(c.Param("conversation_id"), 10, 64)
		if err != nil || convID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid conversation id"})
			return
		}

		var conv models.Conversation
		if err := db.First(&conv, uint(convID)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"msg": "Conversation not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to load rating"})
			return
		}
		if !conv.HasParticipant(uid) {
			c.JSON(http.StatusForbidden, gin.H{"msg": "You are not part of this conversation"})
			return
		}

		var existing models.ChatRating
		err = db.Where("conversation_id = ? AND rater_id = ?", conv.ID, uid).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, gin.H{"rated": false})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to load rating"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"rated": true, "rating": ratingToJSON(&existing)})
	}
}
