package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"mindmemos/middleware"
	"mindmemos/models"
	svc "mindmemos/pkg/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func commentToJSON(m *models.Comment) gin.H {
	return gin.H{
		"id":          m.ID,
		"post_id":     m.PostID,
		"author_id":   m.AuthorID,
		"author_name": m.AuthorName,
		"content":     m.Content,
		"created_at":  m.CreatedAt,
	}
}

// ListComments returns a post's comments in chronological order.
func ListComments(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		postID, err := strconv.Atoi(c.Param("post_id"))
		if err != nil || postID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid post ID"})
			return
		}

		var comments []models.Comment
		if err := db.Where("post_id = ?", postID).
			Order("created_at ASC, id ASC").
			Limit(100).
			Find(&comments).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "db error"})
			return
		}

		out := make([]gin.H, 0, len(comments))
		for i := range comments {
			out = append(out, commentToJSON(&comments[i]))
		}
		c.JSON(http.StatusOK, out)
	}
}

// CreateComment adds a comment and grants XP to its author.
func CreateComment(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.CurrentUserID(c)
		username := middleware.CurrentUsername(c)

		postID, err := strconv.Atoi(c.Param("post_id"))
		if err != nil || postID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid post ID"})
			return
		}

		var body struct {
			Content string `json:"content"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.Content) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Comment content is required"})
			return
		}
		content := strings.TrimSpace(body.Content)
		if len([]rune(content)) > 1000 {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Comment cannot exceed 1000 characters"})
			return
		}

		var post models.Post
		if err := db.First(&post, postID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"msg": "Post not found"})
			return
		}

		comment := models.Comment{
			PostID:     post.ID,
			AuthorID:   uid,
			AuthorName: username,
			Content:    content,
		}
		if err := db.Create(&comment).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to create comment"})
			return
		}

		svc.AddXP(db, uid, svc.XPCommentCreated)

		c.JSON(http.StatusCreated, commentToJSON(&comment))
	}
}

// DeleteComment removes an owned comment.
func DeleteComment(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.CurrentUserID(c)
		commentID, err := strconv.Atoi(c.Param("comment_id"))
		if err != nil || commentID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid comment ID"})
			return
		}

		var comment models.Comment
		if err := db.First(&comment, commentID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"msg": "Comment not found"})
			return
		}
		if comment.AuthorID != uid {
			c.JSON(http.StatusForbidden, gin.H{"msg": "You can only delete your own comments"})
			return
		}

		if err := db.Delete(&comment).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to delete comment"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"msg": "Comment deleted successfully"})
	}
}
