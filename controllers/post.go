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

func parsePagination(c *gin.Context, defaultLimit int) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.Query("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.Query("limit"))
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > 50 {
		limit = 50
	}
	return page, limit, (page - 1) * limit
}

func paginationMeta(page, limit int, total int64) gin.H {
	totalPages := int(total) / limit
	if int(total)%limit != 0 {
		totalPages++
	}
	return gin.H{"page": page, "limit": limit, "total": total, "total_pages": totalPages}
}

// postsToJSON maps posts to their response shape with per-post comment counts.
func postsToJSON(db *gorm.DB, posts []models.Post) []gin.H {
	counts := map[uint]int64{}
	if len(posts) > 0 {
		ids := make([]uint, 0, len(posts))
		for _, p := range posts {
			ids = append(ids, p.ID)
		}
		var rows []struct {
			PostID uint
			Count  int64
		}
		db.Model(&models.Comment{}).
			Select("post_id, COUNT(*) as count").
			Where("post_id IN ?", ids).
			Group("post_id").
			Scan(&rows)
		for _, r := range rows {
			counts[r.PostID] = r.Count
		}
	}

	out := make([]gin.H, 0, len(posts))
	for _, p := range posts {
		out = append(out, postToJSON(&p, counts[p.ID]))
	}
	return out
}

func postToJSON(p *models.Post, commentCount int64) gin.H {
	return gin.H{
		"id":            p.ID,
		"author_id":     p.AuthorID,
		"author_name":   p.AuthorName,
		"title":         p.Title,
		"content":       p.Content,
		"tags":          p.TagList(),
		"is_public":     p.IsPublic,
		"image_url":     p.ImageURL,
		"like_count":    p.LikeCount,
		"comment_count": commentCount,
		"created_at":    p.CreatedAt,
		"updated_at":    p.UpdatedAt,
	}
}

// ListPosts returns the public feed, newest first.
func ListPosts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, offset := parsePagination(c, 10)

		query := db.Model(&models.Post{}).Where("is_public = ?", true)

		var total int64
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "db error"})
			return
		}

		var posts []models.Post
		if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&posts).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"data": postsToJSON(db, posts),
			"meta": paginationMeta(page, limit, total),
		})
	}
}

// ListMyPosts returns the caller's own posts, public and private.
func ListMyPosts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.CurrentUserID(c)
		page, limit, offset := parsePagination(c, 10)

		query := db.Model(&models.Post{}).Where("author_id = ?", uid)

		var total int64
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "db error"})
			return
		}

		var posts []models.Post
		if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&posts).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"data": postsToJSON(db, posts),
			"meta": paginationMeta(page, limit, total),
		})
	}
}

// GetPost returns one post; private posts are visible to their owner only.
func GetPost(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.CurrentUserID(c)
		postID, _ := strconv.Atoi(c.Param("post_id"))

		var post models.Post
		if err := db.First(&post, postID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"msg": "Post not found"})
			return
		}
		if !post.IsPublic && post.AuthorID != uid {
			c.JSON(http.StatusForbidden, gin.H{"msg": "You are not allowed to view this post"})
			return
		}

		var commentCount int64
		db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&commentCount)

		c.JSON(http.StatusOK, postToJSON(&post, commentCount))
	}
}

// CreatePost saves a new journal post and grants XP to its author.
func CreatePost(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.CurrentUserID(c)
		username := middleware.CurrentUsername(c)

		var body struct {
			Title    string   `json:"title"`
			Content  string   `json:"content"`
			Tags     []string `json:"tags"`
			IsPublic *bool    `json:"is_public"`
			ImageURL string   `json:"image_url"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid request"})
			return
		}

		title := strings.TrimSpace(body.Title)
		content := strings.TrimSpace(body.Content)
		if title == "" || content == "" {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Title and content are required"})
			return
		}
		if len([]rune(title)) > 150 || len([]rune(content)) > 5000 {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Title or content too long"})
			return
		}

		post := models.Post{
			AuthorID:   uid,
			AuthorName: username,
			Title:      title,
			Content:    content,
			IsPublic:   body.IsPublic == nil || *body.IsPublic,
			ImageURL:   strings.TrimSpace(body.ImageURL),
		}
		post.SetTags(body.Tags)

		if err := db.Create(&post).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to create post"})
			return
		}

		svc.AddXP(db, uid, svc.XPPostCreated)

		c.JSON(http.StatusCreated, postToJSON(&post, 0))
	}
}

// UpdatePost edits an owned post in place.
func UpdatePost(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.CurrentUserID(c)
		postID, _ := strconv.Atoi(c.Param("post_id"))

		var post models.Post
		if err := db.First(&post, postID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"msg": "Post not found"})
			return
		}
		if post.AuthorID != uid {
			c.JSON(http.StatusForbidden, gin.H{"msg": "You can only update your own posts"})
			return
		}

		var body struct {
			Title    *string   `json:"title"`
			Content  *string   `json:"content"`
			Tags     *[]string `json:"tags"`
			IsPublic *bool     `json:"is_public"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid request"})
			return
		}

		if body.Title != nil {
			post.Title = strings.TrimSpace(*body.Title)
		}
		if body.Content != nil {
			post.Content = strings.TrimSpace(*body.Content)
		}
		if body.Tags != nil {
			post.SetTags(*body.Tags)
		}
		if body.IsPublic != nil {
			post.IsPublic = *body.IsPublic
		}
		if post.Title == "" || post.Content == "" {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Title and content are required"})
			return
		}

		if err := db.Save(&post).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to update post"})
			return
		}

		var commentCount int64
		db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&commentCount)

		c.JSON(http.StatusOK, postToJSON(&post, commentCount))
	}
}

// DeletePost removes an owned post and its comments.
func DeletePost(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.CurrentUserID(c)
		postID, _ := strconv.Atoi(c.Param("post_id"))

		var post models.Post
		if err := db.First(&post, postID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"msg": "Post not found"})
			return
		}
		if post.AuthorID != uid {
			c.JSON(http.StatusForbidden, gin.H{"msg": "You can only delete your own posts"})
			return
		}

		if err := db.Delete(&post).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to delete post"})
			return
		}
		db.Where("post_id = ?", post.ID).Delete(&models.Comment{})
		db.Where("post_id = ?", post.ID).Delete(&models.PostLike{})

		c.JSON(http.StatusOK, gin.H{"msg": "Post deleted successfully"})
	}
}

// LikePost records a like; liking twice is a no-op.
func LikePost(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.CurrentUserID(c)
		postID, _ := strconv.Atoi(c.Param("post_id"))

		var post models.Post
		if err := db.First(&post, postID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"msg": "Post not found"})
			return
		}

		like := models.PostLike{PostID: post.ID, UserID: uid}
		if err := db.Create(&like).Error; err == nil {
			post.LikeCount++
			db.Model(&post).Update("like_count", post.LikeCount)
		}
		// unique index violation means already liked; fall through

		var commentCount int64
		db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&commentCount)
		c.JSON(http.StatusOK, postToJSON(&post, commentCount))
	}
}

// UnlikePost removes a like if present.
func UnlikePost(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.CurrentUserID(c)
		postID, _ := strconv.Atoi(c.Param("post_id"))

		var post models.Post
		if err := db.First(&post, postID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"msg": "Post not found"})
			return
		}

		res := db.Where("post_id = ? AND user_id = ?", post.ID, uid).Delete(&models.PostLike{})
		if res.Error == nil && res.RowsAffected > 0 && post.LikeCount > 0 {
			post.LikeCount--
			db.Model(&post).Update("like_count", post.LikeCount)
		}

		var commentCount int64
		db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&commentCount)
		c.JSON(http.StatusOK, postToJSON(&post, commentCount))
	}
}
