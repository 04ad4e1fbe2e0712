package controllers

import (
	"net/http"
	"strings"
	"time"

	"mindmemos/middleware"
	"mindmemos/models"
	"mindmemos/pkg/cache"
	"mindmemos/pkg/config"
	svc "mindmemos/pkg/services"
	utils "mindmemos/pkg/utills"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// findPostsByKeywords matches public posts whose title, content or tags
// contain any keyword, newest first.
func findPostsByKeywords(db *gorm.DB, keywords []string, limit int) []models.Post {
	if len(keywords) == 0 {
		return nil
	}

	query := db.Model(&models.Post{}).Where("is_public = ?", true)
	var conds []string
	var args []any
	for _, kw := range keywords {
		pattern := "%" + strings.ToLower(kw) + "%"
		conds = append(conds, "(LOWER(title) LIKE ? OR LOWER(content) LIKE ? OR LOWER(tags) LIKE ?)")
		args = append(args, pattern, pattern, pattern)
	}
	query = query.Where(strings.Join(conds, " OR "), args...)

	var posts []models.Post
	if err := query.Order("created_at DESC").Limit(limit).Find(&posts).Error; err != nil {
		return nil
	}
	return posts
}

func recommendationJSON(p *models.Post) gin.H {
	return gin.H{
		"post_id":     p.ID,
		"author_id":   p.AuthorID,
		"author_name": p.AuthorName,
		"title":       p.Title,
		"excerpt":     utils.Excerpt(p.Content, 200),
		"tags":        p.TagList(),
	}
}

// findSimilarPosts picks recommendations for a companion question. With no
// usable keywords it falls back to the latest public posts so the widget
// always has something to show.
func findSimilarPosts(db *gorm.DB, question string) []models.Post {
	keywords := make([]string, 0, 8)
	for _, w := range strings.Fields(strings.ToLower(question)) {
		w = strings.Trim(w, ".,!?;:'\"()")
		if len(w) > 3 {
			keywords = append(keywords, w)
		}
	}

	if len(keywords) == 0 {
		var posts []models.Post
		db.Where("is_public = ?", true).Order("created_at DESC").Limit(5).Find(&posts)
		return posts
	}
	return findPostsByKeywords(db, keywords, 10)
}

// AIChat proxies a supportive question to the companion model, grounding
// the answer in similar community posts.
func AIChat(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.CurrentUserID(c)

		var body struct {
			Question string `json:"question"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.Question) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Question is required"})
			return
		}
		question := strings.TrimSpace(body.Question)

		if !middleware.DuplicateGuard(middleware.CurrentUsername(c), question) {
			c.JSON(http.StatusTooManyRequests, gin.H{"msg": "You just asked that, give it a moment"})
			return
		}

		release := middleware.AcquireUserSlot(uid)
		defer release()

		similar := findSimilarPosts(db, question)
		recommendations := make([]gin.H, 0, len(similar))
		for i := range similar {
			recommendations = append(recommendations, recommendationJSON(&similar[i]))
		}

		// answers are cached per user + normalized question
		ck := cache.KeyFromStrings("ai-answer", middleware.CurrentUsername(c), strings.ToLower(question))
		if v, ok := cache.Default().Get(ck); ok {
			if answer, ok2 := v.(string); ok2 && answer != "" {
				c.JSON(http.StatusOK, gin.H{"answer": answer, "recommendations": recommendations, "cached": true})
				return
			}
		}

		var contextBlock strings.Builder
		if len(similar) > 0 {
			contextBlock.WriteString("Here are some posts from other MindMemos users who shared similar experiences:\n\n")
			for i := range similar {
				p := &similar[i]
				tagsStr := ""
				if tags := p.TagList(); len(tags) > 0 {
					tagsStr = " (tags: #" + strings.Join(tags, " #") + ")"
				}
				contextBlock.WriteString("- \"" + p.Title + "\" by " + p.AuthorName + " - " + utils.Excerpt(p.Content, 200) + tagsStr + "\n\n")
			}
		} else {
			contextBlock.WriteString("No directly similar posts found in the community yet, but I can still offer support.")
		}

		osvc := svc.NewOllamaService()
		answer, err := osvc.AskCompanion(c.Request.Context(), question, contextBlock.String())
		if err != nil || strings.TrimSpace(answer) == "" {
			// keep the widget alive without the model
			answer = svc.AskCompanionLocal(c.Request.Context(), question, len(similar) > 0)
		} else {
			cache.Default().Set(ck, answer, time.Duration(config.AIRespCacheTTLSeconds)*time.Second)
		}

		c.JSON(http.StatusOK, gin.H{"answer": answer, "recommendations": recommendations})
	}
}
