package controllers

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"mindmemos/models"
	"mindmemos/pkg/cache"
	svc "mindmemos/pkg/services"
	utils "mindmemos/pkg/utills"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const searchKeywordCacheTTL = 10 * time.Minute

type userSearchHit struct {
	user      models.User
	posts     []models.Post
	relevance int
}

// SearchUsers finds community members whose public posts match a free-text
// query. The query is expanded into keywords by the companion model so
// "can't sleep" also matches posts tagged insomnia.
func SearchUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Query string `json:"query"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.Query) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Query is required"})
			return
		}
		query := strings.TrimSpace(body.Query)

		keywords := searchKeywordsCached(c, query)

		posts := findPostsByKeywords(db, keywords, 200)
		if len(posts) == 0 {
			c.JSON(http.StatusOK, gin.H{"users": []gin.H{}, "keywords": keywords})
			return
		}

		byAuthor := map[uint]*userSearchHit{}
		authorIDs := make([]uint, 0, 8)
		for i := range posts {
			p := &posts[i]
			hit := byAuthor[p.AuthorID]
			if hit == nil {
				hit = &userSearchHit{}
				byAuthor[p.AuthorID] = hit
				authorIDs = append(authorIDs, p.AuthorID)
			}
			hit.relevance++
			if len(hit.posts) < 5 {
				hit.posts = append(hit.posts, *p)
			}
		}

		var authors []models.User
		if err := db.Where("id IN ?", authorIDs).Find(&authors).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Search failed"})
			return
		}

		hits := make([]*userSearchHit, 0, len(authors))
		for i := range authors {
			if hit := byAuthor[authors[i].ID]; hit != nil {
				hit.user = authors[i]
				hits = append(hits, hit)
			}
		}

		// experienced members first, ties broken by match count
		sort.SliceStable(hits, func(i, j int) bool {
			if hits[i].user.XP != hits[j].user.XP {
				return hits[i].user.XP > hits[j].user.XP
			}
			return hits[i].relevance > hits[j].relevance
		})

		out := make([]gin.H, 0, len(hits))
		for _, h := range hits {
			snippets := make([]gin.H, 0, len(h.posts))
			for i := range h.posts {
				p := &h.posts[i]
				snippets = append(snippets, gin.H{
					"post_id": p.ID,
					"title":   p.Title,
					"excerpt": utils.Excerpt(p.Content, 200),
					"tags":    p.TagList(),
				})
			}
			out = append(out, gin.H{
				"user_id":     h.user.ID,
				"username":    h.user.Username,
				"xp":          h.user.XP,
				"level":       h.user.Level,
				"badge":       h.user.Badge,
				"match_count": h.relevance,
				"posts":       snippets,
			})
		}

		c.JSON(http.StatusOK, gin.H{"users": out, "keywords": keywords})
	}
}

func searchKeywordsCached(c *gin.Context, query string) []string {
	ck := cache.KeyFromStrings("search-keywords", strings.ToLower(query))
	if v, ok := cache.Default().Get(ck); ok {
		if kws, ok2 := v.([]string); ok2 {
			return kws
		}
	}
	keywords := svc.NewOllamaService().SearchKeywords(c.Request.Context(), query)
	cache.Default().Set(ck, keywords, searchKeywordCacheTTL)
	return keywords
}
