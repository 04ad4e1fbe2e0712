package search

import (
	"mindmemos/controllers"
	"mindmemos/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Register registers the topic search routes (protected)
func Register(g *gin.RouterGroup, db *gorm.DB) {
	g.POST("/search/users", middleware.RateLimit(), controllers.SearchUsers(db))
}
