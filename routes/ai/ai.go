package ai

import (
	"mindmemos/controllers"
	"mindmemos/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Register registers the AI companion routes (protected)
func Register(g *gin.RouterGroup, db *gorm.DB) {
	g.POST("/ai/chat", middleware.RateLimit(), controllers.AIChat(db))
}
