package profile

import (
	"mindmemos/controllers"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Register registers profile routes (protected)
func Register(g *gin.RouterGroup, db *gorm.DB) {
	g.GET("/profile", controllers.Profile(db))
	g.PUT("/profile", controllers.Profile(db))
	g.GET("/users/:user_id", controllers.UserProfile(db))
	g.GET("/users/:user_id/posts", controllers.UserPosts(db))
}
