package posts

import (
	"mindmemos/controllers"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Register registers the journal feed routes (protected)
func Register(g *gin.RouterGroup, db *gorm.DB) {
	g.GET("/posts", controllers.ListPosts(db))
	g.GET("/posts/mine", controllers.ListMyPosts(db))
	g.GET("/posts/:post_id", controllers.GetPost(db))
	g.POST("/posts", controllers.CreatePost(db))
	g.PUT("/posts/:post_id", controllers.UpdatePost(db))
	g.DELETE("/posts/:post_id", controllers.DeletePost(db))
	g.POST("/posts/:post_id/like", controllers.LikePost(db))
	g.DELETE("/posts/:post_id/like", controllers.UnlikePost(db))

	g.GET("/posts/:post_id/comments", controllers.ListComments(db))
	g.POST("/posts/:post_id/comments", controllers.CreateComment(db))
	g.DELETE("/comments/:comment_id", controllers.DeleteComment(db))
}
