package routes

import (
	"net/http"

	"mindmemos/middleware"
	"mindmemos/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	aiRoutes "mindmemos/routes/ai"
	authRoutes "mindmemos/routes/auth"
	dmRoutes "mindmemos/routes/dm"
	postsRoutes "mindmemos/routes/posts"
	profileRoutes "mindmemos/routes/profile"
	searchRoutes "mindmemos/routes/search"
	uploadsRoutes "mindmemos/routes/uploads"
	websocketRoutes "mindmemos/routes/websocket"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, hub *ws.Hub) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "MindMemos backend running"})
	})

	uploadsRoutes.Register(r, db)
	websocketRoutes.Register(r, db, hub)
	authRoutes.RegisterPublic(r, db)

	protected := r.Group("/")
	protected.Use(middleware.AuthMiddleware())
	authRoutes.RegisterProtected(protected, db)
	profileRoutes.Register(protected, db)
	postsRoutes.Register(protected, db)
	dmRoutes.Register(protected, db, hub)
	uploadsRoutes.RegisterProtected(protected, db)

	// AI companion and topic search - accessible to all authenticated users
	aiRoutes.Register(protected, db)
	searchRoutes.Register(protected, db)
}
