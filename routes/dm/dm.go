package dm

import (
	"mindmemos/controllers"
	"mindmemos/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Register registers the direct-message directory and history routes
// (protected)
func Register(g *gin.RouterGroup, db *gorm.DB, hub *ws.Hub) {
	g.GET("/dm/conversations", controllers.ListConversations(db))
	g.POST("/dm/conversations", controllers.OpenConversation(db))
	g.GET("/dm/conversations/:conversation_id/messages", controllers.ListMessages(db))
	g.POST("/dm/conversations/:conversation_id/messages", controllers.CreateMessage(db, hub))
	g.POST("/dm/conversations/:conversation_id/read", controllers.MarkConversationRead(db))

	g.POST("/dm/ratings", controllers.CreateChatRating(db))
	g.GET("/dm/ratings/:conversation_id", controllers.ChatRatingStatus(db))
}
