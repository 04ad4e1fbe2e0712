package websocket

import (
	"mindmemos/controllers"
	"mindmemos/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Register registers the direct-message socket endpoint. Auth happens in the
// handshake via ?token=, before the upgrade.
func Register(r *gin.Engine, db *gorm.DB, hub *ws.Hub) {
	r.GET("/ws/dm", controllers.DMSocket(db, hub))
}
