package controllers

import (
	"log"
	"net/http"
	"strings"

	"mindmemos/middleware"
	svc "mindmemos/pkg/services"
	"mindmemos/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS handled at HTTP level; allow WS here
		return true
	},
}

// DMSocket upgrades the connection and joins the user's personal broadcast
// group. Client protocol (JSON messages):
//
//	-> {type: "dm:send", conversation_id: number, receiver_id: number, content: string}
//	-> {type: "dm:mark-read", conversation_id: number}
//	<- {type: "dm:message", data: {message}}
//	<- {type: "dm:marked-read", data: {conversation_id}}
//	<- {type: "dm:error", data: {error}}
func DMSocket(db *gorm.DB, hub *ws.Hub) gin.HandlerFunc {
	dm := svc.NewDMService(db)
	return func(c *gin.Context) {
		// Authenticate via ?token=JWT before upgrading
		tokenStr := strings.TrimSpace(c.Query("token"))
		if tokenStr == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "missing token query"})
			return
		}
		userID, username, _, err := middleware.VerifyToken(tokenStr)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "invalid or expired token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[ws] upgrade failed for user %d: %v", userID, err)
			return
		}

		client := ws.NewClient(hub, conn, dm, userID, username)
		hub.Register(client)

		go client.WritePump()
		client.ReadPump()
	}
}
