package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"mindmemos/pkg/config"
	tokenstore "mindmemos/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ContextUserIDKey   = "current_user_id"
	ContextUsernameKey = "current_username"
	ContextJTIKey      = "current_jti"
)

var ErrInvalidToken = errors.New("invalid token")

// VerifyToken validates a raw JWT string and returns the bound identity.
// Shared by the HTTP middleware and the WebSocket handshake.
func VerifyToken(tokenStr string) (userID uint, username string, jti string, err error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		// only accept HMAC signing
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return []byte(config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, "", "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", "", ErrInvalidToken
	}

	jti, _ = claims["jti"].(string)
	if tokenstore.IsRevoked(jti) {
		return 0, "", "", errors.New("token has been revoked")
	}

	var userIDStr string
	if sub, ok := claims["sub"].(string); ok {
		userIDStr = sub
	} else if subf, ok := claims["sub"].(float64); ok {
		// jwt lib may parse numeric as float64
		userIDStr = strconv.Itoa(int(subf))
	}
	uid64, convErr := strconv.ParseUint(userIDStr, 10, 64)
	if userIDStr == "" || convErr != nil {
		return 0, "", "", errors.New("invalid subject in token")
	}

	username, _ = claims["name"].(string)
	return uint(uid64), username, jti, nil
}

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "missing authorization header"})
			return
		}
		parts := strings.Fields(auth)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "invalid authorization header"})
			return
		}

		uid, username, jti, err := VerifyToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": err.Error()})
			return
		}

		c.Set(ContextUserIDKey, uid)
		c.Set(ContextUsernameKey, username)
		c.Set(ContextJTIKey, jti)
		c.Next()
	}
}

// CurrentUserID reads the authenticated user id bound by AuthMiddleware.
func CurrentUserID(c *gin.Context) uint {
	v, _ := c.Get(ContextUserIDKey)
	uid, _ := v.(uint)
	return uid
}

// CurrentUsername reads the authenticated display name bound by AuthMiddleware.
func CurrentUsername(c *gin.Context) string {
	v, _ := c.Get(ContextUsernameKey)
	name, _ := v.(string)
	return name
}
