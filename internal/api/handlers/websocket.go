package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/pinsim/backend/internal/ws"
)

// HandleSimWebSocket upgrades the connection onto a session stream
func HandleSimWebSocket() gin.HandlerFunc {
	return func(c *gin.Context) {
		ws.HandleWebSocket(c)
	}
}
