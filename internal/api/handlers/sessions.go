package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/pinsim/backend/internal/config"
	"github.com/pinsim/backend/internal/game"
)

// CreateSession starts a new table and issues the join token the client
// presents on the websocket.
func CreateSession(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Layout string `json:"layout"`
		}
		// Body is optional; an empty one means the standard table
		_ = c.BindJSON(&req)

		s, err := game.Manager.CreateSession(req.Layout)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		exp := time.Now().Add(24 * time.Hour)
		claims := jwt.MapClaims{"session_token": s.Token, "exp": exp.Unix()}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString([]byte(cfg.JWTSecret))
		if err != nil {
			log.Printf("Failed to sign join token: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"session_token": s.Token,
			"join_token":    signed,
			"layout":        s.Layout,
		})
	}
}

// GetSession returns the latest snapshot for a session: live if the
// session runs here, the Redis-cached frame otherwise.
func GetSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")

		if s, err := game.Manager.GetSessionByToken(token); err == nil {
			c.JSON(http.StatusOK, gin.H{
				"status": s.Status(),
				"layout": s.StaticLayout(),
				"frame":  s.Snapshot(),
			})
			return
		}

		if data := game.Manager.LoadFrameFromRedis(token); data != nil {
			c.Data(http.StatusOK, "application/json", data)
			return
		}

		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	}
}

// StopSession ends a session on client request
func StopSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		if err := game.Manager.StopSession(token, game.StatusStopped); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"stopped": true})
	}
}
