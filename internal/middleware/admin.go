package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pinsim/backend/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// AdminAuth guards the debug surface with a bcrypt-hashed shared key.
// With no hash configured the surface is disabled outright rather than
// left open.
func AdminAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.AdminTokenHash == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "admin surface not configured"})
			return
		}

		key := c.GetHeader("X-Admin-Key")
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing admin key"})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(cfg.AdminTokenHash), []byte(key)); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid admin key"})
			return
		}

		c.Next()
	}
}
