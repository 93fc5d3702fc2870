package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/pinsim/backend/internal/api/handlers"
	"github.com/pinsim/backend/internal/config"
	"github.com/pinsim/backend/internal/middleware"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.WebSocketCORSCheck(cfg))

	// No-cache middleware for development
	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] No-cache headers enabled for all routes")
	}

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck)

		// Session endpoints
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", handlers.CreateSession(cfg))
			sessions.GET("/:token", handlers.GetSession())
			sessions.DELETE("/:token", handlers.StopSession())
			sessions.GET("/:token/ws", handlers.HandleSimWebSocket())
		}

		// Debug surface, admin-key protected
		admin := v1.Group("/admin", middleware.AdminAuth(cfg))
		{
			admin.GET("/sessions", handlers.ListSessions())
			admin.DELETE("/sessions/:token", handlers.AdminStopSession())
			admin.GET("/sessions/:token/events", handlers.AdminSessionEvents())
			admin.POST("/sessions/:token/undo", handlers.AdminUndo())
			admin.POST("/sessions/:token/undo-capture", handlers.AdminUndoCapture())
			admin.POST("/sessions/:token/collision-step", handlers.AdminCollisionStep())
			admin.POST("/sessions/:token/step", handlers.AdminStep())
			admin.POST("/sessions/:token/gravity", handlers.AdminGravity())
			admin.POST("/sessions/:token/debug", handlers.AdminDebug())
		}
	}
}
