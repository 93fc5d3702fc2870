package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/pinsim/backend/internal/api"
	"github.com/pinsim/backend/internal/config"
	"github.com/pinsim/backend/internal/database"
	"github.com/pinsim/backend/internal/game"
	"github.com/pinsim/backend/internal/migrations"
	"github.com/pinsim/backend/internal/redis"
	"github.com/pinsim/backend/internal/ws"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database (optional: sessions run without persistence)
	db, err := database.Connect(cfg)
	if err != nil {
		log.Printf("[DB] Not available, running without persistence: %v", err)
		db = nil
	} else {
		defer db.Close()

		// Run migrations on start if requested
		if os.Getenv("MIGRATE_ON_START") == "true" {
			log.Println("[MIGRATE] Running DB migrations on startup...")
			if err := migrations.RunMigrations(cfg.DatabaseURL); err != nil {
				log.Fatalf("Failed to run migrations: %v", err)
			}
		}
	}

	// Initialize Redis (optional: no snapshot cache or idle reaping without it)
	rdb, err := redis.Connect(cfg)
	if err != nil {
		log.Printf("[REDIS] Not available, running without cache: %v", err)
		rdb = nil
	} else {
		defer rdb.Close()
	}

	// Initialize session manager
	game.InitializeManager(db, rdb, cfg)

	// Start idle session reaper
	game.StartCleanupWorker(context.Background(), rdb, cfg)

	// Wire config into the WS layer and start the frame broadcaster
	ws.SetConfig(cfg)
	ws.StartFrameBroadcaster(context.Background())

	// Set up Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Initialize API handlers
	api.SetupRoutes(router, cfg)

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting PinSim server on port %s (step=%dus frame=%dfps)", port, cfg.SimStepMicros, cfg.FrameRate)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
