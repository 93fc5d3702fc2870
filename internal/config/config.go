package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL    string
	DBMaxOpenConns int
	DBMaxIdleConns int

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Simulation
	SimStepMicros int // fixed physics step, microseconds
	SimCatchupMS  int // max simulated time granted per wall-clock wakeup
	FrameRate     int // snapshot frames per second pushed to clients

	// Session lifecycle
	SessionExpiryMinutes int
	CleanupPollSeconds   int

	// Security
	JWTSecret      string
	AdminTokenHash string // bcrypt hash of the admin key
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", "postgres://localhost:5432/pinsim?sslmode=disable"),
		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Simulation
		SimStepMicros: getEnvInt("SIM_STEP_MICROS", 500),
		SimCatchupMS:  getEnvInt("SIM_CATCHUP_MS", 25),
		FrameRate:     getEnvInt("FRAME_RATE", 30),

		// Session lifecycle
		SessionExpiryMinutes: getEnvInt("SESSION_EXPIRY_MINUTES", 30),
		CleanupPollSeconds:   getEnvInt("CLEANUP_POLL_SECONDS", 15),

		// Security
		JWTSecret:      getEnv("JWT_SECRET", "change-me-in-production"),
		AdminTokenHash: getEnv("ADMIN_TOKEN_HASH", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
