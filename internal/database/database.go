package database

import (
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pinsim/backend/internal/config"
)

// Connect opens the Postgres pool backing the session rows and the event
// log. Pool sizing is configurable so a deployment replaying many event
// logs at once can widen it.
func Connect(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	log.Printf("[DB] Connected (pool open=%d idle=%d)", cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
	return db, nil
}
