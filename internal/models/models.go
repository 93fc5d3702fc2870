package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

// PinSession represents one simulated table's lifetime
type PinSession struct {
	ID           int          `db:"id" json:"id"`
	SessionToken string       `db:"session_token" json:"session_token"`
	Status       string       `db:"status" json:"status"`
	TableLayout  string       `db:"table_layout" json:"table_layout"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	StartedAt    sql.NullTime `db:"started_at" json:"started_at,omitempty"`
	CompletedAt  sql.NullTime `db:"completed_at" json:"completed_at,omitempty"`
	ExpiryTime   time.Time    `db:"expiry_time" json:"expiry_time"`
}

// SessionEvent is one recorded input or lifecycle event, payload in JSONB
type SessionEvent struct {
	ID          int             `db:"id" json:"id"`
	SessionID   int             `db:"session_id" json:"session_id"`
	EventNumber int             `db:"event_number" json:"event_number"`
	EventType   string          `db:"event_type" json:"event_type"`
	EventData   json.RawMessage `db:"event_data" json:"event_data,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}
