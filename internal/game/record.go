package game

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/pinsim/backend/internal/models"
)

// RecordEvent appends one JSONB event row for a session. Nil DB or an
// unpersisted session degrades to a no-op so the simulation never
// depends on storage being up.
func (m *SessionManager) RecordEvent(sessionID int, eventType string, data interface{}) {
	if m == nil || m.db == nil || sessionID == 0 {
		return
	}

	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("[DB] Failed to marshal %s event for session %d: %v", eventType, sessionID, err)
		return
	}

	var maxEvent int
	if err := m.db.Get(&maxEvent, `SELECT COALESCE(MAX(event_number), 0) FROM session_events WHERE session_id = $1`, sessionID); err != nil {
		log.Printf("[DB] Failed to get max event number for session %d: %v", sessionID, err)
		return
	}
	eventNumber := maxEvent + 1

	_, err = m.db.Exec(
		`INSERT INTO session_events (session_id, event_number, event_type, event_data, created_at) VALUES ($1,$2,$3,$4::jsonb,NOW())`,
		sessionID, eventNumber, eventType, string(payload),
	)
	if err != nil {
		log.Printf("[DB] Failed to record %s event for session %d: %v", eventType, sessionID, err)
	}
}

// SessionRecord loads the persisted row for a session token. Works for
// stopped sessions too; the live registry is not consulted.
func (m *SessionManager) SessionRecord(token string) (*models.PinSession, error) {
	if m == nil || m.db == nil {
		return nil, errors.New("no database configured")
	}
	var row models.PinSession
	if err := m.db.Get(&row, `SELECT * FROM pin_sessions WHERE session_token = $1`, token); err != nil {
		return nil, err
	}
	return &row, nil
}

// SessionEvents returns the recorded event log for a session, in event
// order, so a client can replay the inputs that produced a frame.
func (m *SessionManager) SessionEvents(sessionID, limit int) ([]models.SessionEvent, error) {
	if m == nil || m.db == nil {
		return nil, errors.New("no database configured")
	}
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}
	events := []models.SessionEvent{}
	err := m.db.Select(&events,
		`SELECT * FROM session_events WHERE session_id = $1 ORDER BY event_number ASC LIMIT $2`,
		sessionID, limit,
	)
	if err != nil {
		return nil, err
	}
	return events, nil
}

// SaveFrameToRedis caches the latest snapshot so a reconnecting client
// (or another node) can render without waiting for the next frame.
func (m *SessionManager) SaveFrameToRedis(s *Session) {
	if m == nil || m.rdb == nil {
		return
	}

	frame := s.Snapshot()
	data, err := json.Marshal(frame)
	if err != nil {
		log.Printf("[SESSION] Failed to marshal frame for %s: %v", s.Token, err)
		return
	}

	ctx := context.Background()
	key := "session:" + s.Token + ":frame"
	if err := m.rdb.SetEx(ctx, key, data, time.Hour).Err(); err != nil {
		log.Printf("[SESSION] Failed to cache frame for %s: %v", s.Token, err)
	}
}

// LoadFrameFromRedis returns the cached snapshot, or nil when absent
func (m *SessionManager) LoadFrameFromRedis(token string) []byte {
	if m == nil || m.rdb == nil {
		return nil
	}
	ctx := context.Background()
	data, err := m.rdb.Get(ctx, "session:"+token+":frame").Bytes()
	if err != nil {
		return nil
	}
	return data
}
