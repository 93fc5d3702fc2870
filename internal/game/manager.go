package game

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pinsim/backend/internal/config"
	"github.com/redis/go-redis/v9"
)

// SessionManager owns every live simulation session
type SessionManager struct {
	sessions map[string]*Session // keyed by session token
	rdb      *redis.Client       // Redis client for snapshots and expiry schedule
	db       *sqlx.DB            // SQL DB for persistent records
	config   *config.Config
	mu       sync.RWMutex
}

var (
	// Global session manager instance
	Manager *SessionManager
)

// InitializeManager initializes the global session manager with Redis, DB and config
func InitializeManager(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) {
	Manager = NewSessionManager(db, rdb, cfg)
}

// NewSessionManager creates a new session manager
func NewSessionManager(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		rdb:      rdb,
		db:       db,
		config:   cfg,
	}
}

// generateToken generates a secure random token
func generateToken(length int) string {
	bytes := make([]byte, length)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// CreateSession builds a table, persists the session row and starts the
// advance loop.
func (m *SessionManager) CreateSession(layout string) (*Session, error) {
	if layout == "" {
		layout = "standard"
	}
	if layout != "standard" {
		return nil, errors.New("unknown table layout")
	}

	token := generateToken(16)
	expiry := time.Now().Add(time.Duration(m.config.SessionExpiryMinutes) * time.Minute)

	s := NewSession(token, layout, m.config)

	// Persist a pin_sessions row if a DB is configured
	if m.db != nil {
		err := m.db.QueryRowx(
			`INSERT INTO pin_sessions (session_token, status, table_layout, created_at, expiry_time) VALUES ($1,'active',$2,NOW(),$3) RETURNING id`,
			token, layout, expiry,
		).Scan(&s.DBID)
		if err != nil {
			log.Printf("[DB] Failed to create pin_session: %v", err)
		}
	}

	m.mu.Lock()
	m.sessions[token] = s
	m.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.run(ctx)

	m.scheduleExpiry(token, expiry)
	m.RecordEvent(s.DBID, "session_created", map[string]interface{}{"layout": layout})
	if m.db != nil && s.DBID > 0 {
		if _, err := m.db.Exec(`UPDATE pin_sessions SET started_at=NOW() WHERE id=$1`, s.DBID); err != nil {
			log.Printf("[DB] Failed to mark session %d started: %v", s.DBID, err)
		}
	}

	log.Printf("[SESSION] Created session %s (db_id=%d layout=%s)", token, s.DBID, layout)
	return s, nil
}

// GetSessionByToken resolves a live session
func (m *SessionManager) GetSessionByToken(token string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[token]
	if !ok {
		return nil, errors.New("session not found")
	}
	return s, nil
}

// SessionCount returns the number of live sessions
func (m *SessionManager) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// ForEachSession visits every live session under the read lock
func (m *SessionManager) ForEachSession(fn func(*Session)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sessions {
		fn(s)
	}
}

// StopSession halts the advance loop, marks the DB row and removes the
// session from the registry.
func (m *SessionManager) StopSession(token, reason string) error {
	m.mu.Lock()
	s, ok := m.sessions[token]
	if ok {
		delete(m.sessions, token)
	}
	m.mu.Unlock()
	if !ok {
		return errors.New("session not found")
	}

	s.Stop(reason)
	m.RecordEvent(s.DBID, "session_stopped", map[string]interface{}{"reason": reason})
	if m.db != nil && s.DBID > 0 {
		if _, err := m.db.Exec(`UPDATE pin_sessions SET status=$1, completed_at=NOW() WHERE id=$2`, reason, s.DBID); err != nil {
			log.Printf("[DB] Failed to close pin_session %d: %v", s.DBID, err)
		}
	}
	if m.rdb != nil {
		ctx := context.Background()
		m.rdb.ZRem(ctx, "session_expiry", token)
		m.rdb.Del(ctx, "session:"+token+":frame")
	}

	log.Printf("[SESSION] Stopped session %s (reason=%s)", token, reason)
	return nil
}

// TouchSession pushes a session's expiry forward; called on every client
// input so active players are never reaped.
func (m *SessionManager) TouchSession(token string) {
	expiry := time.Now().Add(time.Duration(m.config.SessionExpiryMinutes) * time.Minute)
	m.scheduleExpiry(token, expiry)
}

func (m *SessionManager) scheduleExpiry(token string, at time.Time) {
	if m.rdb == nil {
		return
	}
	ctx := context.Background()
	if err := m.rdb.ZAdd(ctx, "session_expiry", redis.Z{Score: float64(at.Unix()), Member: token}).Err(); err != nil {
		log.Printf("[SESSION] Failed to schedule expiry for %s: %v", token, err)
	}
}

// GetConfig exposes the manager config to the WS layer
func (m *SessionManager) GetConfig() *config.Config {
	return m.config
}
