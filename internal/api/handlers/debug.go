package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pinsim/backend/internal/game"
)

// Admin mirrors of the websocket debug messages, for poking a session
// from curl while a client is attached.

func sessionOr404(c *gin.Context) *game.Session {
	s, err := game.Manager.GetSessionByToken(c.Param("token"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil
	}
	return s
}

type toggleRequest struct {
	On bool `json:"on"`
}

// ListSessions enumerates live sessions
func ListSessions() gin.HandlerFunc {
	return func(c *gin.Context) {
		out := make([]gin.H, 0)
		game.Manager.ForEachSession(func(s *game.Session) {
			out = append(out, gin.H{
				"session_token": s.Token,
				"layout":        s.Layout,
				"status":        s.Status(),
				"sim_time":      s.SimTime(),
				"created_at":    s.CreatedAt,
			})
		})
		c.JSON(http.StatusOK, gin.H{"sessions": out})
	}
}

// AdminSessionEvents returns the persisted session row and its recorded
// input/lifecycle events. Works on stopped sessions; only the DB is read.
func AdminSessionEvents() gin.HandlerFunc {
	return func(c *gin.Context) {
		record, err := game.Manager.SessionRecord(c.Param("token"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no persisted session"})
			return
		}

		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "200"))
		events, err := game.Manager.SessionEvents(record.ID, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load events"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"session": record, "events": events})
	}
}

// AdminUndo reverts the last captured collision
func AdminUndo() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessionOr404(c)
		if s == nil {
			return
		}
		ok, depth := s.Undo()
		c.JSON(http.StatusOK, gin.H{"ok": ok, "undo_depth": depth})
	}
}

// AdminUndoCapture toggles per-collision undo recording
func AdminUndoCapture() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessionOr404(c)
		if s == nil {
			return
		}
		var req toggleRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "on required"})
			return
		}
		s.SetUndoCapture(req.On)
		c.JSON(http.StatusOK, gin.H{"undo_capture": req.On})
	}
}

// AdminCollisionStep toggles collision-step mode
func AdminCollisionStep() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessionOr404(c)
		if s == nil {
			return
		}
		var req toggleRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "on required"})
			return
		}
		s.SetCollisionStep(req.On)
		c.JSON(http.StatusOK, gin.H{"collision_step": req.On})
	}
}

// AdminStep advances one collision event while stepping
func AdminStep() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessionOr404(c)
		if s == nil {
			return
		}
		if !s.StepCollision() {
			c.JSON(http.StatusConflict, gin.H{"error": "not in collision-step mode"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"frame": s.Snapshot()})
	}
}

// AdminGravity toggles gravity
func AdminGravity() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessionOr404(c)
		if s == nil {
			return
		}
		var req toggleRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "on required"})
			return
		}
		s.SetGravity(req.On)
		c.JSON(http.StatusOK, gin.H{"gravity": req.On})
	}
}

// AdminDebug toggles collision telemetry logging
func AdminDebug() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessionOr404(c)
		if s == nil {
			return
		}
		var req toggleRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "on required"})
			return
		}
		s.SetDebug(req.On)
		c.JSON(http.StatusOK, gin.H{"debug": req.On})
	}
}

// AdminStopSession force-stops any session
func AdminStopSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := game.Manager.StopSession(c.Param("token"), game.StatusStopped); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"stopped": true})
	}
}
