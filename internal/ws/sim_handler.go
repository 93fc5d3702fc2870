package ws

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/websocket"
	"github.com/pinsim/backend/internal/game"
)

// Input message payloads
type FlipperData struct {
	Left  bool `json:"left"`
	Right bool `json:"right"`
}

type NudgeVelData struct {
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
}

type NudgeAccelData struct {
	AX float64 `json:"ax"`
	AY float64 `json:"ay"`
}

type LaunchData struct {
	Power float64 `json:"power"`
}

type ToggleData struct {
	On bool `json:"on"`
}

// SimHub is the single hub for all sessions.
var SimHub *Hub

func init() {
	SimHub = NewHub()
	go runSimHub(SimHub)
}

func newClientID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// validateJoinToken checks the HS256 join token issued at session
// creation and returns the session token it grants.
func validateJoinToken(tokenStr string) (string, error) {
	if wsConfig == nil {
		return "", fmt.Errorf("ws config not set")
	}
	parsed, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(wsConfig.JWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("invalid join token")
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid claims")
	}
	session, ok := claims["session_token"].(string)
	if !ok || session == "" {
		return "", fmt.Errorf("missing session claim")
	}
	return session, nil
}

// HandleWebSocket upgrades a client onto a session's frame stream
func HandleWebSocket(c *gin.Context) {
	joinToken := c.Query("jt")
	if joinToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "jt required"})
		return
	}

	sessionToken, err := validateJoinToken(joinToken)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid join token"})
		return
	}

	s, err := game.Manager.GetSessionByToken(sessionToken)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	client := &Client{
		conn:         conn,
		clientID:     newClientID(),
		sessionToken: s.Token,
		send:         make(chan []byte, 256),
	}

	SimHub.register <- client

	go client.writePump()
	go client.readPump()
}

// runSimHub tracks room membership and greets new clients with the
// static layout plus the latest frame.
func runSimHub(h *Hub) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.clientID] = client
			if _, exists := h.rooms[client.sessionToken]; !exists {
				h.rooms[client.sessionToken] = make(map[string]*Client)
			}
			h.rooms[client.sessionToken][client.clientID] = client
			h.mu.Unlock()

			log.Printf("[WS] Client %s joined session %s", client.clientID, client.sessionToken)

			s, err := game.Manager.GetSessionByToken(client.sessionToken)
			if err != nil {
				log.Printf("[WS] Session vanished for token %s: %v", client.sessionToken, err)
				continue
			}

			layout, _ := json.Marshal(map[string]interface{}{
				"type":   "layout",
				"layout": s.StaticLayout(),
			})
			client.send <- layout

			frame := s.Snapshot()
			if data, err := json.Marshal(frame); err == nil {
				client.send <- data
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if cur, ok := h.clients[client.clientID]; ok && cur == client {
				delete(h.clients, client.clientID)
				if room, exists := h.rooms[client.sessionToken]; exists {
					delete(room, client.clientID)
					if len(room) == 0 {
						delete(h.rooms, client.sessionToken)
					}
				}
				log.Printf("[WS] Client %s left session %s", client.clientID, client.sessionToken)

				select {
				case <-client.send:
				default:
					close(client.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// StartFrameBroadcaster pushes snapshot frames to every occupied room at
// the configured frame rate. Empty rooms cost nothing.
func StartFrameBroadcaster(ctx context.Context) {
	rate := 30
	if wsConfig != nil && wsConfig.FrameRate > 0 {
		rate = wsConfig.FrameRate
	}
	interval := time.Second / time.Duration(rate)

	go func() {
		log.Printf("[WS] frame broadcaster started (%d fps)", rate)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[WS] frame broadcaster stopping")
				return
			case <-ticker.C:
				SimHub.mu.RLock()
				tokens := make([]string, 0, len(SimHub.rooms))
				for token := range SimHub.rooms {
					tokens = append(tokens, token)
				}
				SimHub.mu.RUnlock()

				for _, token := range tokens {
					// The room can empty between the snapshot and now
					if SimHub.RoomSize(token) == 0 {
						continue
					}
					s, err := game.Manager.GetSessionByToken(token)
					if err != nil {
						continue
					}
					data, err := json.Marshal(s.Snapshot())
					if err != nil {
						continue
					}
					SimHub.BroadcastRawToSession(token, data)
				}
			}
		}
	}()
}

// readPump reads input messages for a session client
func (c *Client) readPump() {
	defer func() {
		SimHub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(65536)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error (unexpected) for client %s: %v", c.clientID, err)
			} else {
				log.Printf("WebSocket read error for client %s: %v", c.clientID, err)
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		c.handleMessage(msg)
	}
}

// handleMessage dispatches one input message onto the session
func (c *Client) handleMessage(msg WSMessage) {
	s, err := game.Manager.GetSessionByToken(c.sessionToken)
	if err != nil {
		c.sendError("Session not found")
		return
	}

	game.Manager.TouchSession(c.sessionToken)

	switch msg.Type {
	case "flippers":
		var data FlipperData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid flipper data")
			return
		}
		s.SetFlippers(data.Left, data.Right)

	case "nudge_vel":
		var data NudgeVelData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid nudge data")
			return
		}
		s.NudgeVelocity(data.VX, data.VY)
		game.Manager.RecordEvent(s.DBID, "nudge_vel", data)

	case "nudge_accel":
		var data NudgeAccelData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid nudge data")
			return
		}
		s.NudgeAccel(data.AX, data.AY)
		game.Manager.RecordEvent(s.DBID, "nudge_accel", data)

	case "launch":
		var data LaunchData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid launch data")
			return
		}
		if s.Launch(data.Power) {
			game.Manager.RecordEvent(s.DBID, "launch", data)
		}

	case "undo":
		ok, depth := s.Undo()
		resp, _ := json.Marshal(map[string]interface{}{
			"type":       "undo_result",
			"ok":         ok,
			"undo_depth": depth,
		})
		c.send <- resp

	case "undo_capture":
		var data ToggleData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid toggle data")
			return
		}
		s.SetUndoCapture(data.On)

	case "collision_step":
		var data ToggleData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid toggle data")
			return
		}
		s.SetCollisionStep(data.On)

	case "step":
		if !s.StepCollision() {
			c.sendError("Not in collision-step mode")
		}

	case "gravity":
		var data ToggleData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid toggle data")
			return
		}
		s.SetGravity(data.On)

	case "get_frame":
		data, _ := json.Marshal(s.Snapshot())
		c.send <- data

	default:
		c.sendError("Unknown message type")
	}
}
