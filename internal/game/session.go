package game

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/pinsim/backend/internal/config"
	"github.com/pinsim/backend/internal/sim"
)

// Session statuses
const (
	StatusActive  = "active"
	StatusStopped = "stopped"
	StatusExpired = "expired"
)

// Frame is one renderable snapshot pushed to clients
type Frame struct {
	Type         string             `json:"type"`
	SimTime      float64            `json:"sim_time"`
	Balls        []sim.BallState    `json:"balls"`
	Flippers     []sim.FlipperState `json:"flippers"`
	PreCollision bool               `json:"pre_collision"`
	UndoDepth    int                `json:"undo_depth"`
	BallsDrained int                `json:"balls_drained"`
	Status       string             `json:"status"`
}

// Session wraps one live table. The advance loop is the single producer;
// every other accessor takes the session mutex around the table.
type Session struct {
	Token     string
	Layout    string
	DBID      int
	CreatedAt time.Time

	mu       sync.Mutex
	table    *sim.Table
	layout   *TableLayout
	status   string
	stepMode bool
	simTime  float64
	drains   int

	stepDur time.Duration
	catchup time.Duration

	cancel context.CancelFunc
}

// NewSession builds the table for the requested layout. The advance loop
// is started separately by the manager.
func NewSession(token, layout string, cfg *config.Config) *Session {
	tl := NewStandardLayout()
	return &Session{
		Token:     token,
		Layout:    layout,
		CreatedAt: time.Now(),
		table:     tl.Build(),
		layout:    tl,
		status:    StatusActive,
		stepDur:   time.Duration(cfg.SimStepMicros) * time.Microsecond,
		catchup:   time.Duration(cfg.SimCatchupMS) * time.Millisecond,
	}
}

// run is the advance loop: accumulate wall-clock time, clamp the backlog
// so a stalled process does not fast-forward the table, then burn the
// backlog in fixed physics steps.
func (s *Session) run(ctx context.Context) {
	ticker := time.NewTicker(4 * time.Millisecond)
	defer ticker.Stop()

	last := time.Now()
	var backlog time.Duration
	snapshotCountdown := 0

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			backlog += now.Sub(last)
			last = now
			if backlog > s.catchup {
				backlog = s.catchup
			}

			s.mu.Lock()
			if s.status != StatusActive || s.stepMode {
				backlog = 0
				s.mu.Unlock()
				continue
			}
			step := s.stepDur.Seconds()
			for backlog >= s.stepDur {
				s.table.Evolve(step)
				s.simTime += step
				backlog -= s.stepDur
			}
			drained := s.handleDrain()
			s.mu.Unlock()

			if drained && Manager != nil {
				Manager.RecordEvent(s.DBID, "ball_drained", map[string]interface{}{"sim_time": s.SimTime()})
			}

			snapshotCountdown--
			if snapshotCountdown <= 0 {
				snapshotCountdown = 250 // roughly once a second
				if Manager != nil {
					Manager.SaveFrameToRedis(s)
				}
			}
		}
	}
}

// handleDrain returns the ball to the plunger rest when it falls past the
// drain line. Caller holds the lock.
func (s *Session) handleDrain() bool {
	drained := false
	s.table.ForEachBall(func(b *sim.Ball) {
		if s.layout.InDrain(b.C) {
			b.C = s.layout.PlungerRest
			b.V = sim.Vec2{}
			drained = true
		}
	})
	if drained {
		s.drains++
		log.Printf("[SESSION] ball drained on %s (count=%d)", s.Token, s.drains)
	}
	return drained
}

// Stop halts the loop and freezes the table
func (s *Session) Stop(reason string) {
	s.mu.Lock()
	if s.status == StatusActive {
		s.status = reason
	}
	s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// --- client input ---

func (s *Session) SetFlippers(left, right bool) {
	s.mu.Lock()
	s.table.SetFlipperButtons(left, right)
	s.mu.Unlock()
}

func (s *Session) NudgeVelocity(vx, vy float64) {
	s.mu.Lock()
	s.table.SetNudgeVelocity(vx, vy)
	s.mu.Unlock()
}

func (s *Session) NudgeAccel(ax, ay float64) {
	s.mu.Lock()
	s.table.SetNudgeAccel(ax, ay)
	s.mu.Unlock()
}

// Launch fires the ball out of the plunger lane. Only a ball resting in
// the lane is affected; a ball in play ignores the plunger.
func (s *Session) Launch(power float64) bool {
	if power <= 0 {
		power = s.layout.DefaultLaunchSpeed
	}
	if power > s.layout.MaxLaunchSpeed {
		power = s.layout.MaxLaunchSpeed
	}
	launched := false
	s.mu.Lock()
	s.table.ForEachBall(func(b *sim.Ball) {
		if s.layout.InPlungerLane(b.C) {
			b.V = sim.Vec2{Y: -power}
			launched = true
		}
	})
	s.mu.Unlock()
	return launched
}

// --- debug controls ---

func (s *Session) SetGravity(on bool) {
	s.mu.Lock()
	s.table.EnableGravity(on)
	s.mu.Unlock()
}

func (s *Session) SetDebug(on bool) {
	s.mu.Lock()
	s.table.SetDebugMode(on)
	s.mu.Unlock()
}

func (s *Session) SetUndoCapture(on bool) {
	s.mu.Lock()
	s.table.SetUndoCapture(on)
	s.mu.Unlock()
}

// SetCollisionStep pauses the free-running loop; while enabled the table
// only advances through StepCollision calls.
func (s *Session) SetCollisionStep(on bool) {
	s.mu.Lock()
	s.stepMode = on
	s.table.SetCollisionStepMode(on)
	s.mu.Unlock()
}

// StepCollision advances one Evolve call in collision-step mode, which
// pauses at the next collision or completes the pending step.
func (s *Session) StepCollision() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stepMode {
		return false
	}
	step := s.stepDur.Seconds()
	s.table.Evolve(step)
	if !s.table.IsPreCollision() {
		s.simTime += step
	}
	return true
}

// Undo reverts the most recent captured collision
func (s *Session) Undo() (bool, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok := s.table.UndoEvolve()
	return ok, s.table.UndoDepth()
}

// --- read-back ---

func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) SimTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.simTime
}

// Snapshot copies the render state under the lock; callers serialize and
// send without holding it.
func (s *Session) Snapshot() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Frame{
		Type:         "frame",
		SimTime:      s.simTime,
		Balls:        s.table.GetBallSnapshot(),
		Flippers:     s.table.GetFlipperSnapshot(),
		PreCollision: s.table.IsPreCollision(),
		UndoDepth:    s.table.UndoDepth(),
		BallsDrained: s.drains,
		Status:       s.status,
	}
}

// StaticLayout describes the stationary geometry once, for client setup
func (s *Session) StaticLayout() map[string]interface{} {
	return s.layout.Describe()
}
