package sim

// Table owns every body and runs the time-evolution state machine. It is
// single-threaded and never blocks; the embedding serializes access
// (one producer advancing the simulation, consumers taking snapshots).

// Phase is the evolve-loop state.
type Phase int

const (
	PhaseMove Phase = iota
	PhaseCollisionSearch
	PhaseCollisionExec
	PhaseAccelerate
)

type pendingCollision struct {
	ball *Ball
	obj  Collidable
	t    float64
}

// EvolveState is the per-step bookkeeping: the current phase, the
// remaining collision budget, the ceiling on reversal times, and the
// collision picked by the last search.
type EvolveState struct {
	phase         Phase
	budget        int
	dtReversalMax float64
	pending       pendingCollision
}

type Table struct {
	elements  []Element
	balls     []*Ball
	flippers  []*Flipper
	statics   []Collidable
	moveables []Moveable

	es  EvolveState
	ctx Ctx

	gravity       bool
	debug         bool
	undoCapture   bool
	collisionStep bool

	nudgeAccel NudgeAccelState
	nudgeVel   NudgeVelocityState

	undo []UndoGroup
}

func NewTable() *Table {
	t := &Table{gravity: true}
	t.ctx = Ctx{Table: t}
	t.es.phase = PhaseMove
	return t
}

// --- setup, called once per session ---

func (t *Table) AddBall(x, y, vx, vy float64) *Ball {
	b := &Ball{
		C:     Point{X: x, Y: y},
		V:     Vec2{X: vx, Y: vy},
		R:     BallRadius,
		M:     BallMass,
		table: t,
	}
	t.balls = append(t.balls, b)
	t.moveables = append(t.moveables, b)
	t.elements = append(t.elements, b)
	return b
}

func (t *Table) AddWall(e, x1, y1, x2, y2 float64) *LineSeg {
	ls := NewLineSeg(Point{X: x1, Y: y1}, Point{X: x2, Y: y2}, e)
	t.statics = append(t.statics, ls)
	t.elements = append(t.elements, ls)
	return ls
}

func (t *Table) AddRound(x, y, r, e float64) *Round {
	rd := NewRound(Point{X: x, Y: y}, r, e)
	t.statics = append(t.statics, rd)
	t.elements = append(t.elements, rd)
	return rd
}

func (t *Table) AddPolygon(r, e float64, pts []Point) *Polygon {
	pg := NewPolygon(r, e, pts)
	t.statics = append(t.statics, pg)
	t.elements = append(t.elements, pg)
	return pg
}

func (t *Table) AddFlipper(left bool, x, y, length, r1, r2, restDeg, spanDeg, e float64) *Flipper {
	f := newFlipper(t, left, Point{X: x, Y: y}, length, r1, r2, restDeg, spanDeg, e)
	t.flippers = append(t.flippers, f)
	t.moveables = append(t.moveables, f)
	t.elements = append(t.elements, f)
	return f
}

// --- per-tick input ---

func (t *Table) SetFlipperButtons(left, right bool) {
	for _, f := range t.flippers {
		if f.Left {
			f.Energized = left
		} else {
			f.Energized = right
		}
	}
}

func (t *Table) SetNudgeAccel(ax, ay float64) {
	t.nudgeAccel.Set(ax, ay)
}

func (t *Table) SetNudgeVelocity(vx, vy float64) {
	t.nudgeVel.Set(vx, vy)
}

// --- debug and tuning controls ---

func (t *Table) EnableGravity(on bool) { t.gravity = on }

func (t *Table) SetDebugMode(on bool) { t.debug = on }

func (t *Table) SetCollisionStepMode(on bool) { t.collisionStep = on }

// IsPreCollision reports whether the table is paused between finding a
// collision and executing it (collision-step mode).
func (t *Table) IsPreCollision() bool { return t.es.phase == PhaseCollisionExec }

func (t *Table) SetUndoCapture(on bool) {
	t.undoCapture = on
	if !on {
		t.undo = nil
	}
}

func (t *Table) UndoDepth() int { return len(t.undo) }

// UndoEvolve reverts the most recent collision event: every moveable body
// is restored to its pre-backup state and the evolve bookkeeping is reset
// so the next Evolve call replays the same phase transition.
func (t *Table) UndoEvolve() bool {
	if len(t.undo) == 0 {
		return false
	}
	g := t.undo[len(t.undo)-1]
	t.undo = t.undo[:len(t.undo)-1]
	for _, r := range g.records {
		r.apply()
	}
	t.es.phase = g.phase
	t.es.budget = g.budget
	t.es.dtReversalMax = g.dtReversalMax
	t.es.pending = g.pending
	return true
}

// --- time evolution ---

// Evolve advances the simulation by one fixed step dt, running the phase
// machine to completion: Move, then alternating collision search and
// execution until no collision remains or the budget runs out, then
// acceleration. In collision-step mode it instead returns as soon as a
// collision has been found and backed up, so a debugger can single-step
// through individual collision events; the next call resumes mid-step.
func (t *Table) Evolve(dt float64) {
	for {
		switch t.es.phase {
		case PhaseMove:
			for _, m := range t.moveables {
				m.Move(dt)
			}
			t.es.budget = CollisionBudget
			t.es.dtReversalMax = dt
			t.es.phase = PhaseCollisionSearch

		case PhaseCollisionSearch:
			if t.es.budget <= 0 || !t.searchCollision() {
				t.es.phase = PhaseAccelerate
				continue
			}
			if t.undoCapture {
				t.pushUndo()
			}
			p := t.es.pending
			// Re-test the winning pair so a composite's member selection
			// reflects this ball, not whichever was tested last.
			p.obj.TestCollision(p.ball, &t.ctx, t.es.dtReversalMax)
			p.ball.Move(-p.t)
			p.obj.CollisionMove(-p.t, &t.ctx)
			t.es.phase = PhaseCollisionExec
			if t.collisionStep {
				return
			}

		case PhaseCollisionExec:
			p := t.es.pending
			t.es.budget--
			p.obj.ExecuteCollision(p.ball, &t.ctx, p.t)
			p.ball.Move(p.t)
			p.obj.CollisionMove(p.t, &t.ctx)
			// Later collisions in this step cannot be placed earlier than
			// this one; shrink the reversal ceiling to keep causal order.
			t.es.dtReversalMax = p.t
			t.es.phase = PhaseCollisionSearch

		case PhaseAccelerate:
			dv := t.nudgeAccel.step(dt).Plus(t.nudgeVel.step()).Invert()
			if !dv.IsZero() {
				for _, m := range t.moveables {
					m.Nudge(dv)
				}
			}
			for _, m := range t.moveables {
				m.Accelerate(dt)
			}
			t.es.phase = PhaseMove
			return
		}
	}
}

// searchCollision scans every (ball, collidable) pair and keeps the one
// with the largest positive reversal time: the larger the backup, the
// longer the pair has been overlapping, so that collision happened first
// and must resolve first. Strict comparison keeps the first-encountered
// pair on exact ties.
func (t *Table) searchCollision() bool {
	var best pendingCollision
	found := false
	dtMax := t.es.dtReversalMax
	for i, b := range t.balls {
		for _, c := range t.statics {
			if tt := c.TestCollision(b, &t.ctx, dtMax); tt > MinReversalTime && (!found || tt > best.t) {
				best = pendingCollision{ball: b, obj: c, t: tt}
				found = true
			}
		}
		for _, f := range t.flippers {
			if tt := f.TestCollision(b, &t.ctx, dtMax); tt > MinReversalTime && (!found || tt > best.t) {
				best = pendingCollision{ball: b, obj: f, t: tt}
				found = true
			}
		}
		for j := i + 1; j < len(t.balls); j++ {
			other := t.balls[j]
			if tt := other.TestCollision(b, &t.ctx, dtMax); tt > MinReversalTime && (!found || tt > best.t) {
				best = pendingCollision{ball: b, obj: other, t: tt}
				found = true
			}
		}
	}
	if found {
		t.es.pending = best
	}
	return found
}

func (t *Table) pushUndo() {
	g := UndoGroup{
		phase:         t.es.phase,
		budget:        t.es.budget,
		dtReversalMax: t.es.dtReversalMax,
		pending:       t.es.pending,
	}
	for _, m := range t.moveables {
		g.records = append(g.records, m.captureUndo())
	}
	t.undo = append(t.undo, g)
}

// --- read-back ---

func (t *Table) FirstBall() *Ball {
	if len(t.balls) == 0 {
		return nil
	}
	return t.balls[0]
}

func (t *Table) FirstFlipper() *Flipper {
	if len(t.flippers) == 0 {
		return nil
	}
	return t.flippers[0]
}

func (t *Table) ForEachBall(fn func(*Ball)) {
	for _, b := range t.balls {
		fn(b)
	}
}

func (t *Table) ForEachFlipper(fn func(*Flipper)) {
	for _, f := range t.flippers {
		fn(f)
	}
}

// GetBallSnapshot copies the ball states for rendering. Take it under the
// embedding's lock and draw from the copy.
func (t *Table) GetBallSnapshot() []BallState {
	out := make([]BallState, len(t.balls))
	for i, b := range t.balls {
		out[i] = BallState{X: b.C.X, Y: b.C.Y, VX: b.V.X, VY: b.V.Y, R: b.R}
	}
	return out
}

func (t *Table) GetFlipperSnapshot() []FlipperState {
	out := make([]FlipperState, len(t.flippers))
	for i, f := range t.flippers {
		out[i] = FlipperState{
			X: f.Cr.X, Y: f.Cr.Y,
			Length: f.Length, R1: f.R1, R2: f.R2,
			Theta: f.Theta, Omega: f.Omega,
			Energized: f.Energized, Left: f.Left,
		}
	}
	return out
}
