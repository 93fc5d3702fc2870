package sim

// Ball is a moving rigid disc. Balls are owned by the Table for the life
// of the session; the table back-reference only reads shared table state
// (the gravity flag).
type Ball struct {
	C Point
	V Vec2
	R float64
	M float64

	table *Table
}

// Move translates the ball by V*dt. Negative dt backs the ball up to a
// collision instant.
func (b *Ball) Move(dt float64) {
	b.C = b.C.Add(b.V.Times(dt))
}

// Accelerate applies playfield-slope gravity and rolling friction for one
// step.
func (b *Ball) Accelerate(dt float64) {
	if b.table == nil || b.table.gravity {
		b.V.Y += slopeAccel * dt
	}
	b.V = b.V.Times(RollingDamping)
}

// Nudge adds an externally supplied velocity delta (cabinet motion
// compensation).
func (b *Ball) Nudge(dv Vec2) {
	b.V = b.V.Plus(dv)
}

// reflect bounces the ball's velocity off an infinite-mass surface with
// outward normal n and restitution e. Only the approaching component is
// reflected.
func (b *Ball) reflect(n Vec2, e float64) {
	vn := b.V.Dot(n)
	if vn < 0 {
		b.V = b.V.Minus(n.Times((1 + e) * vn))
	}
}

// TestCollision implements ball-ball detection with the receiver as the
// obstacle and b as the moving ball under test. Only a positive closing
// speed along the line of centers counts; balls in contact but separating
// are not re-reported.
func (b2 *Ball) TestCollision(b *Ball, ctx *Ctx, dtMax float64) float64 {
	overlap := b.R + b2.R - b.C.DistTo(b2.C)
	if overlap <= 0 {
		return NoCollision
	}
	n := b2.C.Sub(b.C).Normalize()
	closing := b.V.Minus(b2.V).Dot(n)
	if closing <= MinClosingSpeed {
		return NoCollision
	}
	t := overlap / closing
	if t <= MinReversalTime {
		return NoCollision
	}
	if t > dtMax {
		t = dtMax
	}
	return t
}

// ExecuteCollision applies the two-body elastic collision along the line
// of centers, mass-weighted and symmetric. Tangential components are
// untouched; momentum along the normal is conserved exactly.
func (b2 *Ball) ExecuteCollision(b *Ball, ctx *Ctx, dtRev float64) {
	n := b2.C.Sub(b.C).Normalize()
	u1 := b.V.Dot(n)
	u2 := b2.V.Dot(n)
	m1, m2 := b.M, b2.M
	v1 := (u1*(m1-m2) + 2*m2*u2) / (m1 + m2)
	v2 := (u2*(m2-m1) + 2*m1*u1) / (m1 + m2)
	b.V = b.V.Plus(n.Times(v1 - u1))
	b2.V = b2.V.Plus(n.Times(v2 - u2))
}

func (b *Ball) CollisionMove(dt float64, ctx *Ctx) {
	b.Move(dt)
}

func (b *Ball) Draw(dc DrawingCtx) {
	dc.DrawCircle(b.C, b.R)
}

func (b *Ball) captureUndo() undoRecord {
	return &ballUndo{b: b, c: b.C, v: b.V}
}
