package sim

import "math"

// Ctx carries per-step shared state into collision calls.
type Ctx struct {
	Table *Table
}

// Collidable is anything a ball can hit. TestCollision reports how far
// back in time (at current velocities) the ball and the collidable were
// exactly touching, or NoCollision if they do not overlap, are separating,
// or the contact is too marginal to act on. The result never exceeds
// dtMax, the caller's remaining backup budget.
//
// ExecuteCollision applies the velocity response; it is called after both
// bodies have been backed up to the touching instant. CollisionMove
// advances (or, with negative dt, rewinds) the collidable itself by dt.
type Collidable interface {
	TestCollision(b *Ball, ctx *Ctx, dtMax float64) float64
	ExecuteCollision(b *Ball, ctx *Ctx, dtRev float64)
	CollisionMove(dt float64, ctx *Ctx)
}

// Moveable is a body mutated by the evolve loop.
type Moveable interface {
	Move(dt float64)
	Accelerate(dt float64)
	Nudge(dv Vec2)
	captureUndo() undoRecord
}

// CollidableList aggregates collidables behind the Collidable interface.
// TestCollision picks the member whose collision happened first in the
// step, i.e. the largest positive reversal time; ExecuteCollision then
// dispatches to that member. First-encountered wins on exact ties, so
// resolution is deterministic for identical inputs.
type CollidableList struct {
	items []Collidable
	hit   Collidable
}

func (cl *CollidableList) Add(items ...Collidable) {
	cl.items = append(cl.items, items...)
}

func (cl *CollidableList) Items() []Collidable {
	return cl.items
}

func (cl *CollidableList) TestCollision(b *Ball, ctx *Ctx, dtMax float64) float64 {
	best := NoCollision
	cl.hit = nil
	for _, c := range cl.items {
		if t := c.TestCollision(b, ctx, dtMax); t > best {
			best = t
			cl.hit = c
		}
	}
	return best
}

func (cl *CollidableList) ExecuteCollision(b *Ball, ctx *Ctx, dtRev float64) {
	if cl.hit != nil {
		cl.hit.ExecuteCollision(b, ctx, dtRev)
	}
}

func (cl *CollidableList) CollisionMove(dt float64, ctx *Ctx) {
	for _, c := range cl.items {
		c.CollisionMove(dt, ctx)
	}
}

// FindRoot locates a zero of f inside [lo, hi] by bisection. f(lo) and
// f(hi) must bracket the root. Bisection always terminates: after iters
// halvings the current midpoint is returned, earlier if |f| drops below
// tol. No failure is signaled; the best estimate is the answer.
func FindRoot(f func(float64) float64, lo, hi float64, iters int, tol float64) float64 {
	flo := f(lo)
	for i := 0; i < iters; i++ {
		mid := (lo + hi) / 2
		fmid := f(mid)
		if math.Abs(fmid) < tol {
			return mid
		}
		if (fmid < 0) == (flo < 0) {
			lo, flo = mid, fmid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// segmentDistance returns the distance from c to the segment p1-p2.
func segmentDistance(c, p1, p2 Point) float64 {
	d := p2.Sub(p1)
	l2 := d.MagnitudeSquared()
	if l2 == 0 {
		return c.DistTo(p1)
	}
	t := c.Sub(p1).Dot(d) / l2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return c.DistTo(p1.Add(d.Times(t)))
}
