package sim

import (
	"log"
	"math"
)

// Flipper is a moving composite body: a pivot circle, a tip circle and
// the two outer tangent edges between them, all recomputed from the
// current angle. It is driven by a solenoid-like torque model with three
// constant-acceleration regimes (lift, hold, spring return).
type Flipper struct {
	CollidableList
	Left bool

	Cr        Point   // rotation center
	Length    float64 // pivot-to-tip-center distance
	R1, R2    float64 // pivot and tip radii
	ThetaDown float64 // rest angle, radians
	ThetaUp   float64 // energized stop angle, radians
	Theta     float64
	Omega     float64
	Energized bool

	E           float64
	AlphaLift   float64
	AlphaHold   float64
	AlphaSpring float64
	Inertia     float64
	EOS         float64
	OmegaMax    float64

	FrictionVMin  float64
	FrictionVFull float64
	FrictionCoef  float64

	// Post-top-stop overshoot window. While topStopTime runs down,
	// collisions see a softened elasticity and the decaying remembered
	// omega instead of the real (zeroed) one.
	topStopTime  float64
	topStopOmega float64

	topEdge    *flipperEdge
	bottomEdge *flipperEdge
	round1     *Round
	round2     *flipperEnd

	table *Table

	// Telemetry, populated only in debug mode.
	LastImpact  *FlipperImpact
	ImpactCount int
}

// FlipperImpact records one resolved flipper collision for tuning.
type FlipperImpact struct {
	Contact  Point
	Normal   Vec2
	RelSpeed float64
	Omega    float64
	Pinned   bool
}

func newFlipper(table *Table, left bool, cr Point, length, r1, r2, restDeg, spanDeg, e float64) *Flipper {
	f := &Flipper{
		Left:          left,
		Cr:            cr,
		Length:        length,
		R1:            r1,
		R2:            r2,
		ThetaDown:     restDeg * math.Pi / 180,
		ThetaUp:       (restDeg + spanDeg) * math.Pi / 180,
		E:             e,
		AlphaLift:     DefaultAlphaLift,
		AlphaHold:     DefaultAlphaHold,
		AlphaSpring:   DefaultAlphaSpring,
		Inertia:       DefaultInertia,
		EOS:           DefaultEOS,
		FrictionVMin:  DefaultFrictionVMin,
		FrictionVFull: DefaultFrictionVFull,
		FrictionCoef:  DefaultFrictionCoef,
		table:         table,
	}
	span := math.Abs(f.ThetaUp - f.ThetaDown)
	f.OmegaMax = math.Sqrt(2 * f.AlphaLift * span)

	f.topEdge = &flipperEdge{f: f, top: true}
	f.topEdge.E = e
	f.bottomEdge = &flipperEdge{f: f, top: false}
	f.bottomEdge.E = e
	f.round1 = NewRound(cr, r1, e)
	f.round2 = &flipperEnd{f: f}
	f.round2.R = r2
	f.round2.E = e
	f.Add(f.topEdge, f.bottomEdge, f.round1, f.round2)

	f.SetTheta(f.ThetaDown)
	return f
}

func (f *Flipper) upSign() float64 {
	if f.ThetaUp >= f.ThetaDown {
		return 1
	}
	return -1
}

// SetTheta sets the angle and recomputes the derived edge and tip
// geometry. The collision code depends on the edges always being current,
// so the geometry is never cached lazily.
func (f *Flipper) SetTheta(theta float64) {
	f.Theta = theta
	tip := f.Cr.Add(VecFromPolar(f.Length, theta))
	f.round2.C = tip
	p1, p2 := f.edgeEndpointsAt(true, theta)
	f.topEdge.P1, f.topEdge.P2 = p1, p2
	f.topEdge.recompute()
	p1, p2 = f.edgeEndpointsAt(false, theta)
	f.bottomEdge.P1, f.bottomEdge.P2 = p1, p2
	f.bottomEdge.recompute()
}

// edgeEndpointsAt computes an outer tangent edge of the two end circles
// for an arbitrary angle, without mutating the flipper.
func (f *Flipper) edgeEndpointsAt(top bool, theta float64) (Point, Point) {
	tip := f.Cr.Add(VecFromPolar(f.Length, theta))
	dn := VecFromPolar(1, theta)
	cosPhi := (f.R1 - f.R2) / f.Length
	sinPhi := math.Sqrt(math.Max(0, 1-cosPhi*cosPhi))
	side := dn.LeftNormal()
	if !top {
		side = dn.RightNormal()
	}
	u := dn.Times(cosPhi).Plus(side.Times(sinPhi))
	return f.Cr.Add(u.Times(f.R1)), tip.Add(u.Times(f.R2))
}

// pointVelocity is the instantaneous velocity of a point riding the
// flipper: omega cross r.
func (f *Flipper) pointVelocity(p Point) Vec2 {
	return p.Sub(f.Cr).LeftNormal().Times(f.Omega)
}

// Move advances the angle and handles the travel stops. Slamming the top
// stop at speed arms the overshoot window; the bottom stop rebounds off
// its rubber rest instead of stopping dead.
func (f *Flipper) Move(dt float64) {
	if f.topStopTime > 0 {
		f.topStopTime -= dt
		if f.topStopTime <= 0 {
			f.topStopTime = 0
			f.topStopOmega = 0
		} else {
			f.topStopOmega *= math.Exp(-dt / TopStopTau)
		}
	}

	theta := f.Theta + f.Omega*dt
	s := f.upSign()
	switch {
	case s*(theta-f.ThetaUp) >= 0 && s*f.Omega > 0:
		theta = f.ThetaUp
		if math.Abs(f.Omega) >= TopStopArmFraction*f.OmegaMax {
			f.topStopTime = TopStopWindow
			f.topStopOmega = f.Omega
		}
		f.Omega = 0
	case s*(theta-f.ThetaDown) <= 0 && s*f.Omega < 0:
		theta = f.ThetaDown
		if math.Abs(f.Omega) > BottomRestOmega {
			f.Omega = -f.Omega * BottomBounce
		} else {
			f.Omega = 0
		}
	}
	f.SetTheta(theta)
}

// Accelerate picks the torque regime from the energized flag and the
// normalized stroke position: full lift up to the end-of-stroke switch,
// hold past it, spring return when released.
func (f *Flipper) Accelerate(dt float64) {
	s := f.upSign()
	span := f.ThetaUp - f.ThetaDown
	pos := 0.0
	if span != 0 {
		pos = (f.Theta - f.ThetaDown) / span
	}
	var alpha float64
	switch {
	case f.Energized && pos < f.EOS:
		alpha = s * f.AlphaLift
	case f.Energized:
		alpha = s * f.AlphaHold
	case pos > 0 || f.Omega != 0:
		alpha = -s * f.AlphaSpring
	}
	f.Omega += alpha * dt
}

// Nudge converts a cabinet velocity change to an angular kick by treating
// the nudge as displacing the tip.
func (f *Flipper) Nudge(dv Vec2) {
	tangent := VecFromPolar(1, f.Theta).LeftNormal()
	f.Omega += tangent.Dot(dv) / f.Length
}

// CollisionMove rotates at constant omega, without stop handling; it is
// only used for the short backup/replay moves around a collision instant.
func (f *Flipper) CollisionMove(dt float64, ctx *Ctx) {
	f.SetTheta(f.Theta + f.Omega*dt)
}

// atStopAgainst reports whether the flipper is pinned at a stop in the
// direction the angular response dOmega would push it.
func (f *Flipper) atStopAgainst(dOmega float64) bool {
	s := f.upSign()
	if f.Theta == f.ThetaDown && s*dOmega < 0 {
		return true
	}
	if f.Theta == f.ThetaUp && s*dOmega > 0 {
		return true
	}
	return false
}

// collide resolves a ball impact at the given contact point with outward
// normal n, splitting momentum between the ball's linear motion and the
// flipper's angular motion via the effective inertia at the contact.
func (f *Flipper) collide(b *Ball, contact Point, n Vec2, ctx *Ctx) {
	r := contact.Sub(f.Cr)
	lever := r.Cross(n)

	e := f.E
	omega := f.Omega
	inWindow := f.topStopTime > 0
	if inWindow {
		e *= TopStopElasticity
		omega = f.topStopOmega
	}

	vp := r.LeftNormal().Times(omega)
	u1 := b.V.Dot(n)
	u2 := vp.Dot(n)
	urel := u1 - u2
	if urel >= 0 {
		return // already separating
	}

	pinned := f.atStopAgainst(-lever) || math.Abs(lever) < 1e-9
	m1 := b.M
	var j float64
	if pinned {
		j = -(1 + e) * urel * m1
		b.V = b.V.Plus(n.Times(j / m1))
	} else {
		m2 := f.Inertia / (lever * lever)
		j = -(1 + e) * urel * (m1 * m2) / (m1 + m2)
		b.V = b.V.Plus(n.Times(j / m1))
		f.Omega += -lever * j / f.Inertia
	}

	// Tangential friction, ramped in once the normal approach speed
	// clears the minimum.
	approach := -urel
	if approach > f.FrictionVMin {
		ramp := (approach - f.FrictionVMin) / (f.FrictionVFull - f.FrictionVMin)
		if ramp > 1 {
			ramp = 1
		}
		tdir := n.LeftNormal()
		vt := b.V.Minus(vp).Dot(tdir)
		b.V = b.V.Minus(tdir.Times(ramp * f.FrictionCoef * vt))
	}

	if ctx != nil && ctx.Table != nil && ctx.Table.debug {
		f.LastImpact = &FlipperImpact{
			Contact:  contact,
			Normal:   n,
			RelSpeed: urel,
			Omega:    omega,
			Pinned:   pinned,
		}
		f.ImpactCount++
		log.Printf("[SIM] flipper impact: contact=(%.2f,%.2f) rel=%.1f omega=%.2f pinned=%v window=%v",
			contact.X, contact.Y, urel, omega, pinned, inWindow)
	}
}

func (f *Flipper) Draw(dc DrawingCtx) {
	dc.DrawCircle(f.round1.C, f.round1.R)
	dc.DrawCircle(f.round2.C, f.round2.R)
	dc.DrawLine(f.topEdge.P1, f.topEdge.P2)
	dc.DrawLine(f.bottomEdge.P1, f.bottomEdge.P2)
}

func (f *Flipper) captureUndo() undoRecord {
	return &flipperUndo{
		f:            f,
		theta:        f.Theta,
		omega:        f.Omega,
		topStopTime:  f.topStopTime,
		topStopOmega: f.topStopOmega,
	}
}

// flipperEdge is one of the two tangent edges, moving with the flipper.
type flipperEdge struct {
	LineSeg
	f   *Flipper
	top bool
}

// TestCollision first runs the static current-instant overlap test with
// the relative velocity of ball and contact point, which is exact for a
// non-rotating edge. When the flipper is rotating, the edge's true
// position is a trigonometric function of time, so the linear estimate is
// refined by bisection on the recomputed-geometry separation.
func (fe *flipperEdge) TestCollision(b *Ball, ctx *Ctx, dtMax float64) float64 {
	p := fe.contactPoint(b.C)
	d := b.C.Sub(p)
	dist := d.Magnitude()
	overlap := b.R - dist
	if overlap <= 0 || dist == 0 {
		return NoCollision
	}
	n := d.Times(1 / dist)
	rel := b.V.Minus(fe.f.pointVelocity(p))
	speed := -rel.Dot(n)
	if speed <= MinClosingSpeed {
		return NoCollision
	}
	t0 := overlap / speed
	if t0 <= MinReversalTime {
		return NoCollision
	}
	if t0 > dtMax {
		t0 = dtMax
	}
	if fe.f.Omega == 0 {
		return t0
	}

	sep := func(dt float64) float64 {
		c := b.C.Add(b.V.Times(-dt))
		p1, p2 := fe.f.edgeEndpointsAt(fe.top, fe.f.Theta-fe.f.Omega*dt)
		return segmentDistance(c, p1, p2) - b.R
	}
	t := refineReversal(sep, t0, dtMax)
	if t <= MinReversalTime {
		return NoCollision
	}
	return t
}

func (fe *flipperEdge) ExecuteCollision(b *Ball, ctx *Ctx, dtRev float64) {
	p := fe.contactPoint(b.C)
	n := b.C.Sub(p).Normalize()
	fe.f.collide(b, p, n, ctx)
}

// CollisionMove is a no-op: the owning flipper moves as a whole.
func (fe *flipperEdge) CollisionMove(dt float64, ctx *Ctx) {}

// flipperEnd is the rounded tip, moving with the flipper. Same two-phase
// pattern as the edge but with point-contact geometry.
type flipperEnd struct {
	Round
	f *Flipper
}

func (fe *flipperEnd) TestCollision(b *Ball, ctx *Ctx, dtMax float64) float64 {
	d := b.C.Sub(fe.C)
	dist := d.Magnitude()
	overlap := b.R + fe.R - dist
	if overlap <= 0 || dist == 0 {
		return NoCollision
	}
	n := d.Times(1 / dist)
	rel := b.V.Minus(fe.f.pointVelocity(fe.C))
	speed := -rel.Dot(n)
	if speed <= MinClosingSpeed {
		return NoCollision
	}
	t0 := overlap / speed
	if t0 <= MinReversalTime {
		return NoCollision
	}
	if t0 > dtMax {
		t0 = dtMax
	}
	if fe.f.Omega == 0 {
		return t0
	}

	sep := func(dt float64) float64 {
		c := b.C.Add(b.V.Times(-dt))
		tip := fe.f.Cr.Add(VecFromPolar(fe.f.Length, fe.f.Theta-fe.f.Omega*dt))
		return c.DistTo(tip) - (b.R + fe.R)
	}
	t := refineReversal(sep, t0, dtMax)
	if t <= MinReversalTime {
		return NoCollision
	}
	return t
}

func (fe *flipperEnd) ExecuteCollision(b *Ball, ctx *Ctx, dtRev float64) {
	n := b.C.Sub(fe.C).Normalize()
	contact := fe.C.Add(n.Times(fe.R))
	fe.f.collide(b, contact, n, ctx)
}

func (fe *flipperEnd) CollisionMove(dt float64, ctx *Ctx) {}

// refineReversal sharpens a linear reversal-time estimate t0 against the
// true separation function. sep(0) is negative (overlapping now); the
// bracket direction depends on the sign of the residual at t0, and the
// result never exceeds dtMax.
func refineReversal(sep func(float64) float64, t0, dtMax float64) float64 {
	r0 := sep(t0)
	switch {
	case r0 > RootTolerance:
		return FindRoot(sep, 0, t0, RootIterations, RootTolerance)
	case r0 < -RootTolerance:
		if t0 >= dtMax || sep(dtMax) < 0 {
			return dtMax
		}
		return FindRoot(sep, t0, dtMax, RootIterations, RootTolerance)
	default:
		return t0
	}
}
