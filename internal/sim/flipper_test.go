package sim

import (
	"math"
	"testing"
)

const flipperDT = 0.0005

func TestFlipperFullStroke(t *testing.T) {
	table := NewTable()
	table.EnableGravity(false)
	f := table.AddFlipper(true, 0, 0, 60, 11, 7, -30, 50, 0.5)

	table.SetFlipperButtons(true, false)
	prev := f.Theta
	reached := false
	for i := 0; i < 300; i++ {
		table.Evolve(flipperDT)
		if f.Theta < prev-1e-12 {
			t.Fatalf("theta not monotone during lift: %f -> %f", prev, f.Theta)
		}
		prev = f.Theta
		if f.Theta == f.ThetaUp {
			reached = true
			break
		}
	}
	if !reached {
		t.Fatalf("flipper never reached top stop: theta=%f up=%f", f.Theta, f.ThetaUp)
	}
	// Slamming the stop near full speed arms the overshoot window.
	if f.topStopTime <= 0 {
		t.Error("top-stop overshoot window not armed after full stroke")
	}

	// Held at the stop: only the hold torque trickles in each step.
	for i := 0; i < 50; i++ {
		table.Evolve(flipperDT)
	}
	if f.Theta != f.ThetaUp {
		t.Errorf("flipper drifted off top stop: theta=%f", f.Theta)
	}
	if math.Abs(f.Omega) > 0.1 {
		t.Errorf("flipper still swinging at stop: omega=%f", f.Omega)
	}

	// Release: spring return, a couple of decaying bounces, then rest.
	table.SetFlipperButtons(false, false)
	for i := 0; i < 2000; i++ {
		table.Evolve(flipperDT)
	}
	if f.Theta != f.ThetaDown {
		t.Errorf("flipper did not settle at rest: theta=%f down=%f", f.Theta, f.ThetaDown)
	}
	if f.Omega != 0 {
		t.Errorf("flipper still moving at rest: omega=%f", f.Omega)
	}
}

func TestFlipperMirroredStroke(t *testing.T) {
	// Negative span: the energized stop is below the rest angle and the
	// whole stroke runs clockwise.
	table := NewTable()
	table.EnableGravity(false)
	f := table.AddFlipper(false, 0, 0, 60, 11, 7, 210, -50, 0.5)
	if f.upSign() != -1 {
		t.Fatalf("mirrored flipper upSign: got %f", f.upSign())
	}

	table.SetFlipperButtons(false, true)
	prev := f.Theta
	for i := 0; i < 300; i++ {
		table.Evolve(flipperDT)
		if f.Theta > prev+1e-12 {
			t.Fatalf("theta not monotone during mirrored lift: %f -> %f", prev, f.Theta)
		}
		prev = f.Theta
		if f.Theta == f.ThetaUp {
			return
		}
	}
	t.Fatalf("mirrored flipper never reached stop: theta=%f up=%f", f.Theta, f.ThetaUp)
}

func TestFlipperStaysInRange(t *testing.T) {
	table := NewTable()
	table.EnableGravity(false)
	f := table.AddFlipper(true, 0, 0, 60, 11, 7, -30, 50, 0.5)

	lo := math.Min(f.ThetaDown, f.ThetaUp)
	hi := math.Max(f.ThetaDown, f.ThetaUp)
	on := false
	for i := 0; i < 3000; i++ {
		if i%37 == 0 {
			on = !on
			table.SetFlipperButtons(on, false)
		}
		table.Evolve(flipperDT)
		if f.Theta < lo-1e-9 || f.Theta > hi+1e-9 {
			t.Fatalf("theta left stroke range at step %d: %f not in [%f,%f]", i, f.Theta, lo, hi)
		}
	}
}

func TestFlipperLaunchesBall(t *testing.T) {
	table := NewTable()
	table.EnableGravity(false)
	f := table.AddFlipper(true, 0, 0, 60, 11, 7, -30, 50, 0.5)

	// Resting ball in the stroke path, 50mm out from the pivot.
	b := table.AddBall(VecFromPolar(50, 10*math.Pi/180).X, VecFromPolar(50, 10*math.Pi/180).Y, 0, 0)

	table.SetFlipperButtons(true, false)
	for i := 0; i < 300; i++ {
		table.Evolve(flipperDT)
	}

	if speed := b.V.Magnitude(); speed < 500 {
		t.Errorf("flipper barely moved the ball: speed=%f", speed)
	}
	// The contact tangent at this stroke position points to +Y.
	if b.V.Y <= 0 {
		t.Errorf("ball launched the wrong way: v=%v", b.V)
	}
	if f.Theta != f.ThetaUp {
		t.Errorf("flipper did not complete stroke after impact: theta=%f", f.Theta)
	}
}

func TestFlipperEdgeRefinement(t *testing.T) {
	// With the flipper rotating, the edge test must refine the linear
	// estimate: backing both bodies up by the reported time leaves them
	// within the root tolerance of touching.
	table := NewTable()
	f := table.AddFlipper(true, 0, 0, 60, 11, 7, -30, 50, 0.5)
	f.SetTheta(-10 * math.Pi / 180)
	f.Omega = 30

	b := table.AddBall(40, 14, 0, -100)
	tt := f.TestCollision(b, &table.ctx, 0.01)
	if tt <= 0 {
		t.Fatalf("rotating edge contact not detected")
	}

	c := b.C.Add(b.V.Times(-tt))
	theta := f.Theta - f.Omega*tt
	p1, p2 := f.edgeEndpointsAt(true, theta)
	sepTop := segmentDistance(c, p1, p2) - b.R
	p1, p2 = f.edgeEndpointsAt(false, theta)
	sepBot := segmentDistance(c, p1, p2) - b.R
	tip := f.Cr.Add(VecFromPolar(f.Length, theta))
	sepTip := c.DistTo(tip) - (b.R + f.R2)
	sep := math.Min(sepTop, math.Min(sepBot, sepTip))
	if math.Abs(sep) > 0.05 {
		t.Errorf("refined reversal time leaves separation %f", sep)
	}
}

func TestFlipperUndoRecordRoundTrip(t *testing.T) {
	// The capture must bring back the full flipper state, including the
	// top-stop overshoot window, and rebuild the derived edge geometry.
	table := NewTable()
	f := table.AddFlipper(true, 0, 0, 60, 11, 7, -30, 50, 0.5)
	f.SetTheta(0.1)
	f.Omega = 12
	f.topStopTime = 0.02
	f.topStopOmega = 40

	rec := f.captureUndo()

	f.SetTheta(0.3)
	f.Omega = -5
	f.topStopTime = 0
	f.topStopOmega = 0

	rec.apply()
	if f.Theta != 0.1 || f.Omega != 12 {
		t.Errorf("restore missed theta/omega: %v %v", f.Theta, f.Omega)
	}
	if f.topStopTime != 0.02 || f.topStopOmega != 40 {
		t.Errorf("restore missed overshoot window: %v %v", f.topStopTime, f.topStopOmega)
	}
	p1, p2 := f.edgeEndpointsAt(true, 0.1)
	if f.topEdge.P1 != p1 || f.topEdge.P2 != p2 {
		t.Errorf("edge geometry stale after restore: %v %v", f.topEdge.P1, f.topEdge.P2)
	}
}

func TestFlipperNudgeKicksOmega(t *testing.T) {
	table := NewTable()
	f := table.AddFlipper(true, 0, 0, 60, 11, 7, 0, 50, 0.5)
	f.Nudge(Vec2{X: 0, Y: 60}) // along the tip tangent at theta=0
	if math.Abs(f.Omega-1) > 1e-9 {
		t.Errorf("nudge kick: got omega=%f want 1", f.Omega)
	}
}
