package sim

import (
	"math"
	"testing"
)

func buildBox(t *Table, size, e float64) {
	t.AddWall(e, 0, 0, size, 0)
	t.AddWall(e, size, 0, size, size)
	t.AddWall(e, size, size, 0, size)
	t.AddWall(e, 0, size, 0, 0)
}

func TestBoxContainment(t *testing.T) {
	// A fast ball bouncing around a closed box for ten simulated seconds
	// must never tunnel through a wall.
	table := NewTable()
	table.EnableGravity(false)
	buildBox(table, 152, 0.75)
	b := table.AddBall(76, 76, 350, 275)

	lo := b.R - 0.1
	hi := 152 - b.R + 0.1
	for i := 0; i < 20000; i++ {
		table.Evolve(0.0005)
		if b.C.X < lo || b.C.X > hi || b.C.Y < lo || b.C.Y > hi {
			t.Fatalf("ball escaped the box at step %d: %v", i, b.C)
		}
	}
}

func TestUndoReplayDeterminism(t *testing.T) {
	table := NewTable()
	table.EnableGravity(false)
	table.SetUndoCapture(true)
	table.AddWall(0.9, 0, -100, 0, 100)
	b := table.AddBall(20, 0, -200, 0)

	const dt = 0.0005
	var preV Vec2
	var postC Point
	var postV Vec2
	hit := false
	for i := 0; i < 200; i++ {
		preV = b.V
		table.Evolve(dt)
		if table.UndoDepth() == 1 {
			postC, postV = b.C, b.V
			hit = true
			break
		}
	}
	if !hit {
		t.Fatal("ball never reached the wall")
	}

	if !table.UndoEvolve() {
		t.Fatal("UndoEvolve failed with a non-empty stack")
	}
	// The snapshot is taken after the move but before the backup, so the
	// velocity must come back bit-identical to the pre-step value.
	if b.V != preV {
		t.Errorf("undo did not restore velocity exactly: %v != %v", b.V, preV)
	}
	if table.UndoDepth() != 0 {
		t.Errorf("undo stack not popped: depth=%d", table.UndoDepth())
	}

	// Replaying the interrupted step must land on the identical state.
	table.Evolve(dt)
	if b.C != postC || b.V != postV {
		t.Errorf("replay diverged: got (%v %v) want (%v %v)", b.C, b.V, postC, postV)
	}
}

func TestUndoRestoresFlipperState(t *testing.T) {
	// Undo must revert the flipper along with the ball: the collision
	// impulse changes omega, and popping the capture brings back the value
	// the flipper carried into the step.
	table := NewTable()
	table.EnableGravity(false)
	table.SetUndoCapture(true)
	f := table.AddFlipper(true, 0, 0, 60, 11, 7, -30, 50, 0.5)
	p := VecFromPolar(50, 10*math.Pi/180)
	b := table.AddBall(p.X, p.Y, 0, 0)
	table.SetFlipperButtons(true, false)

	const dt = 0.0005
	var preOmega float64
	var preV Vec2
	var postC Point
	var postV Vec2
	var postTheta, postOmega float64
	hit := false
	for i := 0; i < 400; i++ {
		preOmega = f.Omega
		preV = b.V
		table.Evolve(dt)
		if table.UndoDepth() > 0 {
			postC, postV = b.C, b.V
			postTheta, postOmega = f.Theta, f.Omega
			hit = true
			break
		}
	}
	if !hit {
		t.Fatal("flipper never struck the ball")
	}

	// Pop every capture from the step: the state must come back to what
	// both bodies carried into it, bit for bit.
	for depth := table.UndoDepth(); depth > 0; depth-- {
		if !table.UndoEvolve() {
			t.Fatal("UndoEvolve failed with a non-empty stack")
		}
	}
	if f.Omega != preOmega {
		t.Errorf("undo did not restore flipper omega exactly: %v != %v", f.Omega, preOmega)
	}
	if b.V != preV {
		t.Errorf("undo did not restore ball velocity exactly: %v != %v", b.V, preV)
	}

	// Replaying the interrupted step must land on the identical state for
	// ball and flipper alike.
	table.Evolve(dt)
	if b.C != postC || b.V != postV {
		t.Errorf("replay diverged for the ball: got (%v %v) want (%v %v)", b.C, b.V, postC, postV)
	}
	if f.Theta != postTheta || f.Omega != postOmega {
		t.Errorf("replay diverged for the flipper: theta %v want %v, omega %v want %v",
			f.Theta, postTheta, f.Omega, postOmega)
	}
}

func TestUndoCaptureDisableClearsStack(t *testing.T) {
	table := NewTable()
	table.EnableGravity(false)
	table.SetUndoCapture(true)
	table.AddWall(0.9, 0, -100, 0, 100)
	table.AddBall(15, 0, -200, 0)
	for i := 0; i < 50; i++ {
		table.Evolve(0.0005)
	}
	if table.UndoDepth() == 0 {
		t.Fatal("expected at least one captured collision")
	}
	table.SetUndoCapture(false)
	if table.UndoDepth() != 0 {
		t.Errorf("disabling capture must clear the stack: depth=%d", table.UndoDepth())
	}
}

func TestCollisionStepMode(t *testing.T) {
	table := NewTable()
	table.EnableGravity(false)
	table.SetCollisionStepMode(true)
	table.AddWall(0.75, 0, -100, 0, 100)
	b := table.AddBall(15, 0, -200, 0)

	// First call runs up to the collision and pauses with the ball backed
	// up to the touching position.
	table.Evolve(0.05)
	if !table.IsPreCollision() {
		t.Fatal("expected pause before collision execution")
	}
	if math.Abs(b.C.X-b.R) > 1e-9 {
		t.Errorf("ball not backed up to contact: x=%f want %f", b.C.X, b.R)
	}
	if b.V.X != -200 {
		t.Errorf("velocity must be untouched at the pause: vx=%f", b.V.X)
	}

	// Second call executes the collision and finishes the step.
	table.Evolve(0.05)
	if table.IsPreCollision() {
		t.Error("step did not complete after resume")
	}
	if b.V.X <= 0 {
		t.Errorf("ball not reflected: vx=%f", b.V.X)
	}
}

func TestSimultaneousCollisionOrder(t *testing.T) {
	// Two balls reach the same wall in the same step with identical
	// reversal times. The tie-break must not starve either one: both get
	// resolved before the step ends.
	table := NewTable()
	table.EnableGravity(false)
	table.AddWall(1, 0, -100, 0, 100)
	b1 := table.AddBall(14, -40, -200, 0)
	b2 := table.AddBall(14, 40, -200, 0)
	for i := 0; i < 40; i++ {
		table.Evolve(0.0005)
	}
	if b1.V.X <= 0 || b2.V.X <= 0 {
		t.Errorf("both balls should reflect: v1=%v v2=%v", b1.V, b2.V)
	}
}

type recordingCtx struct {
	circles int
	lines   int
}

func (r *recordingCtx) DrawCircle(c Point, rad float64) { r.circles++ }
func (r *recordingCtx) DrawLine(p1, p2 Point)           { r.lines++ }

func TestDrawVisitsEveryElement(t *testing.T) {
	table := NewTable()
	table.AddBall(10, 10, 0, 0)
	table.AddWall(0.8, 0, 0, 100, 0)
	table.AddRound(50, 50, 10, 0.8)
	table.AddFlipper(true, 20, 80, 60, 11, 7, -30, 50, 0.5)

	var rc recordingCtx
	table.Draw(&rc)
	// ball + round + flipper pivot and tip
	if rc.circles != 4 {
		t.Errorf("circles drawn: got %d want 4", rc.circles)
	}
	// wall + two flipper edges
	if rc.lines != 3 {
		t.Errorf("lines drawn: got %d want 3", rc.lines)
	}
}

type circleMark struct {
	c Point
	r float64
}

type lineMark struct {
	p1, p2 Point
}

type geometryCtx struct {
	circles []circleMark
	lines   []lineMark
}

func (g *geometryCtx) DrawCircle(c Point, r float64) { g.circles = append(g.circles, circleMark{c, r}) }
func (g *geometryCtx) DrawLine(p1, p2 Point)         { g.lines = append(g.lines, lineMark{p1, p2}) }

func TestSnapshotDrawMatchesLiveDraw(t *testing.T) {
	// Rendering from a snapshot rebuilds the flipper edges from the
	// captured angle; the result must coincide with drawing the live
	// bodies, primitive for primitive.
	table := NewTable()
	table.AddBall(10, 20, 30, 40)
	f := table.AddFlipper(true, 100, 200, 60, 11, 7, -30, 50, 0.5)
	f.SetTheta(-0.2) // mid-stroke, so the edge rebuild actually matters

	var live geometryCtx
	table.Draw(&live)

	var snap geometryCtx
	DrawBallStates(&snap, table.GetBallSnapshot())
	DrawFlipperStates(&snap, table.GetFlipperSnapshot())

	if len(snap.circles) != len(live.circles) || len(snap.lines) != len(live.lines) {
		t.Fatalf("primitive counts differ: snapshot %d/%d live %d/%d",
			len(snap.circles), len(snap.lines), len(live.circles), len(live.lines))
	}
	for i := range live.circles {
		if snap.circles[i] != live.circles[i] {
			t.Errorf("circle %d: snapshot %+v live %+v", i, snap.circles[i], live.circles[i])
		}
	}
	for i := range live.lines {
		if snap.lines[i] != live.lines[i] {
			t.Errorf("line %d: snapshot %+v live %+v", i, snap.lines[i], live.lines[i])
		}
	}
}

func TestSnapshotsMatchLiveState(t *testing.T) {
	table := NewTable()
	b := table.AddBall(10, 20, 30, 40)
	f := table.AddFlipper(true, 100, 200, 60, 11, 7, -30, 50, 0.5)

	bs := table.GetBallSnapshot()
	if len(bs) != 1 || bs[0].X != b.C.X || bs[0].VY != b.V.Y || bs[0].R != b.R {
		t.Errorf("ball snapshot mismatch: %+v", bs)
	}
	fs := table.GetFlipperSnapshot()
	if len(fs) != 1 || fs[0].Theta != f.Theta || fs[0].X != f.Cr.X || !fs[0].Left {
		t.Errorf("flipper snapshot mismatch: %+v", fs)
	}
}
