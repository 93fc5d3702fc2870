package sim

import (
	"math"
	"testing"
)

func TestWallReflectionRestitution(t *testing.T) {
	// Vertical wall at x=0; ball overlapping it, moving into it.
	table := NewTable()
	wall := table.AddWall(0.75, 0, 0, 0, 100)
	b := table.AddBall(10, 50, -100, 40)

	tt := wall.TestCollision(b, &table.ctx, 0.001)
	if tt <= 0 {
		t.Fatalf("expected collision, got t=%f", tt)
	}

	wall.ExecuteCollision(b, &table.ctx, tt)
	// Post-collision normal speed must be e times the approach speed.
	if math.Abs(b.V.X-75) > 1e-9 {
		t.Errorf("normal speed after: got %f want 75", b.V.X)
	}
	if b.V.Y != 40 {
		t.Errorf("tangential speed changed: got %f want 40", b.V.Y)
	}
}

func TestWallNoCollisionWhenSeparating(t *testing.T) {
	table := NewTable()
	wall := table.AddWall(0.75, 0, 0, 0, 100)
	// Overlapping but moving away.
	b := table.AddBall(10, 50, 200, 0)
	if tt := wall.TestCollision(b, &table.ctx, 0.001); tt != NoCollision {
		t.Errorf("separating ball reported colliding: t=%f", tt)
	}
}

func TestLineSegEndpointContact(t *testing.T) {
	table := NewTable()
	wall := table.AddWall(0.9, 0, 0, 10, 0)
	// Ball past the P2 end, overlapping the endpoint, moving toward it.
	b := table.AddBall(15, 10, -50, -100)
	tt := wall.TestCollision(b, &table.ctx, 0.05)
	if tt <= 0 {
		t.Fatalf("endpoint contact not detected: t=%f", tt)
	}
	before := b.V.Magnitude()
	wall.ExecuteCollision(b, &table.ctx, tt)
	if b.V.Magnitude() > before+1e-9 {
		t.Errorf("endpoint reflection gained energy: %f -> %f", before, b.V.Magnitude())
	}
	// Must now be moving away from the endpoint.
	n := b.C.Sub(Point{X: 10, Y: 0}).Normalize()
	if b.V.Dot(n) < 0 {
		t.Errorf("still approaching endpoint after reflection: vn=%f", b.V.Dot(n))
	}
}

func TestRoundReversalTime(t *testing.T) {
	table := NewTable()
	post := table.AddRound(0, 0, 10, 1.0)
	// Ball overlapping the post by 1.49mm, approaching at 100mm/s.
	b := table.AddBall(22, 0, -100, 0)
	tt := post.TestCollision(b, &table.ctx, 1)
	overlap := b.R + 10 - 22
	if math.Abs(tt-overlap/100) > 1e-9 {
		t.Errorf("reversal time: got %f want %f", tt, overlap/100)
	}
	// Backing up by the reversal time leaves the bodies exactly touching.
	b.Move(-tt)
	if math.Abs(b.C.DistTo(post.C)-(b.R+10)) > 1e-9 {
		t.Errorf("backup does not touch: dist=%f want %f", b.C.DistTo(post.C), b.R+10)
	}
}

func TestMoveRoundTrip(t *testing.T) {
	table := NewTable()
	b := table.AddBall(12.5, 34.25, 311.7, -96.3)
	c0 := b.C
	b.Move(0.123)
	b.Move(-0.123)
	if math.Abs(b.C.X-c0.X) > 1e-9 || math.Abs(b.C.Y-c0.Y) > 1e-9 {
		t.Errorf("move round-trip drifted: %v -> %v", c0, b.C)
	}
}

func TestOpenPolygonIsChain(t *testing.T) {
	pg := NewPolygon(0, 0.8, []Point{{0, 0}, {100, 0}, {100, 100}})
	if len(pg.segs) != 2 {
		t.Fatalf("open chain: got %d segments, want 2", len(pg.segs))
	}
	if len(pg.rounds) != 0 {
		t.Errorf("open chain should have no corner discs, got %d", len(pg.rounds))
	}
}

func TestRoundedPolygonCollision(t *testing.T) {
	table := NewTable()
	// CCW square with 10mm rounded corners.
	pg := table.AddPolygon(10, 0.7, []Point{{0, 0}, {100, 0}, {100, 100}, {0, 100}})
	if len(pg.segs) != 4 || len(pg.rounds) != 4 {
		t.Fatalf("rounded square: %d segs %d rounds, want 4/4", len(pg.segs), len(pg.rounds))
	}

	// Ball below the bottom edge, moving up into the offset edge.
	b := table.AddBall(50, -22, 0, 60)
	tt := pg.TestCollision(b, &table.ctx, 0.1)
	if tt <= 0 {
		t.Fatalf("no collision against offset edge: t=%f", tt)
	}
	pg.ExecuteCollision(b, &table.ctx, tt)
	if b.V.Y >= 0 {
		t.Errorf("ball not reflected downward: vy=%f", b.V.Y)
	}

	// Ball outside a corner, moving at the corner disc.
	b2 := table.AddBall(-14, -14, 40, 40)
	tt = pg.TestCollision(b2, &table.ctx, 0.1)
	if tt <= 0 {
		t.Fatalf("no collision against corner disc: t=%f", tt)
	}
}

func TestFindRoot(t *testing.T) {
	// Root of cos(x)-x near 0.739.
	f := func(x float64) float64 { return math.Cos(x) - x }
	root := FindRoot(f, 0, 1, 30, 1e-9)
	if math.Abs(root-0.7390851332) > 1e-6 {
		t.Errorf("root: got %f", root)
	}
}
