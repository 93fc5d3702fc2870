package sim

// Stationary playfield geometry: posts, wall segments and polygons.
// Created once at table-setup time and never mutated during Evolve.

// Round is a stationary circular post.
type Round struct {
	C Point
	R float64
	E float64
}

func NewRound(c Point, r, e float64) *Round {
	return &Round{C: c, R: r, E: e}
}

// contactTest runs the shared overlap/speed reversal-time computation
// against a stationary contact circle at c with radius r. The reversal
// time is overlap divided by the ball's closing speed along the contact
// direction: how far back, at constant velocity, the bodies were just
// touching.
func contactTest(c Point, r float64, b *Ball, dtMax float64) float64 {
	overlap := b.R + r - b.C.DistTo(c)
	if overlap <= 0 {
		return NoCollision
	}
	n := c.Sub(b.C).Normalize()
	speed := b.V.Dot(n)
	if speed <= MinClosingSpeed {
		return NoCollision
	}
	t := overlap / speed
	if t <= MinReversalTime {
		return NoCollision
	}
	if t > dtMax {
		t = dtMax
	}
	return t
}

func (rd *Round) TestCollision(b *Ball, ctx *Ctx, dtMax float64) float64 {
	return contactTest(rd.C, rd.R, b, dtMax)
}

func (rd *Round) ExecuteCollision(b *Ball, ctx *Ctx, dtRev float64) {
	n := b.C.Sub(rd.C).Normalize()
	b.reflect(n, rd.E)
}

func (rd *Round) CollisionMove(dt float64, ctx *Ctx) {}

func (rd *Round) Draw(dc DrawingCtx) {
	dc.DrawCircle(rd.C, rd.R)
}

// LineSeg is a stationary wall segment. Collisions against the interior
// use the perpendicular foot as the contact point; past either end the
// endpoint itself is the contact, which gives walls naturally hard
// corners.
type LineSeg struct {
	P1, P2 Point
	E      float64

	dir    Vec2 // unit P1->P2
	norm   Vec2 // left normal of dir
	length float64
}

func NewLineSeg(p1, p2 Point, e float64) *LineSeg {
	ls := &LineSeg{P1: p1, P2: p2, E: e}
	ls.recompute()
	return ls
}

func (ls *LineSeg) recompute() {
	d := ls.P2.Sub(ls.P1)
	ls.length = d.Magnitude()
	if ls.length > 0 {
		ls.dir = d.Times(1 / ls.length)
	} else {
		ls.dir = Vec2{}
	}
	ls.norm = ls.dir.LeftNormal()
}

// contactPoint returns the point on the segment closest to c: the
// perpendicular foot inside the segment, an endpoint outside it.
func (ls *LineSeg) contactPoint(c Point) Point {
	if ls.length == 0 {
		return ls.P1
	}
	frac := c.Sub(ls.P1).Dot(ls.dir) / ls.length
	if frac <= 0 {
		return ls.P1
	}
	if frac >= 1 {
		return ls.P2
	}
	return ls.P1.Add(ls.dir.Times(frac * ls.length))
}

func (ls *LineSeg) TestCollision(b *Ball, ctx *Ctx, dtMax float64) float64 {
	return contactTest(ls.contactPoint(b.C), 0, b, dtMax)
}

func (ls *LineSeg) ExecuteCollision(b *Ball, ctx *Ctx, dtRev float64) {
	n := b.C.Sub(ls.contactPoint(b.C)).Normalize()
	b.reflect(n, ls.E)
}

func (ls *LineSeg) CollisionMove(dt float64, ctx *Ctx) {}

func (ls *LineSeg) Draw(dc DrawingCtx) {
	dc.DrawLine(ls.P1, ls.P2)
}

// Polygon is a chain of wall segments. With corner radius zero it is an
// open chain: segments between consecutive vertices, no closing segment.
// With a positive radius it is a closed rounded shape: every vertex
// becomes a corner disc and every edge, including the closing one, is
// shifted outward by the radius so the straight runs are tangent to the
// discs.
type Polygon struct {
	CollidableList
	Verts []Point
	R, E  float64

	rounds []*Round
	segs   []*LineSeg
}

func NewPolygon(r, e float64, verts []Point) *Polygon {
	pg := &Polygon{Verts: verts, R: r, E: e}
	n := len(verts)
	if n < 2 {
		return pg
	}

	if r == 0 {
		for i := 0; i+1 < n; i++ {
			seg := NewLineSeg(verts[i], verts[i+1], e)
			pg.segs = append(pg.segs, seg)
			pg.Add(seg)
		}
		return pg
	}

	ccw := signedArea(verts) > 0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		dir := verts[j].Sub(verts[i]).Normalize()
		out := dir.RightNormal()
		if !ccw {
			out = dir.LeftNormal()
		}
		off := out.Times(r)
		seg := NewLineSeg(verts[i].Add(off), verts[j].Add(off), e)
		rnd := NewRound(verts[i], r, e)
		pg.segs = append(pg.segs, seg)
		pg.rounds = append(pg.rounds, rnd)
		pg.Add(seg, rnd)
	}
	return pg
}

func (pg *Polygon) Draw(dc DrawingCtx) {
	for _, seg := range pg.segs {
		seg.Draw(dc)
	}
	for _, rnd := range pg.rounds {
		rnd.Draw(dc)
	}
}

// signedArea is the shoelace sum; positive for counterclockwise winding
// in y-up coordinates.
func signedArea(verts []Point) float64 {
	area := 0.0
	n := len(verts)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += verts[i].X*verts[j].Y - verts[j].X*verts[i].Y
	}
	return area / 2
}
