package sim

// DrawingCtx is the only rendering hook the simulation calls into. The
// embedding supplies the coordinate mapping and the actual drawing; the
// model only hands over world-space primitives.
type DrawingCtx interface {
	DrawCircle(c Point, r float64)
	DrawLine(p1, p2 Point)
}

// Element is anything drawable in table order.
type Element interface {
	Draw(dc DrawingCtx)
}

// BallState is a renderable snapshot of one ball.
type BallState struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
	R  float64 `json:"r"`
}

// FlipperState is a renderable snapshot of one flipper.
type FlipperState struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Length    float64 `json:"length"`
	R1        float64 `json:"r1"`
	R2        float64 `json:"r2"`
	Theta     float64 `json:"theta"`
	Omega     float64 `json:"omega"`
	Energized bool    `json:"energized"`
	Left      bool    `json:"left"`
}

// Draw renders every element in draw order through the supplied context.
func (t *Table) Draw(dc DrawingCtx) {
	for _, el := range t.elements {
		el.Draw(dc)
	}
}

// DrawBallStates renders a snapshot previously taken under the embedding's
// lock, so the lock need not be held while drawing.
func DrawBallStates(dc DrawingCtx, states []BallState) {
	for _, s := range states {
		dc.DrawCircle(Point{X: s.X, Y: s.Y}, s.R)
	}
}

// DrawFlipperStates renders flipper snapshots; geometry is rebuilt from
// the captured angle the same way the live flipper does it.
func DrawFlipperStates(dc DrawingCtx, states []FlipperState) {
	for _, s := range states {
		f := Flipper{Cr: Point{X: s.X, Y: s.Y}, Length: s.Length, R1: s.R1, R2: s.R2}
		tip := f.Cr.Add(VecFromPolar(s.Length, s.Theta))
		dc.DrawCircle(f.Cr, s.R1)
		dc.DrawCircle(tip, s.R2)
		p1, p2 := f.edgeEndpointsAt(true, s.Theta)
		dc.DrawLine(p1, p2)
		p1, p2 = f.edgeEndpointsAt(false, s.Theta)
		dc.DrawLine(p1, p2)
	}
}
