package game

import (
	"github.com/pinsim/backend/internal/sim"
)

// Playfield dimensions, millimeters, +Y down the slope
const (
	fieldWidth  = 450.0
	fieldHeight = 900.0

	laneWallX   = 420.0 // plunger lane inner wall
	laneWallTop = 180.0 // lane opens into the field above this
	drainY      = 885.0 // a ball past this line in the main field is lost

	wallE      = 0.72 // plain wall rubber
	bumperE    = 1.25 // powered pop bumper kick
	slingshotE = 1.15 // powered slingshot band
	flipperE   = 0.5
)

// TableLayout holds the geometry recipe plus the regions the session
// logic needs (drain, plunger lane).
type TableLayout struct {
	PlungerRest        sim.Point
	DefaultLaunchSpeed float64
	MaxLaunchSpeed     float64

	walls    [][4]float64
	bumpers  [][3]float64 // x, y, r
	slings   [][]sim.Point
	flippers []flipperSpec
}

type flipperSpec struct {
	left             bool
	x, y             float64
	length, r1, r2   float64
	restDeg, spanDeg float64
}

// NewStandardLayout is the single built-in table: outer box, plunger
// lane, three pop bumpers, two slingshots, inlane guides and two
// flippers over a center drain.
func NewStandardLayout() *TableLayout {
	tl := &TableLayout{
		PlungerRest:        sim.Point{X: 435, Y: 870},
		DefaultLaunchSpeed: 2600,
		MaxLaunchSpeed:     3400,
	}

	tl.walls = [][4]float64{
		// outer box, top corners chamfered so the launched ball arcs left
		{0, 80, 80, 0},
		{80, 0, 370, 0},
		{370, 0, 450, 80},
		{0, 80, 0, 700},
		{450, 80, 450, 900},
		// plunger lane
		{laneWallX, laneWallTop, laneWallX, 900},
		{laneWallX, 900, 450, 900},
		// outlane and inlane guides funneling toward the flippers
		{0, 700, 128, 816},
		{laneWallX, 700, 322, 816},
	}

	tl.bumpers = [][3]float64{
		{150, 250, 25},
		{300, 250, 25},
		{225, 360, 25},
	}

	tl.slings = [][]sim.Point{
		{{X: 75, Y: 640}, {X: 125, Y: 760}, {X: 75, Y: 760}},
		{{X: 375, Y: 640}, {X: 375, Y: 760}, {X: 325, Y: 760}},
	}

	tl.flippers = []flipperSpec{
		{left: true, x: 140, y: 830, length: 65, r1: 11, r2: 7, restDeg: 30, spanDeg: -50},
		{left: false, x: 310, y: 830, length: 65, r1: 11, r2: 7, restDeg: 150, spanDeg: 50},
	}

	return tl
}

// Build instantiates the layout into a fresh table with one ball resting
// in the plunger lane.
func (tl *TableLayout) Build() *sim.Table {
	t := sim.NewTable()

	for _, w := range tl.walls {
		t.AddWall(wallE, w[0], w[1], w[2], w[3])
	}
	for _, b := range tl.bumpers {
		t.AddRound(b[0], b[1], b[2], bumperE)
	}
	for _, s := range tl.slings {
		t.AddPolygon(6, slingshotE, s)
	}
	for _, f := range tl.flippers {
		t.AddFlipper(f.left, f.x, f.y, f.length, f.r1, f.r2, f.restDeg, f.spanDeg, flipperE)
	}

	t.AddBall(tl.PlungerRest.X, tl.PlungerRest.Y, 0, 0)
	return t
}

// InPlungerLane reports whether a point sits in the launch lane
func (tl *TableLayout) InPlungerLane(p sim.Point) bool {
	return p.X > laneWallX && p.Y > laneWallTop
}

// InDrain reports whether a ball in the main field has fallen out
func (tl *TableLayout) InDrain(p sim.Point) bool {
	return p.Y > drainY && p.X <= laneWallX
}

// Describe returns the stationary geometry for client-side rendering
func (tl *TableLayout) Describe() map[string]interface{} {
	walls := make([]map[string]float64, 0, len(tl.walls))
	for _, w := range tl.walls {
		walls = append(walls, map[string]float64{"x1": w[0], "y1": w[1], "x2": w[2], "y2": w[3]})
	}
	bumpers := make([]map[string]float64, 0, len(tl.bumpers))
	for _, b := range tl.bumpers {
		bumpers = append(bumpers, map[string]float64{"x": b[0], "y": b[1], "r": b[2]})
	}
	slings := make([][]sim.Point, 0, len(tl.slings))
	slings = append(slings, tl.slings...)

	return map[string]interface{}{
		"width":       fieldWidth,
		"height":      fieldHeight,
		"ball_radius": sim.BallRadius,
		"walls":       walls,
		"bumpers":     bumpers,
		"slingshots":  slings,
	}
}
