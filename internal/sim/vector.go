package sim

import "math"

// Vec2 is a free 2D vector. Value semantics throughout; every operation
// returns a new vector.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Point is a world-space position in millimeters. It is a distinct type
// from Vec2 so positions and displacements cannot be mixed up: only
// Point±Vec2 and Point−Point are defined.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// VecFromPolar builds a vector from a magnitude and an angle in radians.
func VecFromPolar(mag, angle float64) Vec2 {
	return Vec2{X: mag * math.Cos(angle), Y: mag * math.Sin(angle)}
}

func (v Vec2) Plus(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Minus(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vec2) Times(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

func (v Vec2) Invert() Vec2 {
	return Vec2{X: -v.X, Y: -v.Y}
}

func (v Vec2) Dot(o Vec2) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Cross returns the z magnitude of the 3D cross product of two plane
// vectors.
func (v Vec2) Cross(o Vec2) float64 {
	return v.X*o.Y - v.Y*o.X
}

func (v Vec2) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

func (v Vec2) MagnitudeSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

func (v Vec2) Normalize() Vec2 {
	m := v.Magnitude()
	if m == 0 {
		return Vec2{}
	}
	return v.Times(1.0 / m)
}

func (v Vec2) LeftNormal() Vec2 {
	return Vec2{X: -v.Y, Y: v.X}
}

func (v Vec2) RightNormal() Vec2 {
	return Vec2{X: v.Y, Y: -v.X}
}

func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

func (p Point) Add(v Vec2) Point {
	return Point{X: p.X + v.X, Y: p.Y + v.Y}
}

// Sub returns the vector from o to p.
func (p Point) Sub(o Point) Vec2 {
	return Vec2{X: p.X - o.X, Y: p.Y - o.Y}
}

func (p Point) DistTo(o Point) float64 {
	return p.Sub(o).Magnitude()
}
