package sim

import (
	"math"
	"testing"
)

func TestVectorAlgebra(t *testing.T) {
	v := Vec2{X: 3, Y: 4}
	if v.Magnitude() != 5 {
		t.Errorf("magnitude: got %f want 5", v.Magnitude())
	}
	if v.Dot(Vec2{X: 1, Y: 0}) != 3 {
		t.Errorf("dot: got %f", v.Dot(Vec2{X: 1, Y: 0}))
	}
	if v.Cross(Vec2{X: 1, Y: 0}) != -4 {
		t.Errorf("cross: got %f", v.Cross(Vec2{X: 1, Y: 0}))
	}
	n := v.Normalize()
	if math.Abs(n.Magnitude()-1) > 1e-12 {
		t.Errorf("normalize: |n|=%f", n.Magnitude())
	}
	if l := v.LeftNormal(); l.X != -4 || l.Y != 3 {
		t.Errorf("left normal: got %v", l)
	}
	if (Vec2{}).Normalize() != (Vec2{}) {
		t.Error("normalize of zero vector should be zero")
	}
}

func TestPointVectorDistinction(t *testing.T) {
	p := Point{X: 10, Y: 20}
	q := p.Add(Vec2{X: 5, Y: -5})
	if q.X != 15 || q.Y != 15 {
		t.Errorf("point+vec: got %v", q)
	}
	d := q.Sub(p)
	if d.X != 5 || d.Y != -5 {
		t.Errorf("point-point: got %v", d)
	}
	if p.DistTo(q) != d.Magnitude() {
		t.Error("DistTo disagrees with Sub().Magnitude()")
	}
}

func TestVecFromPolar(t *testing.T) {
	v := VecFromPolar(2, math.Pi/2)
	if math.Abs(v.X) > 1e-12 || math.Abs(v.Y-2) > 1e-12 {
		t.Errorf("polar: got %v", v)
	}
}
