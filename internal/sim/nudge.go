package sim

import "math"

// Two parallel nudge input channels, combined additively each step. The
// device measures the cabinet's own motion; the model treats the cabinet
// as the fixed frame, so the applied delta is the negative of the raw
// reading. The sign flip happens at the point of application in the
// Accelerate phase.

// NudgeAccelState integrates raw accelerometer samples (in g) into a
// decaying velocity and reports the per-step delta.
type NudgeAccelState struct {
	accel    Vec2 // latest sample, g
	v        Vec2 // integrated decaying velocity, mm/s
	applied  Vec2 // velocity already handed to the model
	halfLife float64
}

func (n *NudgeAccelState) Set(ax, ay float64) {
	n.accel = Vec2{X: ax, Y: ay}
}

func (n *NudgeAccelState) SetHalfLife(seconds float64) {
	n.halfLife = seconds
}

func (n *NudgeAccelState) step(dt float64) Vec2 {
	hl := n.halfLife
	if hl <= 0 {
		hl = DefaultNudgeHalfLife
	}
	decay := math.Pow(0.5, dt/hl)
	n.v = n.v.Times(decay).Plus(n.accel.Times(Gravity * dt))
	delta := n.v.Minus(n.applied)
	n.applied = n.v
	return delta
}

// NudgeVelocityState accepts an absolute velocity from hardware that
// integrates on-device, and reports the delta from what was last applied.
// No decay here: the device owns the decay behavior in this mode.
type NudgeVelocityState struct {
	target  Vec2
	applied Vec2
}

func (n *NudgeVelocityState) Set(vx, vy float64) {
	n.target = Vec2{X: vx, Y: vy}
}

func (n *NudgeVelocityState) step() Vec2 {
	delta := n.target.Minus(n.applied)
	n.applied = n.target
	return delta
}
