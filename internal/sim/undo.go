package sim

// Undo capture. Each resolved collision pushes one UndoGroup: a snapshot
// of every moveable body taken just before the backup move, plus the
// evolve-state fields needed to replay the exact phase transition.
// UndoEvolve pops one group, reverting exactly one collision event.

type undoRecord interface {
	apply()
}

type ballUndo struct {
	b *Ball
	c Point
	v Vec2
}

func (u *ballUndo) apply() {
	u.b.C = u.c
	u.b.V = u.v
}

type flipperUndo struct {
	f            *Flipper
	theta        float64
	omega        float64
	topStopTime  float64
	topStopOmega float64
}

func (u *flipperUndo) apply() {
	u.f.Omega = u.omega
	u.f.topStopTime = u.topStopTime
	u.f.topStopOmega = u.topStopOmega
	u.f.SetTheta(u.theta)
}

// UndoGroup reverts one collision event atomically.
type UndoGroup struct {
	records       []undoRecord
	phase         Phase
	budget        int
	dtReversalMax float64
	pending       pendingCollision
}
