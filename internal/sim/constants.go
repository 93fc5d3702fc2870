package sim

import "math"

// Physical constants. Units are millimeters, grams and seconds throughout.
const (
	// BallRadius is a standard 1-1/16" pinball.
	BallRadius = 13.49
	// BallMass is the standard ball mass in grams.
	BallMass = 80.6

	// Gravity in mm/s^2.
	Gravity = 9806.65
	// PlayfieldSlopeDeg is the cabinet incline; balls accelerate along the
	// playfield at Gravity*sin(slope).
	PlayfieldSlopeDeg = 6.0

	// RollingDamping is the per-step multiplicative velocity loss that
	// stands in for rolling and air friction.
	RollingDamping = 0.9998

	// NoCollision is the sentinel reversal time meaning "not colliding".
	NoCollision = -1.0
	// MinReversalTime is the smallest reversal time treated as a real
	// collision. Anything under it is floating-point noise from bodies
	// already in contact and separating.
	MinReversalTime = 1e-6
	// MinClosingSpeed guards the overlap/speed division.
	MinClosingSpeed = 1e-5

	// CollisionBudget caps collisions resolved in one Evolve step.
	CollisionBudget = 100

	// RootIterations and RootTolerance control the bisection refinement of
	// rotating-edge collision times.
	RootIterations = 10
	RootTolerance  = 1e-5
)

// Flipper defaults, tuned against a real machine's feel rather than
// measured.
const (
	DefaultAlphaLift   = 1100.0 // coil lift, rad/s^2
	DefaultAlphaHold   = 160.0  // coil hold past the EOS switch
	DefaultAlphaSpring = 320.0  // return spring
	DefaultInertia     = 1.0e6  // flipper assembly moment, g*mm^2
	DefaultEOS         = 0.96   // end-of-stroke switch point, fraction of travel

	// Top-stop overshoot window: a flipper that slams its top stop keeps a
	// decaying remembered omega for a short time, and collisions in that
	// window use a softened elasticity.
	TopStopWindow      = 0.04
	TopStopTau         = 0.012
	TopStopArmFraction = 0.70
	TopStopElasticity  = 0.4

	// Bottom-stop bounce: the return stroke rebounds off the rubber rest.
	BottomBounce    = 0.3
	BottomRestOmega = 0.5

	// Tangential friction ramp for flipper impacts, mm/s.
	DefaultFrictionVMin  = 50.0
	DefaultFrictionVFull = 300.0
	DefaultFrictionCoef  = 0.15

	// DefaultNudgeHalfLife is the decay half-life of the integrated nudge
	// velocity, seconds.
	DefaultNudgeHalfLife = 0.25
)

// slopeAccel is the playfield-slope gravity component.
var slopeAccel = Gravity * math.Sin(PlayfieldSlopeDeg*math.Pi/180)
