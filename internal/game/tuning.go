package game

import "time"

// Physics tuning. The simulation runs one fixed tick per room; every value
// here is per-tick unless it is a duration.
const (
	TickInterval = 16 * time.Millisecond // ~60 Hz

	BallRadius   = 20.0
	CursorRadius = 30.0

	Friction        = 0.98 // multiplicative velocity decay per tick
	VelocityEpsilon = 0.01 // components below this are zeroed
	MaxSpeed        = 25.0 // hard cap on speed magnitude
	Restitution     = 0.8  // energy kept on a wall bounce

	// Ball-cursor impulse: magnitude proportional to penetration depth,
	// capped, then scaled against MaxSpeed.
	ImpulseScale = 0.5
	MaxImpulse   = MaxSpeed

	// Cursor-cursor repulsion: soft personal-space push, accumulated over
	// all pairs and applied once per participant.
	RepulsionThreshold = 60.0
	RepulsionStrength  = 5.0

	GoalWidth  = 20.0
	GoalHeight = 200.0

	GoalPauseDelay = 2 * time.Second
)

// MaxParticipants bounds the roster per room. The pairwise collision loops
// are O(n^2) in this constant, which is fine at this size.
const MaxParticipants = 10
