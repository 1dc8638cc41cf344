// Package sim implements the fixed-tick physics systems: input ingest,
// acceleration, friction, soft speed cap, integration, and boundary
// reflection. The pure vector math is kept free of *world.World so it can
// be tested directly against literal formulas.
package sim

import "math"

// Tick is the fixed simulation step: Δt = 0.05s, 20 Hz.
const Tick = 0.05

// VMin is the per-component speed below which friction snaps a velocity
// component to zero, and the DesiredVelocity magnitude at or below which
// the entity is not considered "moving".
const VMin = 0.5

// SpeedCapFactor (ε) permits velocity up to SpeedCapFactor·max_speed under
// the Manhattan-proxy soft cap. This is a deliberate game-feel choice, not
// a bug — see DESIGN.md Open Question 1.
const SpeedCapFactor = 1.4

// Vec2 is a 2D vector of the form every physics component in this package
// shares (Position, Velocity, DesiredVelocity all reduce to this shape).
type Vec2 struct {
	X, Y float64
}

// Bounds is the rectangular world extent entities are confined to.
type Bounds struct {
	X, Y float64
}

// NormalizeDirection normalizes (dx, dy). ok is false for a zero-magnitude
// (or otherwise degenerate) vector, in which case the caller must treat the
// command as Stop: a malformed or zero-length Move is treated as Stop.
func NormalizeDirection(dx, dy float64) (nx, ny float64, ok bool) {
	if math.IsNaN(dx) || math.IsNaN(dy) || math.IsInf(dx, 0) || math.IsInf(dy, 0) {
		return 0, 0, false
	}
	mag := math.Hypot(dx, dy)
	if mag <= 0 {
		return 0, 0, false
	}
	return dx / mag, dy / mag, true
}

// UpdateVelocity applies the acceleration/friction branch: when the
// desired velocity's magnitude exceeds VMin the entity accelerates toward
// it, otherwise it decelerates under friction, snapping to zero once below
// VMin.
func UpdateVelocity(vel, desired Vec2, profile CharacterProfile, dt float64) Vec2 {
	if math.Hypot(desired.X, desired.Y) > VMin {
		factor := clamp(profile.Acceleration*dt, 0, 1)
		vel.X += (desired.X - vel.X) * factor
		vel.Y += (desired.Y - vel.Y) * factor
		return vel
	}

	decay := math.Max(0, 1-profile.Friction*dt)
	vel.X *= decay
	vel.Y *= decay
	if math.Abs(vel.X) < VMin {
		vel.X = 0
	}
	if math.Abs(vel.Y) < VMin {
		vel.Y = 0
	}
	return vel
}

// ApplySpeedCap implements the soft Manhattan-proxy speed cap: if
// |vx|+|vy| exceeds max_speed·SpeedCapFactor, velocity is scaled down to
// match that bound exactly. This is intentionally more permissive than a
// Euclidean clamp and must be reproduced exactly (see DESIGN.md).
func ApplySpeedCap(vel Vec2, maxSpeed float64) Vec2 {
	s := math.Abs(vel.X) + math.Abs(vel.Y)
	cap := maxSpeed * SpeedCapFactor
	if s > cap && s > 0 {
		scale := cap / s
		vel.X *= scale
		vel.Y *= scale
	}
	return vel
}

// Integrate advances position by velocity·dt.
func Integrate(pos, vel Vec2, dt float64) Vec2 {
	pos.X += vel.X * dt
	pos.Y += vel.Y * dt
	return pos
}

// Reflect implements elastic boundary reflection on each axis independently:
// a position outside [0, bounds] is clamped to the boundary and the
// corresponding velocity component is negated.
func Reflect(pos, vel Vec2, bounds Bounds) (Vec2, Vec2) {
	if pos.X < 0 {
		pos.X = 0
		vel.X = -vel.X
	} else if pos.X > bounds.X {
		pos.X = bounds.X
		vel.X = -vel.X
	}

	if pos.Y < 0 {
		pos.Y = 0
		vel.Y = -vel.Y
	} else if pos.Y > bounds.Y {
		pos.Y = bounds.Y
		vel.Y = -vel.Y
	}

	return pos, vel
}

// CharacterProfile mirrors world.CharacterProfile's fields without importing
// the world package, keeping this file's physics free of store concerns so
// it is trivially unit-testable.
type CharacterProfile struct {
	MaxSpeed     float64
	Acceleration float64
	Friction     float64
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
