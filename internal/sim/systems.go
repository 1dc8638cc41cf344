package sim

import "arenasrv/internal/world"

// ApplyMove sets DesiredVelocity from a Move command's direction. A
// zero-length or malformed direction is treated as Stop.
func ApplyMove(w *world.World, id world.EntityID, dx, dy float64) {
	nx, ny, ok := NormalizeDirection(dx, dy)
	if !ok {
		ApplyStop(w, id)
		return
	}
	profile, ok := w.Profiles.Get(id)
	if !ok {
		return
	}
	w.DesiredVelocities.Set(id, world.DesiredVelocity{
		X: nx * profile.MaxSpeed,
		Y: ny * profile.MaxSpeed,
	})
}

// ApplyStop sets DesiredVelocity to zero.
func ApplyStop(w *world.World, id world.EntityID) {
	if _, ok := w.Profiles.Get(id); !ok {
		return
	}
	w.DesiredVelocities.Set(id, world.DesiredVelocity{})
}

// Step runs the per-tick physics pass over every physics-bearing entity:
// acceleration/friction, the soft speed cap, integration, and boundary
// reflection. Each entity's reads and writes are confined to its own
// Position/Velocity, so a single per-entity pass is equivalent to running
// each phase as a separate full-world scan, just without the intermediate
// allocations.
func Step(w *world.World, dt float64, bounds Bounds) {
	w.Profiles.Iter(func(id world.EntityID, profile world.CharacterProfile) {
		vel, ok := w.Velocities.Get(id)
		if !ok {
			return
		}
		pos, ok := w.Positions.Get(id)
		if !ok {
			return
		}
		desired, _ := w.DesiredVelocities.Get(id)

		v := UpdateVelocity(Vec2{X: vel.X, Y: vel.Y}, Vec2{X: desired.X, Y: desired.Y}, CharacterProfile(profile), dt)
		v = ApplySpeedCap(v, profile.MaxSpeed)

		p := Integrate(Vec2{X: pos.X, Y: pos.Y}, v, dt)
		p, v = Reflect(p, v, bounds)

		w.Positions.Set(id, world.Position{X: p.X, Y: p.Y})
		w.Velocities.Set(id, world.Velocity{X: v.X, Y: v.Y})
	})
}
