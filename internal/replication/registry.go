// Package replication implements the per-session state-replication
// pipeline: an explicit registry of networked-component bundles, the
// per-session last-sent snapshot, and the diff/commit operations the
// dispatcher drives every tick.
package replication

import "arenasrv/internal/world"

// Fields is a fixed-order set of named scalar fields projected from a
// source component, e.g. {"x", "y"} for NetworkedPosition.
type Fields struct {
	Names  []string
	Values []float64
}

// Bundle is an explicit table entry mapping a networked-component type tag
// to its {project(source)→networked, diff, commit, serialize} functions.
// diff/commit are supplied uniformly by the Snapshot type (snapshot.go) and
// serialization by the dispatcher, which writes the projected values under
// Tag, so a Bundle need only describe the projection and change source.
type Bundle struct {
	// Tag is the wire shortcode (e.g. "p", "v").
	Tag string
	// Thresholds holds one significance threshold per field, in Names order.
	Thresholds []float64
	// Project reads the source component for id and returns its networked
	// field values, or ok=false if the source component is absent.
	Project func(w *world.World, id world.EntityID) (Fields, bool)
	// ChangedIDs returns every entity whose source component was written
	// since the last per-tick reset.
	ChangedIDs func(w *world.World) []world.EntityID
}

// DefaultThreshold is the per-field significance threshold used unless a
// bundle overrides it: 0.01 by default.
const DefaultThreshold = 0.01

// Registry is the ordered set of registered networked-component bundles.
// Adding a new networked component is one call to Register — the
// dispatcher never branches on component type by name.
type Registry struct {
	bundles []Bundle
}

// NewRegistry returns a registry pre-populated with the initial networked
// component catalogue: NetworkedPosition and NetworkedVelocity.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Register(PositionBundle())
	r.Register(VelocityBundle())
	return r
}

// Register adds a bundle to the registry.
func (r *Registry) Register(b Bundle) {
	r.bundles = append(r.bundles, b)
}

// Bundles returns every registered bundle, in registration order.
func (r *Registry) Bundles() []Bundle {
	return r.bundles
}

func uniformThresholds(n int, t float64) []float64 {
	ts := make([]float64, n)
	for i := range ts {
		ts[i] = t
	}
	return ts
}

// PositionBundle projects world.Position into the wire "p" component,
// NetworkedPosition{x,y}.
func PositionBundle() Bundle {
	return Bundle{
		Tag:        "p",
		Thresholds: uniformThresholds(2, DefaultThreshold),
		Project: func(w *world.World, id world.EntityID) (Fields, bool) {
			pos, ok := w.Positions.Get(id)
			if !ok {
				return Fields{}, false
			}
			return Fields{Names: []string{"x", "y"}, Values: []float64{pos.X, pos.Y}}, true
		},
		ChangedIDs: func(w *world.World) []world.EntityID {
			var ids []world.EntityID
			w.Positions.IterChanged(func(id world.EntityID, _ world.Position) {
				ids = append(ids, id)
			})
			return ids
		},
	}
}

// VelocityBundle projects world.Velocity into the wire "v" component,
// NetworkedVelocity{x,y}.
func VelocityBundle() Bundle {
	return Bundle{
		Tag:        "v",
		Thresholds: uniformThresholds(2, DefaultThreshold),
		Project: func(w *world.World, id world.EntityID) (Fields, bool) {
			vel, ok := w.Velocities.Get(id)
			if !ok {
				return Fields{}, false
			}
			return Fields{Names: []string{"x", "y"}, Values: []float64{vel.X, vel.Y}}, true
		},
		ChangedIDs: func(w *world.World) []world.EntityID {
			var ids []world.EntityID
			w.Velocities.IterChanged(func(id world.EntityID, _ world.Velocity) {
				ids = append(ids, id)
			})
			return ids
		},
	}
}
