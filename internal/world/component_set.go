package world

// ComponentSet is a typed per-component-type store keyed by EntityID, with
// per-tick change tracking. It is the generic table the rest of the package
// composes World's typed component storage from, modeled as an explicit
// registry rather than a macro-driven per-component scheme.
type ComponentSet[T any] struct {
	values  map[EntityID]T
	changed map[EntityID]struct{}
}

// NewComponentSet returns an empty typed component store.
func NewComponentSet[T any]() *ComponentSet[T] {
	return &ComponentSet[T]{
		values:  make(map[EntityID]T),
		changed: make(map[EntityID]struct{}),
	}
}

// Set attaches or overwrites the component value for id, marking it changed.
func (cs *ComponentSet[T]) Set(id EntityID, value T) {
	cs.values[id] = value
	cs.changed[id] = struct{}{}
}

// Get returns the component value for id, or the zero value and false if
// absent. A lookup on a non-existent entity returns absent, not a panic.
func (cs *ComponentSet[T]) Get(id EntityID) (T, bool) {
	v, ok := cs.values[id]
	return v, ok
}

// Remove detaches the component for id. A no-op if not present.
func (cs *ComponentSet[T]) Remove(id EntityID) {
	delete(cs.values, id)
	delete(cs.changed, id)
}

// Iter calls fn for every entity currently holding this component.
func (cs *ComponentSet[T]) Iter(fn func(EntityID, T)) {
	for id, v := range cs.values {
		fn(id, v)
	}
}

// IterChanged calls fn for every entity whose component of this type was
// written since the last ResetChanged call.
func (cs *ComponentSet[T]) IterChanged(fn func(EntityID, T)) {
	for id := range cs.changed {
		fn(id, cs.values[id])
	}
}

// ResetChanged clears the change-tracking set. Called once per tick after
// the replication dispatcher has consumed it.
func (cs *ComponentSet[T]) ResetChanged() {
	cs.changed = make(map[EntityID]struct{})
}

// Len returns the number of entities currently holding this component.
func (cs *ComponentSet[T]) Len() int {
	return len(cs.values)
}
