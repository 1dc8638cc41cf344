package dispatch

import (
	"time"

	"arenasrv/internal/world"
)

// SideEntry is the simulation-owned bookkeeping for one session: which
// entity it controls, and its replication cadence flags. It is
// deliberately kept separate from session.Session, which is shared with
// the network goroutines, so the simulation goroutine can mutate it
// without synchronization.
type SideEntry struct {
	EntityID       world.EntityID
	NetworkID      world.NetworkID
	NeedsFullSync  bool
	LastFullSyncAt time.Time
	RemovalSent    bool
}

// SideTable maps session ids to their SideEntry. It is read and written
// exclusively by the simulation goroutine.
type SideTable struct {
	entries map[world.SessionID]*SideEntry
}

// NewSideTable returns an empty side table.
func NewSideTable() *SideTable {
	return &SideTable{entries: make(map[world.SessionID]*SideEntry)}
}

// Set installs (or overwrites) the side entry for a session, e.g. on join.
func (t *SideTable) Set(id world.SessionID, entry *SideEntry) {
	t.entries[id] = entry
}

// Get returns the side entry for a session, if any.
func (t *SideTable) Get(id world.SessionID) (*SideEntry, bool) {
	e, ok := t.entries[id]
	return e, ok
}

// Delete removes a session's side entry, during post-tick cleanup.
func (t *SideTable) Delete(id world.SessionID) {
	delete(t.entries, id)
}

// Each calls fn for every tracked session.
func (t *SideTable) Each(fn func(world.SessionID, *SideEntry)) {
	for id, e := range t.entries {
		fn(id, e)
	}
}
