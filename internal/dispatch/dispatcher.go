// Package dispatch implements the replication dispatcher: the per-tick
// decision between full sync and delta update for each session, the
// viewer-distance filter, periodic full-sync refresh, and entity removal
// notices.
package dispatch

import (
	"math"
	"time"

	"arenasrv/internal/log"
	"arenasrv/internal/protocol"
	"arenasrv/internal/replication"
	"arenasrv/internal/session"
	"arenasrv/internal/world"
)

// ViewDistance is the default Manhattan viewer-distance radius.
const ViewDistance = 300.0

// PeriodicFullSyncInterval forces a full sync at least this often
// regardless of delta activity.
const PeriodicFullSyncInterval = 3 * time.Second

// Dispatcher runs the replication pipeline once per tick.
type Dispatcher struct {
	registry     *replication.Registry
	snapshot     *replication.Snapshot
	viewDistance float64
}

// New returns a dispatcher bound to the given component registry.
func New(registry *replication.Registry) *Dispatcher {
	return &Dispatcher{
		registry:     registry,
		snapshot:     replication.NewSnapshot(),
		viewDistance: ViewDistance,
	}
}

func manhattan(a, b world.Position) float64 {
	return math.Abs(a.X-b.X) + math.Abs(a.Y-b.Y)
}

// Run executes the replication pass for every tracked session: removal
// notices for sessions terminated this tick, then full-sync or
// delta-update dispatch for every still-active session.
func (d *Dispatcher) Run(w *world.World, sessions *session.Manager, side *SideTable, now time.Time) {
	d.dispatchRemovals(w, sessions, side, now)

	side.Each(func(id world.SessionID, entry *SideEntry) {
		sess, ok := sessions.Get(id)
		if !ok || sess.Terminated() {
			return
		}

		due := entry.NeedsFullSync || now.Sub(entry.LastFullSyncAt) > PeriodicFullSyncInterval
		if due {
			d.dispatchFullSync(w, id, sess, entry, now)
		} else {
			d.dispatchDelta(w, id, sess, entry)
		}
	})
}

// dispatchRemovals emits an entity_removed notice to every other active
// session for each session terminated this tick, and purges its snapshot
// entries. The entity itself and its side entry are removed by the game's
// post-tick cleanup (game.cleanupTerminated), not here, so mid-tick state
// stays consistent.
func (d *Dispatcher) dispatchRemovals(w *world.World, sessions *session.Manager, side *SideTable, now time.Time) {
	side.Each(func(id world.SessionID, entry *SideEntry) {
		sess, ok := sessions.Get(id)
		if !ok || !sess.Terminated() || entry.RemovalSent {
			return
		}
		entry.RemovalSent = true

		msg := protocol.NewRemoved(entry.NetworkID)
		sessions.Each(func(otherID world.SessionID, other *session.Session) {
			if otherID == id || other.Terminated() {
				return
			}
			other.Send(msg)
		})
		d.snapshot.PurgeEntity(entry.NetworkID)
		log.Infof("dispatch: session %s removed (network_id=%d)", sess.CorrelationID, entry.NetworkID)
	})
}

// dispatchFullSync sends every visible entity's complete networked state
// to sess and commits it as the new last-sent baseline.
func (d *Dispatcher) dispatchFullSync(w *world.World, sessionID world.SessionID, sess *session.Session, entry *SideEntry, now time.Time) {
	viewerPos, _ := w.Positions.Get(entry.EntityID)

	var entries []protocol.EntityEntry
	w.Networked.Iter(func(id world.EntityID, netObj world.NetworkedObject) {
		if id != entry.EntityID {
			if pos, ok := w.Positions.Get(id); ok && manhattan(viewerPos, pos) > d.viewDistance {
				return
			}
		}

		c := make(map[string]interface{})
		for _, b := range d.registry.Bundles() {
			fields, ok := b.Project(w, id)
			if !ok {
				continue
			}
			c[b.Tag] = append([]float64(nil), fields.Values...)
			d.snapshot.Commit(sessionID, b, netObj.NetworkID, fields.Names, fields.Values)
		}
		entries = append(entries, protocol.EntityEntry{I: netObj.NetworkID, C: c})
	})

	sess.Send(protocol.NewFullSync(entries))
	entry.NeedsFullSync = false
	entry.LastFullSyncAt = now
}

// dispatchDelta sends only entities with at least one significant
// networked-component change since the last value sent to sess. If
// nothing changed, no message is sent this tick.
func (d *Dispatcher) dispatchDelta(w *world.World, sessionID world.SessionID, sess *session.Session, entry *SideEntry) {
	viewerPos, _ := w.Positions.Get(entry.EntityID)

	changedEntities := make(map[world.EntityID]struct{})
	for _, b := range d.registry.Bundles() {
		for _, id := range b.ChangedIDs(w) {
			changedEntities[id] = struct{}{}
		}
	}

	var entries []protocol.EntityEntry
	for id := range changedEntities {
		netObj, ok := w.Networked.Get(id)
		if !ok {
			continue
		}
		if id != entry.EntityID {
			if pos, ok := w.Positions.Get(id); ok && manhattan(viewerPos, pos) > d.viewDistance {
				continue
			}
		}

		c := make(map[string]interface{})
		for _, b := range d.registry.Bundles() {
			fields, ok := b.Project(w, id)
			if !ok {
				continue
			}
			values, significant := d.snapshot.Diff(sessionID, b, netObj.NetworkID, fields)
			if !significant {
				continue
			}
			c[b.Tag] = values
			d.snapshot.Commit(sessionID, b, netObj.NetworkID, fields.Names, values)
		}
		if len(c) > 0 {
			entries = append(entries, protocol.EntityEntry{I: netObj.NetworkID, C: c})
		}
	}

	if len(entries) == 0 {
		return
	}
	sess.Send(protocol.NewDelta(entries))
}

// PurgeEntity removes every recorded last-sent value for id across all
// sessions, for use during post-tick cleanup.
func (d *Dispatcher) PurgeEntity(id world.NetworkID) {
	d.snapshot.PurgeEntity(id)
}

// PurgeSession discards all snapshot state for a session on disconnect.
func (d *Dispatcher) PurgeSession(id world.SessionID) {
	d.snapshot.PurgeSession(id)
}
