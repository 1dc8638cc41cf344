package session

import (
	"time"

	"arenasrv/internal/log"
	"arenasrv/internal/world"
)

// JoinQueueCapacity bounds the number of connections awaiting their first
// simulation tick. The network listener can accept connections faster
// than the simulation processes joins; this keeps memory bounded the same
// way the per-session command queue does.
const JoinQueueCapacity = 128

// Manager tracks live sessions. The active set is written only by the
// simulation goroutine (during ingest and post-tick cleanup), so it needs
// no lock; the join queue is a channel, safe for the network listener's
// accept goroutine to push into concurrently.
type Manager struct {
	joinQueue chan *Session
	active    map[world.SessionID]*Session
}

// NewManager returns an empty session manager.
func NewManager() *Manager {
	return &Manager{
		joinQueue: make(chan *Session, JoinQueueCapacity),
		active:    make(map[world.SessionID]*Session),
	}
}

// RequestJoin enqueues a newly-handshaken session for the simulation to
// spawn on its next tick. It returns false if the join queue is saturated,
// in which case the caller should refuse the connection.
func (m *Manager) RequestJoin(s *Session) bool {
	select {
	case m.joinQueue <- s:
		return true
	default:
		log.Warnf("session: join queue saturated, refusing connection %s", s.CorrelationID)
		return false
	}
}

// DrainJoins removes and returns every session awaiting its first tick.
// Called by the simulation during input ingest.
func (m *Manager) DrainJoins() []*Session {
	var out []*Session
	for {
		select {
		case s := <-m.joinQueue:
			out = append(out, s)
		default:
			return out
		}
	}
}

// Register adds a session to the active set once the simulation has
// assigned its player_id/network_id and spawned its entity.
func (m *Manager) Register(id world.SessionID, s *Session) {
	m.active[id] = s
}

// Unregister removes a session from the active set during post-tick
// cleanup.
func (m *Manager) Unregister(id world.SessionID) {
	delete(m.active, id)
}

// Get returns the active session for id, if any.
func (m *Manager) Get(id world.SessionID) (*Session, bool) {
	s, ok := m.active[id]
	return s, ok
}

// Each calls fn for every active session.
func (m *Manager) Each(fn func(world.SessionID, *Session)) {
	for id, s := range m.active {
		fn(id, s)
	}
}

// CheckHeartbeats marks every active session whose heartbeat has expired
// as terminated. Called once per tick during ingest.
func (m *Manager) CheckHeartbeats(now time.Time) {
	for _, s := range m.active {
		if !s.Terminated() && s.Expired(now) {
			s.Terminate(ReasonHeartbeatTimeout)
		}
	}
}
