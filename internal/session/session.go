// Package session implements the per-connection session layer: identity,
// liveness tracking, the inbound command queue, and the outbound message
// sink. Each Session exposes only atomics and channels across the
// network/simulation boundary — no session-level mutex is needed.
package session

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"arenasrv/internal/protocol"
	"arenasrv/internal/world"
)

// HeartbeatTimeout is the liveness deadline: a session idles out if
// now − last_heartbeat_at exceeds it.
const HeartbeatTimeout = 30 * time.Second

// Reasons a session can be terminated.
const (
	ReasonTransportClosed   = "transport closed"
	ReasonHeartbeatTimeout  = "heartbeat timeout"
	ReasonSlowConsumer      = "slow consumer"
	ReasonProtocolViolation = "protocol violation"
)

// Session is a live client connection and its associated identity,
// queues, and lifecycle flags. NetworkID/PlayerID are assigned by the
// simulation when it processes the join request, so a freshly constructed
// Session has them at zero until then.
type Session struct {
	// CorrelationID is an internal, wire-invisible id for log correlation
	// across a session's reader/writer/simulation-side-table entries; it is
	// distinct from the wire-visible monotonic player_id/network_id, which
	// must stay a small, globally unique integer.
	CorrelationID uuid.UUID

	JoinedAt time.Time

	PlayerID  world.NetworkID // set once, by the simulation, on join
	NetworkID world.NetworkID // always equals PlayerID

	Commands *CommandQueue
	Outbound *OutboundSink

	lastHeartbeat atomic.Int64 // unix nanoseconds
	terminated    atomic.Bool
	reason        atomic.Value // string
}

// New constructs a session with fresh queues and the heartbeat clock
// started now — connecting resets the clock.
func New() *Session {
	s := &Session{
		CorrelationID: uuid.New(),
		JoinedAt:      time.Now(),
		Commands:      NewCommandQueue(),
		Outbound:      NewOutboundSink(),
	}
	s.Touch()
	return s
}

// Touch resets the heartbeat clock. Called for every recognized inbound
// frame: heartbeat, Move, or Stop.
func (s *Session) Touch() {
	s.lastHeartbeat.Store(time.Now().UnixNano())
}

// LastHeartbeat returns the last time Touch was called.
func (s *Session) LastHeartbeat() time.Time {
	return time.Unix(0, s.lastHeartbeat.Load())
}

// Expired reports whether the session has exceeded HeartbeatTimeout
// without a heartbeat.
func (s *Session) Expired(now time.Time) bool {
	return now.Sub(s.LastHeartbeat()) > HeartbeatTimeout
}

// Terminate marks the session for teardown with the given reason. It is
// idempotent: only the first call's reason sticks. Safe to call from any
// goroutine (reader, writer, or the simulation tick) — actual despawn and
// socket teardown are deferred to the post-tick cleanup phase so mid-tick
// world state stays consistent.
func (s *Session) Terminate(reason string) {
	if s.terminated.CompareAndSwap(false, true) {
		s.reason.Store(reason)
	}
}

// Terminated reports whether Terminate has been called.
func (s *Session) Terminated() bool {
	return s.terminated.Load()
}

// TerminationReason returns the reason passed to the first Terminate call,
// or "" if the session is still active.
func (s *Session) TerminationReason() string {
	v := s.reason.Load()
	if v == nil {
		return ""
	}
	return v.(string)
}

// Send enqueues an outbound message, evicting the session as a slow
// consumer if the sink is full.
func (s *Session) Send(msg protocol.OutboundMessage) {
	if !s.Outbound.TrySend(msg) {
		s.Terminate(ReasonSlowConsumer)
	}
}
