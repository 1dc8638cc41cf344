package session

import (
	"sync/atomic"

	"arenasrv/internal/protocol"
)

// CommandQueueCapacity bounds the inbound command queue: capacity 64,
// drop-oldest on overflow.
const CommandQueueCapacity = 64

// OutboundSinkCapacity bounds the outbound message sink to 16 messages.
const OutboundSinkCapacity = 16

// CommandQueue is the bounded, drop-oldest inbound command queue bridging
// a session's reader goroutine to the simulation's input-ingest phase.
type CommandQueue struct {
	ch      chan protocol.Command
	dropped atomic.Int64
}

// NewCommandQueue returns an empty command queue of the standard capacity.
func NewCommandQueue() *CommandQueue {
	return &CommandQueue{ch: make(chan protocol.Command, CommandQueueCapacity)}
}

// Push enqueues cmd, dropping the oldest pending command and incrementing
// the drop counter if the queue is full. Called from the session's reader
// goroutine.
func (q *CommandQueue) Push(cmd protocol.Command) {
	select {
	case q.ch <- cmd:
		return
	default:
	}

	select {
	case <-q.ch:
		q.dropped.Add(1)
	default:
	}

	select {
	case q.ch <- cmd:
	default:
		// Extremely unlikely race with a concurrent drain; the command is
		// simply dropped rather than blocking the reader.
		q.dropped.Add(1)
	}
}

// DrainAll removes and returns every command currently queued, in FIFO
// order, for the simulation's input-ingest phase to apply using a
// last-wins policy.
func (q *CommandQueue) DrainAll() []protocol.Command {
	var out []protocol.Command
	for {
		select {
		case cmd := <-q.ch:
			out = append(out, cmd)
		default:
			return out
		}
	}
}

// Dropped returns the number of commands silently dropped due to overflow.
func (q *CommandQueue) Dropped() int64 {
	return q.dropped.Load()
}

// OutboundSink is the bounded outbound message sink a session's writer
// goroutine drains. Overflow does not drop a message silently; it signals
// the caller to evict the session as a slow consumer.
type OutboundSink struct {
	ch chan any
}

// NewOutboundSink returns an empty outbound sink of the standard capacity.
func NewOutboundSink() *OutboundSink {
	return &OutboundSink{ch: make(chan any, OutboundSinkCapacity)}
}

// TrySend enqueues msg for delivery. It returns false if the sink is full,
// meaning the caller (the replication dispatcher) must evict the session
// as a slow consumer rather than block the simulation tick.
func (s *OutboundSink) TrySend(msg any) bool {
	select {
	case s.ch <- msg:
		return true
	default:
		return false
	}
}

// Receive returns the channel the writer goroutine ranges over.
func (s *OutboundSink) Receive() <-chan any {
	return s.ch
}
