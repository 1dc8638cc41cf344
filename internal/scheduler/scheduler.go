// Package scheduler drives the fixed-tick simulation loop using the same
// channerics.NewTicker primitive the teacher uses for its publish and
// ping-pong loops (server/fastview/client.go), generalized into an
// accumulator pattern that tolerates wall-clock jitter.
package scheduler

import (
	"context"
	"runtime"
	"time"

	channerics "github.com/niceyeti/channerics/channels"

	"arenasrv/internal/log"
)

// TickInterval is the fixed simulation step duration: 20 Hz, Δt=50ms.
const TickInterval = 50 * time.Millisecond

// MaxLagTicks bounds how many ticks the accumulator will run in a single
// wakeup before dropping the remainder, to avoid the spiral of death: if
// wall lag exceeds 5 ticks (250 ms), it's capped at 5.
const MaxLagTicks = 5

// TickFunc executes one fixed simulation step of duration dtSeconds.
type TickFunc func(dtSeconds float64)

// advance runs the accumulator pattern once: given elapsed wall time since
// the last wakeup, run as many whole tick batches as the accumulator holds
// (capped at maxLag), invoking run for each, and return the leftover
// accumulator plus how many ticks actually ran. Pulled out of Run as a pure
// function so the capping/dropping behavior is unit-testable without a
// real ticker.
func advance(accumulator, elapsed, interval, maxLag time.Duration, run func()) (remaining time.Duration, ranTicks int, dropped time.Duration) {
	accumulator += elapsed
	if accumulator > maxLag {
		dropped = accumulator - maxLag
		accumulator = maxLag
	}
	for accumulator >= interval {
		run()
		accumulator -= interval
		ranTicks++
	}
	return accumulator, ranTicks, dropped
}

// Run drives fn at TickInterval using an accumulator: each wakeup advances
// the accumulator by wall-elapsed time, then runs whole tick batches while
// the accumulator holds at least one full interval, yielding cooperatively
// between batches so network tasks can make progress. Run blocks until ctx
// is cancelled.
func Run(ctx context.Context, fn TickFunc) {
	wakeups := channerics.NewTicker(ctx.Done(), TickInterval)

	last := time.Now()
	var accumulator time.Duration
	maxLag := TickInterval * MaxLagTicks

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-wakeups:
			if !ok {
				return
			}
			now := time.Now()
			elapsed := now.Sub(last)
			last = now

			ticksRan := 0
			var dropped time.Duration
			accumulator, ticksRan, dropped = advance(accumulator, elapsed, TickInterval, maxLag, func() {
				fn(TickInterval.Seconds())
				// Yield cooperatively between batches so reader/writer
				// goroutines are not starved by back-to-back ticks.
				runtime.Gosched()
			})
			if dropped > 0 {
				log.Warnf("scheduler: lag exceeded %d ticks, dropped %s", MaxLagTicks, dropped)
			}
			_ = ticksRan
		}
	}
}
