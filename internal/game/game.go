// Package game wires the core components (world, simulation, replication,
// sessions) into the fixed-tick loop, generalizing the teacher's
// reinforcement.TrainAgent / server.NewServer composition root.
package game

import (
	"math/rand"
	"time"

	"arenasrv/internal/config"
	"arenasrv/internal/dispatch"
	"arenasrv/internal/log"
	"arenasrv/internal/protocol"
	"arenasrv/internal/replication"
	"arenasrv/internal/session"
	"arenasrv/internal/sim"
	"arenasrv/internal/world"
)

// Game owns every piece of simulation state and drives one tick at a time.
// It is touched only by the simulation goroutine; the session manager is
// the sole point of contact for the network listener's goroutines.
type Game struct {
	World    *world.World
	Sessions *session.Manager
	Side     *dispatch.SideTable
	Dispatch *dispatch.Dispatcher
	Bounds   sim.Bounds
	MaxSpeed float64

	tickCount uint64
}

// metricsLogInterval bounds how often the aggregate per-session drop
// counters are logged, following the teacher's own updateCounter idiom
// (server/server.go) generalized to periodic summary logging instead of a
// per-update print.
const metricsLogInterval = 100 // ticks (~5s at 20Hz)

// New constructs a Game from resolved configuration.
func New(cfg *config.Config) *Game {
	return &Game{
		World:    world.New(),
		Sessions: session.NewManager(),
		Side:     dispatch.NewSideTable(),
		Dispatch: dispatch.New(replication.NewRegistry()),
		Bounds:   sim.Bounds{X: cfg.WorldBoundsX, Y: cfg.WorldBoundsY},
		MaxSpeed: cfg.PlayerSpeed,
	}
}

// Tick runs one full simulation step — join intake, heartbeat checks,
// command application, physics, replication dispatch, and termination
// cleanup — followed by the per-tick change-tracking reset that prepares
// the world for the next tick.
func (g *Game) Tick(dt float64) {
	now := time.Now()

	g.ingestJoins()
	g.Sessions.CheckHeartbeats(now)
	g.ingestCommands()

	sim.Step(g.World, dt, g.Bounds)

	g.Dispatch.Run(g.World, g.Sessions, g.Side, now)

	g.cleanupTerminated()

	g.World.ResetChangeTracking()

	g.tickCount++
	if g.tickCount%metricsLogInterval == 0 {
		g.logMetrics()
	}
}

// logMetrics summarizes per-session command-drop counters, a supplemental
// observability feature grounded in the teacher's own updateCounter field
// (server/server.go) and mk48's per-connection counters.
func (g *Game) logMetrics() {
	var sessions, droppedCommands int
	g.Sessions.Each(func(_ world.SessionID, s *session.Session) {
		sessions++
		droppedCommands += int(s.Commands.Dropped())
	})
	log.Infof("game: %d active sessions, %d commands dropped (cumulative)", sessions, droppedCommands)
}

// ingestJoins spawns a player entity for every session that completed its
// handshake since the last tick.
func (g *Game) ingestJoins() {
	for _, s := range g.Sessions.DrainJoins() {
		id := g.World.Spawn()
		playerID := g.World.AllocateNetworkID()

		spawnX := rand.Float64() * g.Bounds.X
		spawnY := rand.Float64() * g.Bounds.Y

		g.World.Positions.Set(id, world.Position{X: spawnX, Y: spawnY})
		g.World.Velocities.Set(id, world.Velocity{})
		g.World.DesiredVelocities.Set(id, world.DesiredVelocity{})
		g.World.Profiles.Set(id, world.DefaultCharacterProfile(g.MaxSpeed))
		g.World.Networked.Set(id, world.NetworkedObject{NetworkID: playerID, Kind: world.KindPlayer})
		g.World.Owners.Set(id, world.Owner{PlayerID: playerID})

		s.PlayerID = playerID
		s.NetworkID = playerID

		g.Sessions.Register(playerID, s)
		g.Side.Set(playerID, &dispatch.SideEntry{
			EntityID:      id,
			NetworkID:     playerID,
			NeedsFullSync: true,
		})

		s.Send(protocol.NewWelcome(playerID, playerID, spawnX, spawnY))
		log.Infof("game: session %s joined as network_id=%d at (%.1f, %.1f)", s.CorrelationID, playerID, spawnX, spawnY)
	}
}

// ingestCommands drains each active session's pending commands and applies
// only the most recent Move or Stop, per tick, per session (last-wins).
// Heartbeat commands carry no simulation effect; the reader goroutine has
// already reset the session's liveness clock for them.
func (g *Game) ingestCommands() {
	g.Sessions.Each(func(id world.SessionID, s *session.Session) {
		if s.Terminated() {
			return
		}
		entry, ok := g.Side.Get(id)
		if !ok {
			return
		}

		var lastMove *protocol.Move
		stop := false
		for _, cmd := range s.Commands.DrainAll() {
			switch c := cmd.(type) {
			case protocol.Move:
				mv := c
				lastMove = &mv
				stop = false
			case protocol.Stop:
				lastMove = nil
				stop = true
			case protocol.Heartbeat:
			}
		}

		switch {
		case lastMove != nil:
			sim.ApplyMove(g.World, entry.EntityID, lastMove.DX, lastMove.DY)
		case stop:
			sim.ApplyStop(g.World, entry.EntityID)
		}
	})
}

// cleanupTerminated despawns and purges snapshot state for every session
// marked terminated this tick or earlier.
func (g *Game) cleanupTerminated() {
	var toRemove []world.SessionID
	g.Side.Each(func(id world.SessionID, entry *dispatch.SideEntry) {
		s, ok := g.Sessions.Get(id)
		if !ok || !s.Terminated() {
			return
		}
		g.World.Despawn(entry.EntityID)
		g.Dispatch.PurgeEntity(entry.NetworkID)
		g.Dispatch.PurgeSession(id)
		toRemove = append(toRemove, id)
	})

	for _, id := range toRemove {
		g.Side.Delete(id)
		g.Sessions.Unregister(id)
	}
}
