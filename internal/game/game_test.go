package game

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"arenasrv/internal/config"
	"arenasrv/internal/protocol"
	"arenasrv/internal/scheduler"
	"arenasrv/internal/session"
	"arenasrv/internal/world"
)

func testConfig() *config.Config {
	return &config.Config{
		WebsocketHost: "127.0.0.1",
		WebsocketPort: 0,
		WorldBoundsX:  1000,
		WorldBoundsY:  1000,
		PlayerSpeed:   100,
		LogLevel:      "error",
	}
}

func TestGameJoinSpawnsAndWelcomes(t *testing.T) {
	Convey("Given a freshly joined session", t, func() {
		g := New(testConfig())
		s := session.New()
		So(g.Sessions.RequestJoin(s), ShouldBeTrue)

		g.Tick(scheduler.TickInterval.Seconds())

		Convey("The session receives a welcome message and is registered", func() {
			So(s.PlayerID, ShouldNotEqual, 0)
			So(s.NetworkID, ShouldEqual, s.PlayerID)

			raw := <-s.Outbound.Receive()
			msg, ok := raw.(protocol.OutboundMessage)
			So(ok, ShouldBeTrue)
			So(msg.T, ShouldEqual, protocol.TypeWelcome)

			got, ok := g.Sessions.Get(s.PlayerID)
			So(ok, ShouldBeTrue)
			So(got, ShouldEqual, s)
		})
	})
}

func TestGameMoveCommandAdvancesPosition(t *testing.T) {
	Convey("Given a joined session issuing a Move command", t, func() {
		g := New(testConfig())
		s := session.New()
		g.Sessions.RequestJoin(s)
		g.Tick(scheduler.TickInterval.Seconds())
		<-s.Outbound.Receive() // welcome

		entry, ok := g.Side.Get(s.PlayerID)
		So(ok, ShouldBeTrue)

		// Pin the entity away from the world bounds so 50 ticks of movement
		// can't trigger a boundary reflection and mask the assertion below.
		g.World.Positions.Set(entry.EntityID, world.Position{X: 500, Y: 500})
		startPos, _ := g.World.Positions.Get(entry.EntityID)

		s.Commands.Push(protocol.Move{DX: 1, DY: 0})

		for i := 0; i < 50; i++ {
			g.Tick(scheduler.TickInterval.Seconds())
			// Drain replication output so the bounded outbound sink never
			// overflows and evicts the session as a slow consumer.
			for len(s.Outbound.Receive()) > 0 {
				<-s.Outbound.Receive()
			}
		}

		Convey("The entity has moved in the commanded direction", func() {
			endPos, _ := g.World.Positions.Get(entry.EntityID)
			So(endPos.X, ShouldBeGreaterThan, startPos.X)
		})
	})
}

func TestGameTerminationDespawnsAndNotifies(t *testing.T) {
	Convey("Given two joined sessions", t, func() {
		g := New(testConfig())
		sA := session.New()
		sB := session.New()
		g.Sessions.RequestJoin(sA)
		g.Sessions.RequestJoin(sB)
		g.Tick(scheduler.TickInterval.Seconds())
		<-sA.Outbound.Receive() // welcome
		<-sA.Outbound.Receive() // full sync
		<-sB.Outbound.Receive()

		entryB, _ := g.Side.Get(sB.PlayerID)
		sB.Terminate(session.ReasonTransportClosed)

		Convey("The next tick removes the entity and notifies the other session", func() {
			g.Tick(scheduler.TickInterval.Seconds())

			So(g.World.Alive(entryB.EntityID), ShouldBeFalse)
			_, ok := g.Sessions.Get(sB.PlayerID)
			So(ok, ShouldBeFalse)

			raw := <-sA.Outbound.Receive()
			msg, ok := raw.(protocol.OutboundMessage)
			So(ok, ShouldBeTrue)
			So(msg.T, ShouldEqual, protocol.TypeRemoved)
		})
	})
}
