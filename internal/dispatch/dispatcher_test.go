package dispatch

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"arenasrv/internal/protocol"
	"arenasrv/internal/replication"
	"arenasrv/internal/session"
	"arenasrv/internal/world"
)

func spawnPlayer(w *world.World, side *SideTable, sessions *session.Manager, sid world.SessionID, x, y float64) *session.Session {
	id := w.Spawn()
	netID := w.AllocateNetworkID()
	w.Positions.Set(id, world.Position{X: x, Y: y})
	w.Velocities.Set(id, world.Velocity{})
	w.Networked.Set(id, world.NetworkedObject{NetworkID: netID, Kind: world.KindPlayer})

	s := session.New()
	s.PlayerID = netID
	s.NetworkID = netID
	sessions.Register(sid, s)
	side.Set(sid, &SideEntry{EntityID: id, NetworkID: netID, NeedsFullSync: true})
	return s
}

func TestDispatcherFullSyncThenDelta(t *testing.T) {
	Convey("Given two nearby players freshly joined", t, func() {
		w := world.New()
		sessions := session.NewManager()
		side := NewSideTable()
		d := New(replication.NewRegistry())

		sA := spawnPlayer(w, side, sessions, 1, 0, 0)
		_ = spawnPlayer(w, side, sessions, 2, 10, 0)

		now := time.Now()

		Convey("The first tick sends a full sync to every session", func() {
			d.Run(w, sessions, side, now)

			msgA := <-sA.Outbound.Receive()
			So(msgA, ShouldNotBeNil)

			entryA, ok := side.Get(1)
			So(ok, ShouldBeTrue)
			So(entryA.NeedsFullSync, ShouldBeFalse)
		})

		Convey("A subsequent tick with no world changes sends no delta", func() {
			d.Run(w, sessions, side, now)
			<-sA.Outbound.Receive()

			w.ResetChangeTracking()
			d.Run(w, sessions, side, now.Add(time.Second))

			select {
			case <-sA.Outbound.Receive():
				t.Fatal("expected no delta message when nothing changed")
			default:
			}
		})

		Convey("A position change produces exactly one delta entry", func() {
			d.Run(w, sessions, side, now)
			<-sA.Outbound.Receive()

			w.ResetChangeTracking()
			entryB, _ := side.Get(2)
			w.Positions.Set(entryB.EntityID, world.Position{X: 20, Y: 0})

			d.Run(w, sessions, side, now.Add(time.Second))

			select {
			case raw := <-sA.Outbound.Receive():
				So(raw, ShouldNotBeNil)
				msg, ok := raw.(protocol.OutboundMessage)
				So(ok, ShouldBeTrue)
				So(msg.T, ShouldEqual, protocol.TypeDelta)
				So(len(msg.U), ShouldEqual, 1)
			default:
				t.Fatal("expected a delta message for the moved entity")
			}
		})
	})
}

func TestDispatcherViewDistanceFilter(t *testing.T) {
	Convey("Given a far-away entity outside view distance", t, func() {
		w := world.New()
		sessions := session.NewManager()
		side := NewSideTable()
		d := New(replication.NewRegistry())

		sA := spawnPlayer(w, side, sessions, 1, 0, 0)
		_ = spawnPlayer(w, side, sessions, 2, 10000, 10000)

		d.Run(w, sessions, side, time.Now())
		raw := <-sA.Outbound.Receive()
		msg, ok := raw.(protocol.OutboundMessage)
		So(ok, ShouldBeTrue)

		Convey("The full sync includes only the viewer's own entity", func() {
			So(len(msg.U), ShouldEqual, 1)
		})
	})
}

func TestDispatcherRemovalNotice(t *testing.T) {
	Convey("Given a terminated session", t, func() {
		w := world.New()
		sessions := session.NewManager()
		side := NewSideTable()
		d := New(replication.NewRegistry())

		sA := spawnPlayer(w, side, sessions, 1, 0, 0)
		sB := spawnPlayer(w, side, sessions, 2, 1, 1)

		d.Run(w, sessions, side, time.Now())
		<-sA.Outbound.Receive()
		<-sB.Outbound.Receive()

		sB.Terminate(session.ReasonTransportClosed)

		Convey("The other session receives a removed notice", func() {
			d.Run(w, sessions, side, time.Now())

			select {
			case msg := <-sA.Outbound.Receive():
				So(msg, ShouldNotBeNil)
			default:
				t.Fatal("expected a removal notice")
			}

			entryB, ok := side.Get(2)
			So(ok, ShouldBeTrue)
			So(entryB.RemovalSent, ShouldBeTrue)
		})
	})
}
