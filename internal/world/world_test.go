package world

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestWorldLifecycle(t *testing.T) {
	Convey("Given an empty world", t, func() {
		w := New()

		Convey("Spawning an entity makes it alive with no components", func() {
			id := w.Spawn()
			So(w.Alive(id), ShouldBeTrue)
			_, ok := w.Positions.Get(id)
			So(ok, ShouldBeFalse)
		})

		Convey("Attaching a component makes it retrievable and marks it changed", func() {
			id := w.Spawn()
			w.Positions.Set(id, Position{X: 1, Y: 2})

			pos, ok := w.Positions.Get(id)
			So(ok, ShouldBeTrue)
			So(pos, ShouldResemble, Position{X: 1, Y: 2})

			var seen []EntityID
			w.Positions.IterChanged(func(eid EntityID, _ Position) {
				seen = append(seen, eid)
			})
			So(seen, ShouldResemble, []EntityID{id})
		})

		Convey("ResetChangeTracking clears the changed set without dropping values", func() {
			id := w.Spawn()
			w.Positions.Set(id, Position{X: 1, Y: 2})
			w.ResetChangeTracking()

			var seen []EntityID
			w.Positions.IterChanged(func(eid EntityID, _ Position) {
				seen = append(seen, eid)
			})
			So(seen, ShouldBeEmpty)

			pos, ok := w.Positions.Get(id)
			So(ok, ShouldBeTrue)
			So(pos, ShouldResemble, Position{X: 1, Y: 2})
		})

		Convey("Despawn removes every component and is idempotent", func() {
			id := w.Spawn()
			w.Positions.Set(id, Position{X: 1, Y: 2})
			w.Networked.Set(id, NetworkedObject{NetworkID: 7, Kind: KindPlayer})

			w.Despawn(id)
			So(w.Alive(id), ShouldBeFalse)
			_, ok := w.Positions.Get(id)
			So(ok, ShouldBeFalse)
			_, ok = w.Networked.Get(id)
			So(ok, ShouldBeFalse)

			So(func() { w.Despawn(id) }, ShouldNotPanic)
		})

		Convey("AllocateNetworkID never repeats a value", func() {
			seen := map[NetworkID]bool{}
			for i := 0; i < 100; i++ {
				id := w.AllocateNetworkID()
				So(seen[id], ShouldBeFalse)
				seen[id] = true
			}
		})
	})
}
