package protocol

import (
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"arenasrv/internal/world"
)

func TestParseCommand(t *testing.T) {
	Convey("Heartbeat is accepted as a bare literal string", t, func() {
		cmd, err := ParseCommand([]byte(`"heartbeat"`))
		So(err, ShouldBeNil)
		So(cmd, ShouldResemble, Heartbeat{})
	})

	Convey("Stop is accepted both as a bare literal and as an object", t, func() {
		cmd, err := ParseCommand([]byte(`"Stop"`))
		So(err, ShouldBeNil)
		So(cmd, ShouldResemble, Stop{})

		cmd, err = ParseCommand([]byte(`{"Stop":null}`))
		So(err, ShouldBeNil)
		So(cmd, ShouldResemble, Stop{})
	})

	Convey("Move decodes its direction vector", t, func() {
		cmd, err := ParseCommand([]byte(`{"Move":{"direction":[1,0]}}`))
		So(err, ShouldBeNil)
		move, ok := cmd.(Move)
		So(ok, ShouldBeTrue)
		So(move.DX, ShouldEqual, 1)
		So(move.DY, ShouldEqual, 0)
	})

	Convey("Unknown frames return an error without panicking", t, func() {
		_, err := ParseCommand([]byte(`{"Blorp":true}`))
		So(err, ShouldNotBeNil)

		_, err = ParseCommand([]byte(`not json at all`))
		So(err, ShouldNotBeNil)
	})
}

func TestOutboundMessageShapes(t *testing.T) {
	Convey("Welcome carries player_id, network_id, and spawn_position", t, func() {
		msg := NewWelcome(1, 1, 5, 10)
		buf, err := json.Marshal(msg)
		So(err, ShouldBeNil)

		var round map[string]interface{}
		So(json.Unmarshal(buf, &round), ShouldBeNil)
		So(round["t"], ShouldEqual, "w")
		So(round["p"], ShouldEqual, float64(1))

		entries := round["u"].([]interface{})
		So(len(entries), ShouldEqual, 1)
		entry := entries[0].(map[string]interface{})
		So(entry["i"], ShouldEqual, float64(1))
	})

	Convey("Removed references only the network id", t, func() {
		msg := NewRemoved(world.NetworkID(7))
		So(msg.T, ShouldEqual, TypeRemoved)
		So(len(msg.U), ShouldEqual, 1)
		So(msg.U[0].I, ShouldEqual, world.NetworkID(7))
		So(msg.U[0].C, ShouldBeNil)
	})
}
