package replication

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"arenasrv/internal/world"
)

func fields(x, y float64) Fields {
	return Fields{Names: []string{"x", "y"}, Values: []float64{x, y}}
}

func TestSnapshotDiffCommit(t *testing.T) {
	Convey("Given an empty snapshot and a position bundle", t, func() {
		snap := NewSnapshot()
		bundle := PositionBundle()
		var session world.SessionID = 1
		var entity world.NetworkID = 42

		Convey("The first diff for an entity is always significant (no prior entry)", func() {
			values, significant := snap.Diff(session, bundle, entity, fields(10, 20))
			So(significant, ShouldBeTrue)
			So(values, ShouldResemble, []float64{10, 20})
		})

		Convey("After commit, a sub-threshold change is not significant", func() {
			values, _ := snap.Diff(session, bundle, entity, fields(10, 20))
			snap.Commit(session, bundle, entity, []string{"x", "y"}, values)

			_, significant := snap.Diff(session, bundle, entity, fields(10.005, 20))
			So(significant, ShouldBeFalse)
		})

		Convey("Threshold accumulation: repeated 0.005 changes never emit, because diff "+
			"always compares against last-sent, not last-observed", func() {
			values, _ := snap.Diff(session, bundle, entity, fields(0, 0))
			snap.Commit(session, bundle, entity, []string{"x", "y"}, values)

			x := 0.0
			for i := 0; i < 3; i++ {
				x += 0.005
				_, significant := snap.Diff(session, bundle, entity, fields(x, 0))
				So(significant, ShouldBeFalse)
			}

			Convey("A cumulative change exceeding the threshold is significant exactly once", func() {
				x += 0.02
				values, significant := snap.Diff(session, bundle, entity, fields(x, 0))
				So(significant, ShouldBeTrue)
				So(values[0], ShouldEqual, x)

				snap.Commit(session, bundle, entity, []string{"x", "y"}, values)
				_, significantAgain := snap.Diff(session, bundle, entity, fields(x, 0))
				So(significantAgain, ShouldBeFalse)
			})
		})

		Convey("PurgeEntity removes the snapshot so the next diff is treated as new", func() {
			values, _ := snap.Diff(session, bundle, entity, fields(10, 20))
			snap.Commit(session, bundle, entity, []string{"x", "y"}, values)
			snap.PurgeEntity(entity)

			_, significant := snap.Diff(session, bundle, entity, fields(10, 20))
			So(significant, ShouldBeTrue)
		})
	})
}
