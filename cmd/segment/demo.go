package main

import (
	"github.com/robosemantics/episode-segmenter/core/replay"
	"github.com/robosemantics/episode-segmenter/core/world"
	"gonum.org/v1/gonum/spatial/r3"
)

const demoEpisodeID = "demo"

// demoSource synthesizes a small episode: a cup rests on a table, a hand
// approaches, grasps it and lifts it off. Sampled at 10 Hz over three
// seconds so detectors polling at their default cadence see every phase.
func demoSource() replay.MemorySource {
	at := func(x, y, z float64) world.Pose {
		pose := world.IdentityPose()
		pose.Position = r3.Vec{X: x, Y: y, Z: z}
		return pose
	}

	var samples []replay.Sample
	for tick := 0; tick <= 30; tick++ {
		stamp := float64(tick) / 10

		hand := at(0.5, 0, 0.4)
		cup := at(0, 0, 0.2)
		switch {
		case stamp >= 1.5:
			// Lift-off: the cup leaves the table, still in the hand.
			hand = at(0, 0, 0.7)
			cup = at(0, 0, 0.5)
		case stamp >= 0.5:
			// Grasp: the hand reaches the cup on the table.
			hand = at(0, 0, 0.4)
		}

		samples = append(samples,
			replay.Sample{Entity: "table", Stamp: stamp, Pose: at(0, 0, 0)},
			replay.Sample{Entity: "cup", Stamp: stamp, Pose: cup},
			replay.Sample{Entity: "right_hand", Stamp: stamp, Pose: hand},
		)
	}
	return replay.MemorySource{demoEpisodeID: samples}
}
