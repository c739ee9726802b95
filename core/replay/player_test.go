package replay

import (
	"context"
	"testing"
	"time"

	"github.com/robosemantics/episode-segmenter/core/world"
	"gonum.org/v1/gonum/spatial/r3"
)

func samplePose(x, y, z float64) world.Pose {
	pose := world.IdentityPose()
	pose.Position = r3.Vec{X: x, Y: y, Z: z}
	return pose
}

func joinWithin(t *testing.T, p *RecordedPlayer, timeout time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		p.Join()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for the replay to finish")
	}
}

func TestMemorySourceUnknownEpisode(t *testing.T) {
	source := MemorySource{}
	if _, err := source.Samples(context.Background(), "missing"); err == nil {
		t.Fatalf("expected an error for an unknown episode")
	}
}

func TestLoadRejectsEmptyEpisode(t *testing.T) {
	source := MemorySource{"empty": nil}
	player := NewRecordedPlayer(world.NewKinematicScene(0.1), source)
	if err := player.Load(context.Background(), "empty"); err == nil {
		t.Fatalf("expected an error for an episode without samples")
	}
}

func TestPlayerAppliesSamplesAndStops(t *testing.T) {
	scene := world.NewKinematicScene(0.1)
	source := MemorySource{"episode": {
		{Entity: "cup", Stamp: 0.2, Pose: samplePose(9, 9, 9)},
		{Entity: "cup", Stamp: 0.1, Pose: samplePose(1, 1, 1)},
		{Entity: "table", Stamp: 0, Pose: samplePose(0, 0, 0)},
	}}

	player := NewRecordedPlayer(scene, source)
	if err := player.Load(context.Background(), "episode"); err != nil {
		t.Fatalf("expected load to succeed, got %v", err)
	}
	player.Start()
	joinWithin(t, player, 2*time.Second)

	if player.Running() {
		t.Fatalf("expected the player to report stopped after the last sample")
	}
	if !player.Ready() {
		t.Fatalf("expected the player to be ready once every entity moved")
	}

	var cup world.Object
	for _, obj := range scene.Objects() {
		if obj.Name == "cup" {
			cup = obj
		}
	}
	pose, ok := scene.Pose(cup)
	if !ok {
		t.Fatalf("expected the cup to have a pose after the replay")
	}
	if want := samplePose(9, 9, 9); pose.Position != want.Position {
		t.Fatalf("expected the cup to end at the latest stamp's pose %v, got %v", want.Position, pose.Position)
	}
}

func TestPlayerReadyWaitsForEveryEntity(t *testing.T) {
	scene := world.NewKinematicScene(0.1)
	source := MemorySource{"episode": {
		{Entity: "cup", Stamp: 0, Pose: samplePose(0, 0, 0)},
		{Entity: "table", Stamp: 0.5, Pose: samplePose(1, 0, 0)},
	}}

	player := NewRecordedPlayer(scene, source, WithRealTime())
	if err := player.Load(context.Background(), "episode"); err != nil {
		t.Fatalf("expected load to succeed, got %v", err)
	}
	player.Start()
	defer player.Stop()

	time.Sleep(100 * time.Millisecond)
	if player.Ready() {
		t.Fatalf("expected the player not to be ready before the second entity moved")
	}

	deadline := time.After(2 * time.Second)
	for !player.Ready() {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for the player to become ready")
		case <-time.After(5 * time.Millisecond):
		}
	}
	joinWithin(t, player, 2*time.Second)
}

func TestPlayerStopInterruptsLongGaps(t *testing.T) {
	scene := world.NewKinematicScene(0.1)
	source := MemorySource{"episode": {
		{Entity: "cup", Stamp: 0, Pose: samplePose(0, 0, 0)},
		{Entity: "cup", Stamp: 30, Pose: samplePose(1, 0, 0)},
	}}

	player := NewRecordedPlayer(scene, source, WithRealTime())
	if err := player.Load(context.Background(), "episode"); err != nil {
		t.Fatalf("expected load to succeed, got %v", err)
	}
	player.Start()
	player.Stop()
	joinWithin(t, player, time.Second)

	if player.Running() {
		t.Fatalf("expected the player to report stopped after the interrupt")
	}
}

func TestPlayerStartWithoutLoadIsNoop(t *testing.T) {
	player := NewRecordedPlayer(world.NewKinematicScene(0.1), MemorySource{})
	player.Start()
	joinWithin(t, player, time.Second)
	if player.Running() {
		t.Fatalf("expected an unloaded player never to run")
	}
}
