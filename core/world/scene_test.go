package world

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func poseAt(x, y, z float64) Pose {
	pose := IdentityPose()
	pose.Position = r3.Vec{X: x, Y: y, Z: z}
	return pose
}

func TestKinematicSceneContactAtGapBoundary(t *testing.T) {
	scene := NewKinematicScene(0.1)
	a := scene.SetPose("a", poseAt(0, 0, 0))
	scene.SetPose("b", poseAt(0.25, 0, 0))

	set, err := scene.ContactPoints(a, 0.05)
	if err != nil {
		t.Fatalf("expected contact query to succeed, got %v", err)
	}
	if len(set) != 1 {
		t.Fatalf("expected contact at a surface gap equal to the query distance, got %d points", len(set))
	}

	scene.SetPose("b", poseAt(0.26, 0, 0))
	set, err = scene.ContactPoints(a, 0.05)
	if err != nil {
		t.Fatalf("expected contact query to succeed, got %v", err)
	}
	if len(set) != 0 {
		t.Fatalf("expected no contact beyond the query distance, got %d points", len(set))
	}
}

func TestKinematicSceneNormalPointsTowardsTracked(t *testing.T) {
	scene := NewKinematicScene(0.1)
	scene.SetPose("table", poseAt(0, 0, 0))
	cup := scene.SetPose("cup", poseAt(0, 0, 0.2))

	set, err := scene.ContactPoints(cup, 0.05)
	if err != nil {
		t.Fatalf("expected contact query to succeed, got %v", err)
	}
	if len(set) != 1 {
		t.Fatalf("expected the cup to rest on the table, got %d points", len(set))
	}
	if set[0].Normal.Z < 0.99 {
		t.Fatalf("expected an upward contact normal, got %v", set[0].Normal)
	}
}

func TestKinematicSceneUnposedBodiesNeverTouch(t *testing.T) {
	scene := NewKinematicScene(0.1)
	a := scene.SetPose("a", poseAt(0, 0, 0))
	scene.Spawn("ghost", 10)

	set, err := scene.ContactPoints(a, 1)
	if err != nil {
		t.Fatalf("expected contact query to succeed, got %v", err)
	}
	if len(set) != 0 {
		t.Fatalf("expected an unposed body to produce no contacts, got %d points", len(set))
	}
}

func TestKinematicSceneContactQueryUnknownObject(t *testing.T) {
	scene := NewKinematicScene(0.1)
	if _, err := scene.ContactPoints(Object{ID: 42, Name: "missing"}, 0.05); err == nil {
		t.Fatalf("expected an error for an unknown object")
	}
}

func TestKinematicSceneSetPoseSpawns(t *testing.T) {
	scene := NewKinematicScene(0.1)
	if scene.Posed("cup") {
		t.Fatalf("expected an unknown body to report unposed")
	}
	obj := scene.SetPose("cup", poseAt(1, 2, 3))
	if !scene.Posed("cup") {
		t.Fatalf("expected the body to report posed after SetPose")
	}
	if again := scene.SetPose("cup", poseAt(4, 5, 6)); again.ID != obj.ID {
		t.Fatalf("expected a stable object id across pose updates, got %d then %d", obj.ID, again.ID)
	}
}

func TestLinkTransformRelativeTranslation(t *testing.T) {
	scene := NewKinematicScene(0.1)
	hand := scene.SetPose("hand", poseAt(1, 0, 0))
	cup := scene.SetPose("cup", poseAt(1, 2, 0))

	transform, err := scene.LinkTransform(hand.RootLink(), cup.RootLink())
	if err != nil {
		t.Fatalf("expected link transform to succeed, got %v", err)
	}
	want := r3.Vec{Y: 2}
	if d := r3.Norm(r3.Sub(transform.Translation, want)); d > 1e-9 {
		t.Fatalf("expected relative translation %v, got %v", want, transform.Translation)
	}
}

func TestAngleBetween(t *testing.T) {
	cases := []struct {
		name string
		a, b r3.Vec
		want float64
	}{
		{"parallel", r3.Vec{Z: 1}, r3.Vec{Z: 9.81}, 0},
		{"perpendicular", r3.Vec{X: 1}, r3.Vec{Z: 1}, math.Pi / 2},
		{"opposite", r3.Vec{Z: 1}, r3.Vec{Z: -1}, math.Pi},
		{"zero vector", r3.Vec{}, r3.Vec{Z: 1}, math.Pi},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := AngleBetween(tc.a, tc.b); math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("expected angle %v, got %v", tc.want, got)
			}
		})
	}
}
