package world

import (
	"fmt"
	"sort"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"
)

// Scene is the narrow view of the physics collaborator the detectors
// consume. Implementations must be safe for concurrent readers; the
// replay driver is the only writer.
type Scene interface {
	// ContactPoints returns the contact set of obj against every other
	// object within maxDistance of touching.
	ContactPoints(obj Object, maxDistance float64) (ContactSet, error)
	// ContactPointsWith restricts the query to one specific other object.
	ContactPointsWith(obj, other Object, maxDistance float64) (ContactSet, error)
	// Pose returns the current pose of obj, or false if it has none yet.
	Pose(obj Object) (Pose, bool)
	// LinkTransform returns the transform of b expressed in a's frame.
	LinkTransform(a, b Link) (Transform, error)
	// Objects enumerates the current scene objects.
	Objects() []Object
}

type sceneBody struct {
	object Object
	pose   Pose
	radius float64
	posed  bool
}

// KinematicScene is an in-memory scene holding replayed poses. Bodies
// are approximated as spheres; two bodies are in contact when the gap
// between their surfaces is at most the query distance. The contact
// normal is the unit vector from the other body's centre towards the
// tracked body.
type KinematicScene struct {
	mu     sync.RWMutex
	nextID int64
	bodies map[int64]*sceneBody
	byName map[string]int64

	defaultRadius float64
}

// NewKinematicScene creates an empty scene. Bodies spawned without an
// explicit radius use defaultRadius.
func NewKinematicScene(defaultRadius float64) *KinematicScene {
	return &KinematicScene{
		bodies:        make(map[int64]*sceneBody),
		byName:        make(map[string]int64),
		defaultRadius: defaultRadius,
	}
}

// Spawn adds a body with the given display name and collision radius and
// returns its object handle. Spawning an existing name returns the
// existing handle.
func (k *KinematicScene) Spawn(name string, radius float64) Object {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.spawnLocked(name, radius)
}

func (k *KinematicScene) spawnLocked(name string, radius float64) Object {
	if id, ok := k.byName[name]; ok {
		return k.bodies[id].object
	}
	k.nextID++
	obj := Object{ID: k.nextID, Name: name}
	k.bodies[obj.ID] = &sceneBody{object: obj, radius: radius}
	k.byName[name] = obj.ID
	return obj
}

// SetPose updates the pose of a named body, spawning it with the default
// radius if it does not exist yet. This is the replay driver's write path.
func (k *KinematicScene) SetPose(name string, pose Pose) Object {
	k.mu.Lock()
	defer k.mu.Unlock()
	obj := k.spawnLocked(name, k.defaultRadius)
	body := k.bodies[obj.ID]
	body.pose = pose
	body.posed = true
	return obj
}

// Posed reports whether the named body has received a pose.
func (k *KinematicScene) Posed(name string) bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	id, ok := k.byName[name]
	if !ok {
		return false
	}
	return k.bodies[id].posed
}

func (k *KinematicScene) Pose(obj Object) (Pose, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	body, ok := k.bodies[obj.ID]
	if !ok || !body.posed {
		return Pose{}, false
	}
	return body.pose, true
}

func (k *KinematicScene) Objects() []Object {
	k.mu.RLock()
	defer k.mu.RUnlock()
	objects := make([]Object, 0, len(k.bodies))
	for _, body := range k.bodies {
		objects = append(objects, body.object)
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].ID < objects[j].ID })
	return objects
}

func (k *KinematicScene) ContactPoints(obj Object, maxDistance float64) (ContactSet, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	tracked, ok := k.bodies[obj.ID]
	if !ok {
		return nil, fmt.Errorf("contact query: unknown object %s", obj)
	}
	var set ContactSet
	for _, other := range k.bodies {
		if other.object.ID == obj.ID {
			continue
		}
		if point, touching := contactBetween(tracked, other, maxDistance); touching {
			set = append(set, point)
		}
	}
	sort.Slice(set, func(i, j int) bool { return set[i].LinkB.Object.ID < set[j].LinkB.Object.ID })
	return set, nil
}

func (k *KinematicScene) ContactPointsWith(obj, other Object, maxDistance float64) (ContactSet, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	tracked, ok := k.bodies[obj.ID]
	if !ok {
		return nil, fmt.Errorf("contact query: unknown object %s", obj)
	}
	against, ok := k.bodies[other.ID]
	if !ok {
		return nil, fmt.Errorf("contact query: unknown object %s", other)
	}
	var set ContactSet
	if point, touching := contactBetween(tracked, against, maxDistance); touching {
		set = append(set, point)
	}
	return set, nil
}

func contactBetween(tracked, other *sceneBody, maxDistance float64) (ContactPoint, bool) {
	if !tracked.posed || !other.posed {
		return ContactPoint{}, false
	}
	delta := r3.Sub(tracked.pose.Position, other.pose.Position)
	gap := r3.Norm(delta) - tracked.radius - other.radius
	if gap > maxDistance {
		return ContactPoint{}, false
	}
	normal := r3.Vec{Z: 1}
	if n := r3.Norm(delta); n > 0 {
		normal = r3.Scale(1/n, delta)
	}
	return ContactPoint{
		LinkA:  tracked.object.RootLink(),
		LinkB:  other.object.RootLink(),
		Normal: normal,
	}, true
}

func (k *KinematicScene) LinkTransform(a, b Link) (Transform, error) {
	poseA, okA := k.Pose(a.Object)
	poseB, okB := k.Pose(b.Object)
	if !okA || !okB {
		return Transform{}, fmt.Errorf("link transform: %s or %s has no pose", a, b)
	}
	return RelativeTransform(poseA, poseB, a.String(), b.String()), nil
}
