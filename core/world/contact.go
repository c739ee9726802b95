package world

import "gonum.org/v1/gonum/spatial/r3"

// ContactPoint is a single touch relation between a link of the tracked
// object and a link of another object. The normal points from the other
// object's surface towards the tracked object.
type ContactPoint struct {
	LinkA  Link
	LinkB  Link
	Normal r3.Vec
}

// ContactSet is the collection of all contact points for one tracked
// object at one instant. Set operations are keyed by the identity of the
// other object (LinkB's object), so repeated per-link contacts with the
// same object collapse to a single logical relation.
type ContactSet []ContactPoint

// Objects returns the distinct objects touched, in order of first
// appearance.
func (s ContactSet) Objects() []Object {
	seen := make(map[int64]bool, len(s))
	objects := make([]Object, 0, len(s))
	for _, p := range s {
		if seen[p.LinkB.Object.ID] {
			continue
		}
		seen[p.LinkB.Object.ID] = true
		objects = append(objects, p.LinkB.Object)
	}
	return objects
}

// ObjectNames returns the display names of the touched objects.
func (s ContactSet) ObjectNames() []string {
	objects := s.Objects()
	names := make([]string, len(objects))
	for i, o := range objects {
		names[i] = o.Name
	}
	return names
}

// Contains reports whether obj is among the touched objects.
func (s ContactSet) Contains(obj Object) bool {
	for _, p := range s {
		if p.LinkB.Object.ID == obj.ID {
			return true
		}
	}
	return false
}

// NewObjects returns the objects touched now that were not touched in
// previous.
func (s ContactSet) NewObjects(previous ContactSet) []Object {
	var added []Object
	for _, o := range s.Objects() {
		if !previous.Contains(o) {
			added = append(added, o)
		}
	}
	return added
}

// RemovedObjects returns the objects touched in previous that are no
// longer touched now.
func (s ContactSet) RemovedObjects(previous ContactSet) []Object {
	var removed []Object
	for _, o := range previous.Objects() {
		if !s.Contains(o) {
			removed = append(removed, o)
		}
	}
	return removed
}

// NormalsOf returns the contact normals of every point against obj.
func (s ContactSet) NormalsOf(obj Object) []r3.Vec {
	var normals []r3.Vec
	for _, p := range s {
		if p.LinkB.Object.ID == obj.ID {
			normals = append(normals, p.Normal)
		}
	}
	return normals
}
