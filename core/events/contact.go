package events

import (
	"fmt"
	"strings"

	"github.com/robosemantics/episode-segmenter/core/world"
)

const (
	// KindContact identifies newly gained contact between objects.
	KindContact Kind = "contact.gained"
	// KindLossOfContact identifies lost contact between objects.
	KindLossOfContact Kind = "contact.lost"
)

// Contact reports that the tracked object touched something it was not
// touching before. Points is the full current contact set, not just the
// new relations.
type Contact struct {
	Base
	Of     world.Object
	Points world.ContactSet
}

// NewContact creates a contact event for the tracked object.
func NewContact(of world.Object, points world.ContactSet, opts ...RebaseOption) Contact {
	return Contact{Base: NewBase(KindContact, opts...), Of: of, Points: points}
}

// ObjectsInContact returns the objects the tracked object touches.
func (e Contact) ObjectsInContact() []world.Object {
	return e.Points.Objects()
}

// ObjectNamesInContact returns the display names of the touched objects.
func (e Contact) ObjectNamesInContact() []string {
	return e.Points.ObjectNames()
}

func (e Contact) String() string {
	return fmt.Sprintf("Contact %s: [%s]", e.Of.Name, strings.Join(e.ObjectNamesInContact(), ", "))
}

// LossOfContact reports that the tracked object stopped touching at
// least one object. Points is the current contact set and Previous the
// last set the emitting detector observed.
type LossOfContact struct {
	Base
	Of       world.Object
	Points   world.ContactSet
	Previous world.ContactSet
}

// NewLossOfContact creates a loss-of-contact event for the tracked object.
func NewLossOfContact(of world.Object, points, previous world.ContactSet, opts ...RebaseOption) LossOfContact {
	return LossOfContact{Base: NewBase(KindLossOfContact, opts...), Of: of, Points: points, Previous: previous}
}

// RemovedObjects returns the objects that were touched before but are
// not any more.
func (e LossOfContact) RemovedObjects() []world.Object {
	return e.Points.RemovedObjects(e.Previous)
}

// RemovedObjectNames returns the display names of the removed objects.
func (e LossOfContact) RemovedObjectNames() []string {
	removed := e.RemovedObjects()
	names := make([]string, len(removed))
	for i, o := range removed {
		names[i] = o.Name
	}
	return names
}

func (e LossOfContact) String() string {
	return fmt.Sprintf("Loss of contact %s: [%s]", e.Of.Name, strings.Join(e.RemovedObjectNames(), ", "))
}
