package segmentation

import (
	"strconv"

	"github.com/robosemantics/episode-segmenter/core/world"
)

// Source is the logical identity of an event-producing detector: the
// detector kind plus the tracked object's id. It keys the event log's
// per-source timelines.
type Source string

const (
	contactPrefix       = "contact:"
	lossOfContactPrefix = "loss_contact:"
	pickUpPrefix        = "pick_up:"
)

// ContactSource identifies the contact detector tracking obj.
func ContactSource(obj world.Object) Source {
	return Source(contactPrefix + strconv.FormatInt(obj.ID, 10))
}

// LossOfContactSource identifies the loss-of-contact detector tracking obj.
func LossOfContactSource(obj world.Object) Source {
	return Source(lossOfContactPrefix + strconv.FormatInt(obj.ID, 10))
}

// PickUpSource identifies the pick-up detector tracking obj.
func PickUpSource(obj world.Object) Source {
	return Source(pickUpPrefix + strconv.FormatInt(obj.ID, 10))
}
