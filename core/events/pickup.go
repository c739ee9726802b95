package events

import (
	"fmt"
	"time"

	"github.com/robosemantics/episode-segmenter/core/world"
)

// KindPickUp identifies a confirmed pick-up manipulation.
const KindPickUp Kind = "manipulation.pick_up"

// PickUp reports that Hand lifted Object clear of a supporting surface.
// The base timestamp marks the start of the manipulation (the initial
// hand contact); End is set exactly once by the owning detector when the
// lift is confirmed, before the event is recorded.
type PickUp struct {
	Base
	Hand   world.Object
	Object world.Object
	End    time.Time
}

// NewPickUp creates an open pick-up event starting at the given initial
// contact time.
func NewPickUp(hand, object world.Object, start time.Time) PickUp {
	return PickUp{Base: NewBase(KindPickUp, WithTimestamp(start)), Hand: hand, Object: object}
}

// Finish closes the event at the current time. It is a no-op if the
// event is already finished.
func (e *PickUp) Finish() {
	if e.End.IsZero() {
		e.End = time.Now()
	}
}

// Duration returns End − start, or false while the event is still open.
func (e PickUp) Duration() (time.Duration, bool) {
	if e.End.IsZero() {
		return 0, false
	}
	return e.End.Sub(e.Timestamp()), true
}

func (e PickUp) String() string {
	return fmt.Sprintf("Pick up: hand %s, object %s, start %s", e.Hand.Name, e.Object.Name, e.Timestamp().Format(time.RFC3339Nano))
}
