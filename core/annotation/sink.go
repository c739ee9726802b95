// Package annotation is the optional side channel that receives
// finalized segmentation events for display. It is not required for
// correctness: a slow or absent viewer must never block detection.
package annotation

import (
	"time"

	"github.com/google/uuid"
	"github.com/robosemantics/episode-segmenter/core/events"
	"github.com/robosemantics/episode-segmenter/core/world"
)

// Sink receives finalized events as the orchestrator drains them.
type Sink interface {
	Annotate(event events.Event)
	Flush()
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) Annotate(events.Event) {}
func (NopSink) Flush()                {}

// Envelope is the wire payload pushed to annotation viewers.
type Envelope struct {
	ID        string    `json:"id" jsonschema:"description=Unique id of this annotation"`
	Kind      string    `json:"kind" jsonschema:"description=Event kind,example=contact.gained"`
	Timestamp time.Time `json:"timestamp" jsonschema:"description=Detection time"`
	Summary   string    `json:"summary" jsonschema:"description=Human-readable one-line description"`
	Objects   []string  `json:"objects,omitempty" jsonschema:"description=Display names of the objects involved"`
}

// NewEnvelope flattens an event into its wire payload.
func NewEnvelope(event events.Event) Envelope {
	envelope := Envelope{
		ID:        uuid.NewString(),
		Kind:      string(event.Kind()),
		Timestamp: event.Timestamp(),
	}
	if s, ok := event.(interface{ String() string }); ok {
		envelope.Summary = s.String()
	}
	switch typed := event.(type) {
	case events.Contact:
		envelope.Objects = typed.ObjectNamesInContact()
	case events.LossOfContact:
		envelope.Objects = typed.RemovedObjectNames()
	case events.PickUp:
		envelope.Objects = objectNames(typed.Hand, typed.Object)
	}
	return envelope
}

func objectNames(objects ...world.Object) []string {
	names := make([]string, len(objects))
	for i, o := range objects {
		names[i] = o.Name
	}
	return names
}
