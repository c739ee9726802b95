package segmentation

import (
	"context"
	"fmt"

	"github.com/robosemantics/episode-segmenter/core/events"
	"github.com/robosemantics/episode-segmenter/core/world"
	"github.com/robosemantics/episode-segmenter/internal/utils"
)

// defaultMaxCloseness is the surface gap, in metres, below which two
// objects count as touching.
const defaultMaxCloseness = 0.05

// contactPoller is the shared body of the contact and loss-of-contact
// detectors: query the scene, hand the current and previous contact set
// to a variant-specific trigger, then remember the current set. The
// previous set is updated every cycle whether or not an event fired, so
// consecutive no-op cycles never re-trigger on stale deltas.
type contactPoller struct {
	source      Source
	scene       world.Scene
	tracked     world.Object
	with        *world.Object
	maxDistance float64
	previous    world.ContactSet

	trigger func(current, previous world.ContactSet) events.Event
}

// ContactOption configures a contact or loss-of-contact detector.
type ContactOption func(*contactPoller)

// WithObject restricts the contact query to one specific other object
// instead of the whole scene.
func WithObject(other world.Object) ContactOption {
	return func(p *contactPoller) {
		p.with = utils.Ptr(other)
	}
}

// WithMaxCloseness overrides the touch distance for the contact query.
func WithMaxCloseness(distance float64) ContactOption {
	return func(p *contactPoller) {
		if distance > 0 {
			p.maxDistance = distance
		}
	}
}

func (p *contactPoller) Source() Source {
	return p.source
}

func (p *contactPoller) Detect(ctx context.Context) (events.Event, error) {
	current, err := p.contactPoints()
	if err != nil {
		return nil, fmt.Errorf("contact query for %s: %w", p.tracked, err)
	}

	event := p.trigger(current, p.previous)
	p.previous = current

	return event, nil
}

func (p *contactPoller) contactPoints() (world.ContactSet, error) {
	if p.with != nil {
		return p.scene.ContactPointsWith(p.tracked, *p.with, p.maxDistance)
	}
	return p.scene.ContactPoints(p.tracked, p.maxDistance)
}

// NewContactDetector detects the tracked object gaining contact: it
// emits a Contact event whenever the current contact set holds an object
// the previous cycle's set did not.
func NewContactDetector(scene world.Scene, tracked world.Object, opts ...ContactOption) Detector {
	p := &contactPoller{
		source:      ContactSource(tracked),
		scene:       scene,
		tracked:     tracked,
		maxDistance: defaultMaxCloseness,
	}
	p.trigger = func(current, previous world.ContactSet) events.Event {
		if len(current.NewObjects(previous)) == 0 {
			return nil
		}
		return events.NewContact(tracked, current)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewLossOfContactDetector detects the tracked object losing contact: it
// emits a LossOfContact event whenever an object from the previous
// cycle's set is missing from the current one.
func NewLossOfContactDetector(scene world.Scene, tracked world.Object, opts ...ContactOption) Detector {
	p := &contactPoller{
		source:      LossOfContactSource(tracked),
		scene:       scene,
		tracked:     tracked,
		maxDistance: defaultMaxCloseness,
	}
	p.trigger = func(current, previous world.ContactSet) events.Event {
		if len(current.RemovedObjects(previous)) == 0 {
			return nil
		}
		return events.NewLossOfContact(tracked, current, previous)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}
