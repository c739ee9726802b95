package segmentation

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/robosemantics/episode-segmenter/core/events"
	"github.com/robosemantics/episode-segmenter/core/world"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// defaultRetryInterval paces the pick-up detector's internal waits on
	// data other detectors have not produced yet.
	defaultRetryInterval = 10 * time.Millisecond

	// defaultSurfaceAngle is the largest angle between a contact normal
	// and the upward direction for the contact to count as a supporting
	// surface.
	defaultSurfaceAngle = math.Pi / 4

	// Displacement thresholds for the secondary did-it-move check.
	defaultTranslationThreshold = 0.08
	defaultRotationThreshold    = 0.4
)

// oppositeGravity is the upward direction the supporting-surface check
// compares contact normals against.
var oppositeGravity = r3.Vec{Z: 9.81}

// PickUpDetector infers that a hand picked up the tracked object. It
// runs once: a single multi-phase evaluation over the contact and
// loss-of-contact history of the object, ending in either a PickUp event
// or a detection failure. The heuristic is indirect: it never inspects
// the object's trajectory, only whether something other than the hand
// that the object rested on disappears from contact at a favourable
// angle.
type PickUpDetector struct {
	log      *Log
	handLink world.Link
	objLink  world.Link
	hand     world.Object
	object   world.Object

	retryInterval        time.Duration
	surfaceAngle         float64
	translationThreshold float64
	rotationThreshold    float64
}

// PickUpOption configures a PickUpDetector.
type PickUpOption func(*PickUpDetector)

// WithRetryInterval overrides the internal retry pacing.
func WithRetryInterval(interval time.Duration) PickUpOption {
	return func(d *PickUpDetector) {
		if interval > 0 {
			d.retryInterval = interval
		}
	}
}

// WithDisplacementThresholds overrides the translation and rotation
// thresholds of the secondary displacement check.
func WithDisplacementThresholds(translation, rotation float64) PickUpOption {
	return func(d *PickUpDetector) {
		d.translationThreshold = translation
		d.rotationThreshold = rotation
	}
}

// NewPickUpDetector watches the hand/object link pair.
func NewPickUpDetector(log *Log, handLink, objectLink world.Link, opts ...PickUpOption) *PickUpDetector {
	d := &PickUpDetector{
		log:                  log,
		handLink:             handLink,
		objLink:              objectLink,
		hand:                 handLink.Object,
		object:               objectLink.Object,
		retryInterval:        defaultRetryInterval,
		surfaceAngle:         defaultSurfaceAngle,
		translationThreshold: defaultTranslationThreshold,
		rotationThreshold:    defaultRotationThreshold,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *PickUpDetector) Source() Source {
	return PickUpSource(d.object)
}

// RunOnce marks the detector as self-terminating after one evaluation.
func (d *PickUpDetector) RunOnce() bool {
	return true
}

// Detect runs the pick-up state machine:
//
//  1. Await the object's first recorded contact. If the hand is not part
//     of it, the manipulation did not start with a grasp; fail.
//  2. Take that event's timestamp as the tentative start and its contact
//     set as the baseline.
//  3. Await a loss-of-contact for the object stamped at or after the
//     start, and compute which baseline objects disappeared.
//  4. Nothing disappeared: transient cycle, retry. The hand disappeared:
//     the object was set back down; fail. Otherwise, if any disappeared
//     object's baseline contact normals point close enough to upward, it
//     was a supporting surface and the object is lifted; succeed.
//
// Every wait observes ctx, so an external stop always terminates the
// evaluation.
func (d *PickUpDetector) Detect(ctx context.Context) (events.Event, error) {
	initial, ok := d.awaitInitialContact(ctx)
	if !ok {
		return nil, ctx.Err()
	}

	if !initial.Points.Contains(d.hand) {
		logger.Debug("first contact was not with the hand",
			"object", d.object.Name,
			"hand", d.hand.Name,
		)
		return nil, nil
	}

	pickUp := events.NewPickUp(d.hand, d.object, initial.Timestamp())
	start := pickUp.Timestamp()
	baseline := initial.Points

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(d.retryInterval):
		}

		loss, ok := d.awaitLossOfContact(ctx, start)
		if !ok {
			return nil, ctx.Err()
		}

		removed := loss.Points.RemovedObjects(baseline)
		if len(removed) == 0 {
			continue
		}
		if containsObject(removed, d.hand) {
			logger.Debug("hand lost contact before lift-off",
				"object", d.object.Name,
				"hand", d.hand.Name,
			)
			return nil, nil
		}
		if d.supportingSurfaceAmong(removed, baseline) {
			pickUp.Finish()
			logger.Debug("object picked up",
				"object", d.object.Name,
				"hand", d.hand.Name,
			)
			return pickUp, nil
		}
	}
}

// awaitInitialContact blocks until the object's contact timeline has at
// least one event.
func (d *PickUpDetector) awaitInitialContact(ctx context.Context) (events.Contact, bool) {
	var initial events.Contact
	found := await(ctx, d.retryInterval, func() bool {
		event, ok := d.log.Latest(ContactSource(d.object))
		if !ok {
			return false
		}
		contact, ok := event.(events.Contact)
		if !ok {
			return false
		}
		initial = contact
		return true
	})
	return initial, found
}

// awaitLossOfContact blocks until the object's loss-of-contact timeline
// has an event stamped at or after the tentative start.
func (d *PickUpDetector) awaitLossOfContact(ctx context.Context, after time.Time) (events.LossOfContact, bool) {
	var loss events.LossOfContact
	found := await(ctx, d.retryInterval, func() bool {
		event, ok := d.log.LatestSince(LossOfContactSource(d.object), after)
		if !ok {
			return false
		}
		lossEvent, ok := event.(events.LossOfContact)
		if !ok {
			return false
		}
		loss = lossEvent
		return true
	})
	return loss, found
}

// supportingSurfaceAmong reports whether any removed object qualifies as
// a supporting surface. The normals inspected are the ones captured in
// the baseline set at the moment of initial contact, not at the moment
// of loss; surface orientation is assumed stable over the manipulation.
func (d *PickUpDetector) supportingSurfaceAmong(removed []world.Object, baseline world.ContactSet) bool {
	smallest := d.surfaceAngle
	found := false
	for _, obj := range removed {
		for _, normal := range baseline.NormalsOf(obj) {
			if angle := world.AngleBetween(normal, oppositeGravity); angle < smallest {
				smallest = angle
				found = true
			}
		}
	}
	return found
}

func containsObject(objects []world.Object, obj world.Object) bool {
	for _, o := range objects {
		if o.ID == obj.ID {
			return true
		}
	}
	return false
}

// HandToObjectTransform returns the tracked object's transform relative
// to the hand link, for use with the displacement check.
func (d *PickUpDetector) HandToObjectTransform(scene world.Scene) (world.Transform, error) {
	transform, err := scene.LinkTransform(d.handLink, d.objLink)
	if err != nil {
		return world.Transform{}, fmt.Errorf("hand-to-object transform: %w", err)
	}
	return transform, nil
}

// DisplacementWithin reports whether the object moved less than the
// configured translation and rotation thresholds between two sampled
// transforms. It is a secondary movement signal, not part of the
// contact-based state machine.
func (d *PickUpDetector) DisplacementWithin(t1, t2 world.Transform) bool {
	return TranslationWithin(t1.Translation, t2.Translation, d.translationThreshold) &&
		RotationWithin(t1.Rotation, t2.Rotation, d.rotationThreshold)
}
