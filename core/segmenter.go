package segmentation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robosemantics/episode-segmenter/core/annotation"
	"github.com/robosemantics/episode-segmenter/core/events"
	"github.com/robosemantics/episode-segmenter/core/replay"
	"github.com/robosemantics/episode-segmenter/core/world"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	// defaultIdleInterval is the drain loop's pause when the queue is
	// empty.
	defaultIdleInterval = 10 * time.Millisecond

	// defaultHandPattern recognises hand objects by display name.
	defaultHandPattern = "hand"
)

// defaultAvoidNames excludes static scenery from detector spawning.
var defaultAvoidNames = []string{"floor", "environment", "apartment"}

// Segmenter turns a replayed episode into a timeline of semantic events.
// It spawns contact detectors for every hand up front, then grows the
// detector population reactively: each drained contact event may reveal
// new objects to track and new hand/object pairs to watch for pick-ups.
//
// Run may be called at most once per Segmenter.
type Segmenter struct {
	scene  world.Scene
	player replay.Player
	log    *Log
	sink   annotation.Sink

	registry *registry

	pollInterval  time.Duration
	idleInterval  time.Duration
	retryInterval time.Duration
	maxDistance   float64
	handPattern   string
	avoidNames    []string

	closeOnce sync.Once
}

// NewSegmenter creates a segmenter over the scene the player writes
// into.
func NewSegmenter(scene world.Scene, player replay.Player, opts ...Option) *Segmenter {
	s := &Segmenter{
		scene:        scene,
		player:       player,
		log:          NewLog(),
		sink:         annotation.NopSink{},
		registry:     newRegistry(),
		pollInterval: defaultPollInterval,
		idleInterval: defaultIdleInterval,
		maxDistance:  defaultMaxCloseness,
		handPattern:  defaultHandPattern,
		avoidNames:   defaultAvoidNames,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run replays the episode and drives detection until the replay ends
// and every pending event has been drained. It returns once shutdown is
// complete; cancelling ctx interrupts the run at the next drain cycle.
func (s *Segmenter) Run(ctx context.Context, episodeID string) error {
	ctx, span := tracer.Start(ctx, "segmentation run")
	defer span.End()
	span.SetAttributes(
		attribute.String("segmentation.run_id", uuid.NewString()),
		attribute.String("segmentation.episode_id", episodeID),
	)
	defer s.shutdown()

	if err := s.player.Load(ctx, episodeID); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	s.player.Start()
	if !await(ctx, s.idleInterval, s.player.Ready) {
		return ctx.Err()
	}

	hands := s.handObjects()
	if len(hands) == 0 {
		err := fmt.Errorf("episode %q has no objects matching hand pattern %q", episodeID, s.handPattern)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	logger.Debug("segmentation started",
		"episode", episodeID,
		"hands", len(hands),
	)
	for _, hand := range hands {
		s.ensureContactPair(ctx, hand)
	}

	for s.player.Running() || s.log.Pending() > 0 {
		entry, ok := s.log.DrainNext()
		if !ok {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.idleInterval):
			}
			continue
		}

		s.sink.Annotate(entry.Event)
		if contact, ok := entry.Event.(events.Contact); ok {
			s.handleContact(ctx, contact)
		}
	}

	return ctx.Err()
}

// handleContact grows the detector population from one drained contact
// event: every newly seen non-scenery object gets its own contact pair,
// and every hand/non-hand pairing gets a pick-up watch.
func (s *Segmenter) handleContact(ctx context.Context, contact events.Contact) {
	for _, other := range contact.ObjectsInContact() {
		if s.avoided(other.Name) {
			continue
		}
		s.ensureContactPair(ctx, other)

		hand, object, ok := s.handObjectPair(contact.Of, other)
		if !ok {
			continue
		}
		s.ensurePickUp(ctx, hand, object)
	}
}

// ensureContactPair starts a contact and a loss-of-contact detector for
// the object unless they already exist.
func (s *Segmenter) ensureContactPair(ctx context.Context, obj world.Object) {
	s.registry.ensure(ctx, ContactSource(obj), func() *Monitor {
		detector := NewContactDetector(s.scene, obj, WithMaxCloseness(s.maxDistance))
		return NewMonitor(s.log, detector, WithPollInterval(s.pollInterval))
	})
	s.registry.ensure(ctx, LossOfContactSource(obj), func() *Monitor {
		detector := NewLossOfContactDetector(s.scene, obj, WithMaxCloseness(s.maxDistance))
		return NewMonitor(s.log, detector, WithPollInterval(s.pollInterval))
	})
}

// ensurePickUp starts a pick-up detector for the hand/object pair unless
// one is already registered or the object already has a recorded
// pick-up.
func (s *Segmenter) ensurePickUp(ctx context.Context, hand, object world.Object) {
	if _, recorded := s.log.Latest(PickUpSource(object)); recorded {
		return
	}

	var opts []PickUpOption
	if s.retryInterval > 0 {
		opts = append(opts, WithRetryInterval(s.retryInterval))
	}
	_, started := s.registry.ensure(ctx, PickUpSource(object), func() *Monitor {
		detector := NewPickUpDetector(s.log, hand.RootLink(), object.RootLink(), opts...)
		return NewMonitor(s.log, detector, WithPollInterval(s.pollInterval))
	})
	if started {
		logger.Debug("watching for pick up",
			"hand", hand.Name,
			"object", object.Name,
		)
	}
}

// shutdown stops the replay and every detector, then drains what they
// recorded on the way out. Idempotent; also runs via defer when Run
// fails early.
func (s *Segmenter) shutdown() {
	s.closeOnce.Do(func() {
		s.player.Stop()
		s.player.Join()
		s.registry.stopAll()
		s.registry.joinAll()

		for {
			entry, ok := s.log.DrainNext()
			if !ok {
				break
			}
			s.sink.Annotate(entry.Event)
		}
		s.sink.Flush()
	})
}

// Timeline returns a point-in-time copy of every source's event history.
func (s *Segmenter) Timeline() map[Source][]events.Event {
	return s.log.Snapshot()
}

// Detectors returns the identities of every detector spawned so far, in
// sorted order.
func (s *Segmenter) Detectors() []Source {
	return s.registry.sources()
}

func (s *Segmenter) handObjects() []world.Object {
	var hands []world.Object
	for _, obj := range s.scene.Objects() {
		if s.isHand(obj) {
			hands = append(hands, obj)
		}
	}
	return hands
}

func (s *Segmenter) isHand(obj world.Object) bool {
	return strings.Contains(strings.ToLower(obj.Name), strings.ToLower(s.handPattern))
}

func (s *Segmenter) avoided(name string) bool {
	lower := strings.ToLower(name)
	for _, avoid := range s.avoidNames {
		if strings.Contains(lower, strings.ToLower(avoid)) {
			return true
		}
	}
	return false
}

// handObjectPair orients two touching objects into a (hand, object)
// pair, or reports false when they are both hands or both objects.
func (s *Segmenter) handObjectPair(a, b world.Object) (hand, object world.Object, ok bool) {
	switch {
	case s.isHand(a) && !s.isHand(b):
		return a, b, true
	case s.isHand(b) && !s.isHand(a):
		return b, a, true
	default:
		return world.Object{}, world.Object{}, false
	}
}
