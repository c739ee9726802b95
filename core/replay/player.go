// Package replay drives a recorded episode through the scene: it is the
// single writer of object poses while detectors read them concurrently.
package replay

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robosemantics/episode-segmenter/core/world"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

var logger = otelslog.NewLogger("github.com/robosemantics/episode-segmenter/core/replay")

// Player is the motion-replay collaborator the segmenter consumes.
type Player interface {
	// Load resolves the episode's motion data. Must be called before Start.
	Load(ctx context.Context, episodeID string) error
	// Start begins replaying in the background.
	Start()
	// Stop requests cooperative termination of the replay.
	Stop()
	// Running reports whether the replay is still applying samples.
	Running() bool
	// Ready reports whether every entity has received an initial pose.
	Ready() bool
	// Join blocks until the replay goroutine has exited.
	Join()
}

// Sample is one recorded pose observation.
type Sample struct {
	Entity string
	Stamp  float64
	Pose   world.Pose
}

// SampleSource supplies the recorded motion data for an episode, in
// stamp order.
type SampleSource interface {
	Samples(ctx context.Context, episodeID string) ([]Sample, error)
}

// MemorySource is a SampleSource over an in-memory recording, keyed by
// episode id.
type MemorySource map[string][]Sample

func (m MemorySource) Samples(_ context.Context, episodeID string) ([]Sample, error) {
	samples, ok := m[episodeID]
	if !ok {
		return nil, fmt.Errorf("unknown episode %q", episodeID)
	}
	return samples, nil
}

// maxSampleGap caps the inter-sample sleep so recording gaps do not
// stall the replay.
const maxSampleGap = time.Second

// RecordedPlayer replays timestamped pose samples into a kinematic
// scene. Ready flips once every distinct entity in the episode has
// received a pose; Running flips off after the last sample.
type RecordedPlayer struct {
	scene    *world.KinematicScene
	source   SampleSource
	realTime bool

	samples []Sample

	ready   atomic.Bool
	running atomic.Bool

	closeCh chan struct{}
	done    chan struct{}

	startOnce sync.Once
	endOnce   sync.Once
	started   atomic.Bool
}

// PlayerOption configures a RecordedPlayer.
type PlayerOption func(*RecordedPlayer)

// WithRealTime makes the player sleep between samples according to their
// stamps; without it samples are applied back to back.
func WithRealTime() PlayerOption {
	return func(p *RecordedPlayer) {
		p.realTime = true
	}
}

// NewRecordedPlayer creates a player writing into scene from source.
func NewRecordedPlayer(scene *world.KinematicScene, source SampleSource, opts ...PlayerOption) *RecordedPlayer {
	p := &RecordedPlayer{
		scene:   scene,
		source:  source,
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Load fetches and orders the episode's samples.
func (p *RecordedPlayer) Load(ctx context.Context, episodeID string) error {
	samples, err := p.source.Samples(ctx, episodeID)
	if err != nil {
		return fmt.Errorf("load episode %q: %w", episodeID, err)
	}
	if len(samples) == 0 {
		return fmt.Errorf("episode %q has no motion samples", episodeID)
	}
	sort.SliceStable(samples, func(i, j int) bool { return samples[i].Stamp < samples[j].Stamp })
	p.samples = samples
	return nil
}

func (p *RecordedPlayer) Start() {
	if p == nil || len(p.samples) == 0 {
		return
	}

	p.startOnce.Do(func() {
		p.started.Store(true)
		p.running.Store(true)
		go p.replay()
	})
}

func (p *RecordedPlayer) replay() {
	defer close(p.done)
	defer p.running.Store(false)

	entities := make(map[string]bool)
	for _, sample := range p.samples {
		entities[sample.Entity] = true
	}
	pending := len(entities)
	moved := make(map[string]bool, pending)

	logger.Debug("replay started", "samples", len(p.samples), "entities", pending)

	prevStamp := 0.0
	for _, sample := range p.samples {
		if prevStamp > 0 && p.realTime {
			gap := time.Duration((sample.Stamp - prevStamp) * float64(time.Second))
			if gap > maxSampleGap {
				gap = maxSampleGap
			}
			if gap > 0 {
				select {
				case <-p.closeCh:
					return
				case <-time.After(gap):
				}
			}
		} else if p.isStopped() {
			return
		}
		prevStamp = sample.Stamp

		p.scene.SetPose(sample.Entity, sample.Pose)

		if !p.ready.Load() && !moved[sample.Entity] {
			moved[sample.Entity] = true
			if len(moved) == pending {
				p.ready.Store(true)
				logger.Debug("replay environment initialized")
			}
		}
	}
}

// Stop requests cooperative termination; the replay exits at the next
// inter-sample pause.
func (p *RecordedPlayer) Stop() {
	if p == nil {
		return
	}
	p.endOnce.Do(func() { close(p.closeCh) })
}

func (p *RecordedPlayer) Running() bool {
	return p != nil && p.running.Load()
}

func (p *RecordedPlayer) Ready() bool {
	return p != nil && p.ready.Load()
}

// Join blocks until the replay goroutine has exited. Players that were
// never started join immediately.
func (p *RecordedPlayer) Join() {
	if p == nil {
		return
	}
	if p.started.Load() {
		<-p.done
	}
}

func (p *RecordedPlayer) isStopped() bool {
	select {
	case <-p.closeCh:
		return true
	default:
		return false
	}
}
