package segmentation

import (
	"time"

	"github.com/robosemantics/episode-segmenter/core/annotation"
)

// Option configures a Segmenter.
type Option func(*Segmenter)

// WithSink wires the optional annotation side channel that receives
// drained events for display.
func WithSink(sink annotation.Sink) Option {
	return func(s *Segmenter) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithLog injects a pre-populated event log, mainly for tests.
func WithLog(log *Log) Option {
	return func(s *Segmenter) {
		if log != nil {
			s.log = log
		}
	}
}

// WithHandPattern overrides the case-insensitive substring used to
// recognise hand objects by display name.
func WithHandPattern(pattern string) Option {
	return func(s *Segmenter) {
		if pattern != "" {
			s.handPattern = pattern
		}
	}
}

// WithAvoidNames replaces the scenery name substrings excluded from
// detector spawning.
func WithAvoidNames(names ...string) Option {
	return func(s *Segmenter) {
		s.avoidNames = names
	}
}

// WithDetectorInterval overrides the poll cadence of spawned detectors.
func WithDetectorInterval(interval time.Duration) Option {
	return func(s *Segmenter) {
		if interval > 0 {
			s.pollInterval = interval
		}
	}
}

// WithIdleInterval overrides the pause of the drain loop when the queue
// is empty.
func WithIdleInterval(interval time.Duration) Option {
	return func(s *Segmenter) {
		if interval > 0 {
			s.idleInterval = interval
		}
	}
}

// WithPickUpRetryInterval overrides the pick-up detector's internal
// retry pacing.
func WithPickUpRetryInterval(interval time.Duration) Option {
	return func(s *Segmenter) {
		if interval > 0 {
			s.retryInterval = interval
		}
	}
}

// WithContactDistance overrides the touch distance passed to contact
// queries.
func WithContactDistance(distance float64) Option {
	return func(s *Segmenter) {
		if distance > 0 {
			s.maxDistance = distance
		}
	}
}
