package segmentation

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robosemantics/episode-segmenter/core/events"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// defaultPollInterval is the pause between detector cycles. It is a CPU
// trade-off, not a correctness requirement.
const defaultPollInterval = 100 * time.Millisecond

// Detector is the strategy a Monitor polls: one evaluation of a
// domain-specific predicate against current state. A nil event with a
// nil error means "nothing detected this cycle".
type Detector interface {
	Source() Source
	Detect(ctx context.Context) (events.Event, error)
}

// runOnce is implemented by detectors that terminate themselves after a
// single evaluation cycle instead of waiting for an external stop.
type runOncer interface {
	RunOnce() bool
}

// Monitor owns one detector goroutine through its Created, Running and
// Stopped states.
// Stop is cooperative and takes effect at the next suspension point;
// Join blocks until the loop has exited. A detector error terminates
// only its own monitor.
type Monitor struct {
	log      *Log
	detector Detector
	interval time.Duration

	closeCh chan struct{}
	done    chan struct{}

	startOnce sync.Once
	endOnce   sync.Once

	started atomic.Bool
}

// MonitorOption configures a Monitor.
type MonitorOption func(*Monitor)

// WithPollInterval overrides the pause between detector cycles.
func WithPollInterval(interval time.Duration) MonitorOption {
	return func(m *Monitor) {
		if interval > 0 {
			m.interval = interval
		}
	}
}

// NewMonitor wraps a detector in an unstarted monitor recording into log.
func NewMonitor(log *Log, detector Detector, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		log:      log,
		detector: detector,
		interval: defaultPollInterval,
		closeCh:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Monitor) Source() Source {
	if m == nil || m.detector == nil {
		return ""
	}
	return m.detector.Source()
}

// Running reports whether the loop has started and not yet exited.
func (m *Monitor) Running() bool {
	if m == nil || !m.started.Load() {
		return false
	}
	select {
	case <-m.done:
		return false
	default:
		return true
	}
}

// Start launches the polling loop. It is a no-op after the first call.
func (m *Monitor) Start(ctx context.Context) (started bool) {
	if m == nil || m.detector == nil || m.isStopped() {
		return false
	}

	m.startOnce.Do(func() {
		started = true
		m.started.Store(true)

		runCtx, cancel := context.WithCancel(ctx)
		go func() {
			select {
			case <-m.closeCh:
			case <-runCtx.Done():
			}
			cancel()
		}()

		go m.loop(runCtx)
	})

	return started
}

func (m *Monitor) loop(ctx context.Context) {
	defer close(m.done)
	// Run-once detectors self-stop; closing here makes the stop state
	// observable to joiners either way.
	defer m.Stop()

	once := false
	if ro, ok := m.detector.(runOncer); ok {
		once = ro.RunOnce()
	}

	for {
		event, err := m.detector.Detect(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("detector failed",
				"source", string(m.Source()),
				"error", err,
			)
			m.recordFailure(ctx, err)
			return
		}
		if event != nil {
			m.log.Record(m.detector.Source(), event)
		}
		if once {
			return
		}
		select {
		case <-m.closeCh:
			return
		case <-ctx.Done():
			return
		case <-time.After(m.interval):
		}
	}
}

func (m *Monitor) recordFailure(ctx context.Context, err error) {
	_, span := tracer.Start(ctx, "detector failure")
	defer span.End()
	span.SetAttributes(attribute.String("detector.source", string(m.Source())))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// Stop requests cooperative termination. It never blocks.
func (m *Monitor) Stop() {
	if m == nil {
		return
	}
	m.endOnce.Do(func() { close(m.closeCh) })
}

// Join blocks until the loop has exited. Monitors that were never
// started join immediately.
func (m *Monitor) Join() {
	if m == nil {
		return
	}
	if m.started.Load() {
		<-m.done
	}
}

func (m *Monitor) isStopped() bool {
	select {
	case <-m.closeCh:
		return true
	default:
		return false
	}
}

// await polls cond at the given interval until it holds or ctx is
// cancelled. It is the single retry-poll primitive behind every
// cross-detector wait, so all blocking is bounded and stoppable.
func await(ctx context.Context, interval time.Duration, cond func() bool) bool {
	for {
		if cond() {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(interval):
		}
	}
}
