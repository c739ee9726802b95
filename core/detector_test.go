package segmentation

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/robosemantics/episode-segmenter/core/events"
)

type stubDetector struct {
	source Source
	detect func(ctx context.Context) (events.Event, error)
}

func (d *stubDetector) Source() Source {
	return d.source
}

func (d *stubDetector) Detect(ctx context.Context) (events.Event, error) {
	return d.detect(ctx)
}

type onceDetector struct {
	stubDetector
}

func (d *onceDetector) RunOnce() bool {
	return true
}

func joinWithin(t *testing.T, m *Monitor, timeout time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		m.Join()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for the monitor to stop")
	}
}

func TestMonitorRecordsDetectedEvents(t *testing.T) {
	log := NewLog()
	fired := atomic.Bool{}
	detector := &stubDetector{
		source: "test:1",
		detect: func(context.Context) (events.Event, error) {
			if fired.CompareAndSwap(false, true) {
				return events.NewBase("test.event"), nil
			}
			return nil, nil
		},
	}

	m := NewMonitor(log, detector, WithPollInterval(time.Millisecond))
	if !m.Start(context.Background()) {
		t.Fatalf("expected the first start to launch the monitor")
	}
	defer m.Stop()

	deadline := time.After(2 * time.Second)
	for {
		if _, ok := log.Latest("test:1"); ok {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for the event to be recorded")
		case <-time.After(time.Millisecond):
		}
	}

	m.Stop()
	joinWithin(t, m, 2*time.Second)
	if m.Running() {
		t.Fatalf("expected the monitor to report stopped after join")
	}
}

func TestMonitorStartIsOneShot(t *testing.T) {
	detector := &stubDetector{
		source: "test:1",
		detect: func(context.Context) (events.Event, error) { return nil, nil },
	}
	m := NewMonitor(NewLog(), detector, WithPollInterval(time.Millisecond))
	defer m.Stop()

	if !m.Start(context.Background()) {
		t.Fatalf("expected the first start to launch the monitor")
	}
	if m.Start(context.Background()) {
		t.Fatalf("expected the second start to be a no-op")
	}
}

func TestMonitorStartAfterStopIsNoop(t *testing.T) {
	detector := &stubDetector{
		source: "test:1",
		detect: func(context.Context) (events.Event, error) { return nil, nil },
	}
	m := NewMonitor(NewLog(), detector)
	m.Stop()

	if m.Start(context.Background()) {
		t.Fatalf("expected start after stop to be a no-op")
	}
	joinWithin(t, m, time.Second)
}

func TestMonitorErrorTerminatesLoop(t *testing.T) {
	detector := &stubDetector{
		source: "test:1",
		detect: func(context.Context) (events.Event, error) {
			return nil, errors.New("sensor offline")
		},
	}
	m := NewMonitor(NewLog(), detector, WithPollInterval(time.Millisecond))
	m.Start(context.Background())

	joinWithin(t, m, 2*time.Second)
}

func TestMonitorContextCancelStopsLoop(t *testing.T) {
	detector := &stubDetector{
		source: "test:1",
		detect: func(context.Context) (events.Event, error) { return nil, nil },
	}
	m := NewMonitor(NewLog(), detector, WithPollInterval(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	cancel()

	joinWithin(t, m, 2*time.Second)
}

func TestMonitorRunOnceSelfStops(t *testing.T) {
	log := NewLog()
	calls := atomic.Int32{}
	detector := &onceDetector{stubDetector{
		source: "test:1",
		detect: func(context.Context) (events.Event, error) {
			calls.Add(1)
			return events.NewBase("test.event"), nil
		},
	}}

	m := NewMonitor(log, detector, WithPollInterval(time.Millisecond))
	m.Start(context.Background())
	joinWithin(t, m, 2*time.Second)

	if got := calls.Load(); got != 1 {
		t.Fatalf("expected exactly one detection cycle, got %d", got)
	}
	if _, ok := log.Latest("test:1"); !ok {
		t.Fatalf("expected the single event to be recorded")
	}
}

func TestAwaitRespectsContext(t *testing.T) {
	if !await(context.Background(), time.Millisecond, func() bool { return true }) {
		t.Fatalf("expected await to succeed when the condition already holds")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if await(ctx, time.Millisecond, func() bool { return false }) {
		t.Fatalf("expected await to give up on a cancelled context")
	}
}
