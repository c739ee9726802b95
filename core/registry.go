package segmentation

import (
	"context"
	"sort"
	"sync"
)

// registry tracks every spawned monitor by its source identity. It gives
// the segmenter idempotent ensure-started semantics instead of ad hoc
// membership checks, and a stop-all-then-join-all shutdown so stop
// latency is not serialized across detectors.
type registry struct {
	mu       sync.Mutex
	monitors map[Source]*Monitor
}

func newRegistry() *registry {
	return &registry{monitors: make(map[Source]*Monitor)}
}

// ensure returns the monitor registered under source, building and
// starting one if none exists. The second result reports whether a new
// monitor was started.
func (r *registry) ensure(ctx context.Context, source Source, build func() *Monitor) (*Monitor, bool) {
	r.mu.Lock()
	if existing, ok := r.monitors[source]; ok {
		r.mu.Unlock()
		return existing, false
	}
	monitor := build()
	r.monitors[source] = monitor
	r.mu.Unlock()

	monitor.Start(ctx)
	return monitor, true
}

// has reports whether a monitor is registered under source, running or
// already stopped. Stopped monitors stay registered: a finished pick-up
// must not be re-spawned.
func (r *registry) has(source Source) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.monitors[source]
	return ok
}

// sources returns the registered detector identities in sorted order.
func (r *registry) sources() []Source {
	r.mu.Lock()
	defer r.mu.Unlock()
	sources := make([]Source, 0, len(r.monitors))
	for source := range r.monitors {
		sources = append(sources, source)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })
	return sources
}

func (r *registry) snapshot() []*Monitor {
	r.mu.Lock()
	defer r.mu.Unlock()
	monitors := make([]*Monitor, 0, len(r.monitors))
	for _, monitor := range r.monitors {
		monitors = append(monitors, monitor)
	}
	return monitors
}

// stopAll signals every monitor before any join, so shutdown latency is
// one poll interval, not one per detector.
func (r *registry) stopAll() {
	for _, monitor := range r.snapshot() {
		monitor.Stop()
	}
}

// joinAll blocks until every monitor's loop has exited.
func (r *registry) joinAll() {
	for _, monitor := range r.snapshot() {
		monitor.Join()
	}
}
