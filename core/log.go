package segmentation

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jinzhu/copier"
	"github.com/robosemantics/episode-segmenter/core/events"
)

// Entry pairs a recorded event with the source that produced it, in
// global emission order.
type Entry struct {
	Source Source
	Event  events.Event
}

// Log is the shared event store. It keeps an append-only timeline per
// source (a durable history read with latest-value semantics) and a FIFO
// drain queue over all sources (a one-shot feed for the orchestrator).
// Every recorded event lands in both; draining never touches the
// timelines. A single mutex guards all mutation, so many detector
// goroutines and one consumer can use it concurrently.
type Log struct {
	mu        sync.Mutex
	timelines map[Source][]events.Event
	queue     []Entry
}

func NewLog() *Log {
	return &Log{timelines: make(map[Source][]events.Event)}
}

// Record appends the event to the source's timeline, creating it if
// absent, and enqueues it on the drain queue exactly once.
func (l *Log) Record(source Source, event events.Event) {
	if l == nil || event == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.timelines[source] = append(l.timelines[source], event)
	l.queue = append(l.queue, Entry{Source: source, Event: event})
}

// Latest returns the most recently recorded event for the source, or
// false if it has none yet.
func (l *Log) Latest(source Source) (events.Event, bool) {
	if l == nil {
		return nil, false
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	timeline := l.timelines[source]
	if len(timeline) == 0 {
		return nil, false
	}
	return timeline[len(timeline)-1], true
}

// LatestSince returns the most recent event for the source whose
// timestamp is at or after t. Filtering is by the event's own timestamp,
// not arrival order: a relevant event may be recorded slightly out of
// order relative to its capture time.
func (l *Log) LatestSince(source Source, t time.Time) (events.Event, bool) {
	if l == nil {
		return nil, false
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	timeline := l.timelines[source]
	for i := len(timeline) - 1; i >= 0; i-- {
		if !timeline[i].Timestamp().Before(t) {
			return timeline[i], true
		}
	}
	return nil, false
}

// DrainNext removes and returns the oldest undrained entry. It never
// blocks; false means nothing is pending.
func (l *Log) DrainNext() (Entry, bool) {
	if l == nil {
		return Entry{}, false
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return Entry{}, false
	}
	entry := l.queue[0]
	l.queue = l.queue[1:]
	return entry, true
}

// Pending returns the number of undrained entries.
func (l *Log) Pending() int {
	if l == nil {
		return 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Snapshot returns a consistent point-in-time copy of all timelines.
func (l *Log) Snapshot() map[Source][]events.Event {
	if l == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	snapshot := make(map[Source][]events.Event, len(l.timelines))
	if err := copier.Copy(&snapshot, l.timelines); err != nil {
		// Events are immutable once recorded, so a per-source slice
		// copy is still a consistent snapshot.
		for source, timeline := range l.timelines {
			snapshot[source] = append([]events.Event(nil), timeline...)
		}
	}
	return snapshot
}

// String renders every timeline in source order, one event per line.
func (l *Log) String() string {
	snapshot := l.Snapshot()
	sources := make([]string, 0, len(snapshot))
	for source := range snapshot {
		sources = append(sources, string(source))
	}
	sort.Strings(sources)

	var b strings.Builder
	for _, source := range sources {
		for _, event := range snapshot[Source(source)] {
			fmt.Fprintf(&b, "%s: %v\n", source, event)
		}
	}
	return b.String()
}
