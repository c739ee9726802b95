package segmentation

import (
	"testing"
	"time"

	"github.com/robosemantics/episode-segmenter/core/events"
)

func TestLogDrainPreservesEmissionOrderAcrossSources(t *testing.T) {
	log := NewLog()
	log.Record("a", events.NewBase("test.first"))
	log.Record("b", events.NewBase("test.second"))
	log.Record("a", events.NewBase("test.third"))

	wantKinds := []events.Kind{"test.first", "test.second", "test.third"}
	for i, want := range wantKinds {
		entry, ok := log.DrainNext()
		if !ok {
			t.Fatalf("expected entry %d, queue was empty", i)
		}
		if entry.Event.Kind() != want {
			t.Fatalf("expected kind %q at position %d, got %q", want, i, entry.Event.Kind())
		}
	}
}

func TestLogDrainsExactlyOnce(t *testing.T) {
	log := NewLog()
	log.Record("a", events.NewBase("test.event"))

	if _, ok := log.DrainNext(); !ok {
		t.Fatalf("expected one pending entry")
	}
	if _, ok := log.DrainNext(); ok {
		t.Fatalf("expected the queue to be empty after draining")
	}
	if got := log.Pending(); got != 0 {
		t.Fatalf("expected no pending entries, got %d", got)
	}
	if _, ok := log.Latest("a"); !ok {
		t.Fatalf("expected the timeline to survive draining")
	}
}

func TestLogLatestReturnsMostRecent(t *testing.T) {
	log := NewLog()
	if _, ok := log.Latest("a"); ok {
		t.Fatalf("expected no event for an unknown source")
	}

	log.Record("a", events.NewBase("test.older"))
	log.Record("a", events.NewBase("test.newer"))

	event, ok := log.Latest("a")
	if !ok {
		t.Fatalf("expected an event for the source")
	}
	if event.Kind() != "test.newer" {
		t.Fatalf("expected the most recent event, got %q", event.Kind())
	}
}

func TestLogLatestSinceFiltersByEventTimestamp(t *testing.T) {
	log := NewLog()
	cutoff := time.Now()

	// Arrival order is the opposite of timestamp order: the relevant
	// event is recorded first, a stale one after it.
	log.Record("a", events.NewBase("test.recent", events.WithTimestamp(cutoff)))
	log.Record("a", events.NewBase("test.stale", events.WithTimestamp(cutoff.Add(-time.Second))))

	event, ok := log.LatestSince("a", cutoff)
	if !ok {
		t.Fatalf("expected an event at or after the cutoff")
	}
	if event.Kind() != "test.recent" {
		t.Fatalf("expected the recent event, got %q", event.Kind())
	}

	if _, ok := log.LatestSince("a", cutoff.Add(time.Second)); ok {
		t.Fatalf("expected no event after the last timestamp")
	}
}

func TestLogLatestSinceIncludesExactTimestamp(t *testing.T) {
	log := NewLog()
	stamp := time.Now()
	log.Record("a", events.NewBase("test.event", events.WithTimestamp(stamp)))

	if _, ok := log.LatestSince("a", stamp); !ok {
		t.Fatalf("expected an event stamped exactly at the cutoff to match")
	}
}

func TestLogSnapshotIsDetached(t *testing.T) {
	log := NewLog()
	log.Record("a", events.NewBase("test.event"))

	snapshot := log.Snapshot()
	log.Record("a", events.NewBase("test.later"))

	if got := len(snapshot["a"]); got != 1 {
		t.Fatalf("expected the snapshot to stay at 1 event, got %d", got)
	}
	if got := len(log.Snapshot()["a"]); got != 2 {
		t.Fatalf("expected the log to hold 2 events, got %d", got)
	}
}

func TestLogNilReceiversAreSafe(t *testing.T) {
	var log *Log
	log.Record("a", events.NewBase("test.event"))
	if _, ok := log.Latest("a"); ok {
		t.Fatalf("expected no event from a nil log")
	}
	if _, ok := log.DrainNext(); ok {
		t.Fatalf("expected no entry from a nil log")
	}
	if got := log.Pending(); got != 0 {
		t.Fatalf("expected no pending entries from a nil log, got %d", got)
	}
}

func TestLogIgnoresNilEvents(t *testing.T) {
	log := NewLog()
	log.Record("a", nil)
	if got := log.Pending(); got != 0 {
		t.Fatalf("expected nil events to be ignored, got %d pending", got)
	}
}
