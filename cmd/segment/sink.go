package main

import (
	"fmt"
	"io"

	"github.com/robosemantics/episode-segmenter/core/annotation"
	"github.com/robosemantics/episode-segmenter/core/events"
)

// printSink writes one line per event, for plain (non-TUI) runs.
type printSink struct {
	w io.Writer
}

func (p printSink) Annotate(event events.Event) {
	envelope := annotation.NewEnvelope(event)
	fmt.Fprintf(p.w, "%s  %-22s %s\n",
		envelope.Timestamp.Format("15:04:05.000"),
		envelope.Kind,
		envelope.Summary,
	)
}

func (p printSink) Flush() {}

// chanSink feeds envelopes to the TUI. Annotate never blocks: the TUI
// falling behind drops envelopes rather than stalling detection.
type chanSink struct {
	ch chan annotation.Envelope
}

func newChanSink() *chanSink {
	return &chanSink{ch: make(chan annotation.Envelope, 256)}
}

func (c *chanSink) Annotate(event events.Event) {
	select {
	case c.ch <- annotation.NewEnvelope(event):
	default:
	}
}

// Flush closes the feed; it runs after the last Annotate.
func (c *chanSink) Flush() {
	close(c.ch)
}

// multiSink fans each event out to every configured sink.
type multiSink []annotation.Sink

func (m multiSink) Annotate(event events.Event) {
	for _, sink := range m {
		sink.Annotate(event)
	}
}

func (m multiSink) Flush() {
	for _, sink := range m {
		sink.Flush()
	}
}
