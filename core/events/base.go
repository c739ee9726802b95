package events

import "time"

type Kind string

type Event interface {
	Kind() Kind
	Timestamp() time.Time
}

type Base struct {
	kind      Kind
	timestamp time.Time
}

func NewBase(kind Kind, opts ...RebaseOption) Base {
	base := Base{kind: kind, timestamp: time.Now()}
	for _, opt := range opts {
		opt(&base)
	}
	return base
}

func (b Base) Kind() Kind {
	return b.kind
}

func (b Base) Timestamp() time.Time {
	return b.timestamp
}

type RebaseOption func(*Base)

// WithTimestamp overrides the detection timestamp, used when the event
// is stamped with an observation time rather than the recording time.
func WithTimestamp(t time.Time) RebaseOption {
	return func(b *Base) {
		b.timestamp = t
	}
}
