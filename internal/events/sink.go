package events

import (
	"context"
	"log"
	"time"
)

// Sink receives lifecycle events. Implementations must treat delivery as
// best effort; the booking ledger is authoritative regardless of whether an
// event reaches its destination.
type Sink interface {
	Publish(ctx context.Context, ev Envelope)
}

// Dispatcher fans one event out to several sinks without blocking the
// caller. Each delivery runs in its own goroutine under a short deadline.
type Dispatcher struct {
	sinks   []Sink
	timeout time.Duration
}

func NewDispatcher(timeout time.Duration, sinks ...Sink) *Dispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{sinks: sinks, timeout: timeout}
}

func (d *Dispatcher) Publish(_ context.Context, ev Envelope) {
	for _, s := range d.sinks {
		go func(s Sink) {
			ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
			defer cancel()
			s.Publish(ctx, ev)
		}(s)
	}
}

// LogSink writes every event to the process log. Wired as the always-on
// delivery target so transitions remain observable without external channels.
type LogSink struct{}

func (LogSink) Publish(_ context.Context, ev Envelope) {
	log.Printf("event %s: booking %s (%s)", ev.EventType, ev.BookingID, ev.EventID)
}
