package monitor

import (
	"context"
	"sync"

	"github.com/oshokin/lidar-alarm/internal/domain/alarm"
)

// Sink consumes the state produced by every evaluation cycle.
type Sink interface {
	Publish(ctx context.Context, state *alarm.State) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, state *alarm.State) error

// Publish calls f.
func (f SinkFunc) Publish(ctx context.Context, state *alarm.State) error {
	return f(ctx, state)
}

// transitionSink forwards a state only when it differs from the previous one forwarded.
type transitionSink struct {
	next Sink

	mu   sync.Mutex
	last *alarm.State
}

// Transitions wraps next so it only sees alarm transitions.
//
//nolint:ireturn // Decorators return the interface they wrap.
func Transitions(next Sink) Sink {
	return &transitionSink{next: next}
}

// Publish forwards state if the alarm or its triggering sector changed.
func (t *transitionSink) Publish(ctx context.Context, state *alarm.State) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !state.Changed(t.last) {
		return nil
	}

	if err := t.next.Publish(ctx, state); err != nil {
		return err
	}

	t.last = state.Clone()

	return nil
}
