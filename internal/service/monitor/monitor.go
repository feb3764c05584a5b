package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/oshokin/lidar-alarm/internal/domain/alarm"
	"github.com/oshokin/lidar-alarm/internal/domain/scan"
	"github.com/oshokin/lidar-alarm/internal/domain/sector"
	"github.com/oshokin/lidar-alarm/internal/logger"
)

// Monitor evaluates scan frames against a sector table and publishes the result.
type Monitor struct {
	table    *sector.Table
	resolver *sector.Resolver
	policy   alarm.Policy
	sinks    []Sink
	now      func() time.Time

	// mu serializes evaluation cycles.
	mu sync.Mutex
	// current is the latest published state, nil before the first cycle.
	current atomic.Pointer[alarm.State]
	// pending holds at most one frame waiting for Run.
	pending chan *scan.Frame

	sequence  atomic.Uint64
	processed atomic.Uint64
	dropped   atomic.Uint64
	failed    atomic.Uint64
}

// Stats counts what happened to submitted frames.
type Stats struct {
	// Processed frames produced a new state.
	Processed uint64
	// Dropped frames were replaced by a newer frame before being processed.
	Dropped uint64
	// Failed frames were malformed or had an unusable geometry.
	Failed uint64
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithPolicy selects how out-of-calibration readings are compared.
func WithPolicy(p alarm.Policy) Option {
	return func(m *Monitor) {
		m.policy = p
	}
}

// WithSink adds a sink that receives every cycle's state.
func WithSink(s Sink) Option {
	return func(m *Monitor) {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
}

// WithClock overrides the time source used to stamp frames without a timestamp.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		if now != nil {
			m.now = now
		}
	}
}

// New creates a monitor for table. A nil table selects sector.DefaultTable.
func New(table *sector.Table, opts ...Option) *Monitor {
	if table == nil {
		table = sector.DefaultTable()
	}

	m := &Monitor{
		table:    table,
		resolver: sector.NewResolver(table),
		policy:   alarm.PolicyPassThrough,
		now:      time.Now,
		pending:  make(chan *scan.Frame, 1),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Process runs one evaluation cycle synchronously and returns the published state.
// On error nothing is published and the previous state stays current.
func (m *Monitor) Process(ctx context.Context, frame *scan.Frame) (*alarm.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := frame.Validate(); err != nil {
		m.failed.Inc()
		logger.WarnKV(ctx, "Scan frame rejected", "error", err)

		return nil, err
	}

	indices, err := m.resolver.Resolve(ctx, frame.Geometry())
	if err != nil {
		m.failed.Inc()

		return nil, err
	}

	state, err := alarm.Evaluate(
		frame.Ranges,
		indices,
		m.table,
		alarm.WithPolicy(m.policy),
		alarm.WithLimits(alarm.Limits{RangeMin: frame.RangeMin, RangeMax: frame.RangeMax}),
	)
	if err != nil {
		m.failed.Inc()
		logger.ErrorKV(ctx, "Sector evaluation failed", "error", err)

		return nil, fmt.Errorf("evaluate sectors: %w", err)
	}

	state.Sequence = m.sequence.Inc()

	state.Timestamp = frame.Timestamp
	if state.Timestamp.IsZero() {
		state.Timestamp = m.now()
	}

	published := &state
	previous := m.current.Swap(published)

	m.processed.Inc()
	logTransition(ctx, previous, published)

	for _, sink := range m.sinks {
		if err := sink.Publish(ctx, published.Clone()); err != nil {
			logger.ErrorKV(ctx, "Alarm sink failed", "error", err, "sequence", published.Sequence)
		}
	}

	return published.Clone(), nil
}

// Current returns the latest published state. Before the first cycle it is
// the zero state, whose Evaluated method returns false.
func (m *Monitor) Current() *alarm.State {
	if s := m.current.Load(); s != nil {
		return s.Clone()
	}

	return new(alarm.State)
}

// Submit queues frame for Run without blocking.
// A frame still waiting from an earlier Submit is dropped in favor of the new one.
func (m *Monitor) Submit(frame *scan.Frame) {
	for {
		select {
		case m.pending <- frame:
			return
		default:
		}

		select {
		case <-m.pending:
			m.dropped.Inc()
		default:
		}
	}
}

// Run processes submitted frames until ctx is canceled.
func (m *Monitor) Run(ctx context.Context) error {
	ctx = logger.WithName(ctx, "monitor")

	logger.InfoKV(ctx, "Sector monitor started", "sectors", m.table.Len(), "policy", string(m.policy))

	for {
		select {
		case <-ctx.Done():
			stats := m.Stats()
			logger.InfoKV(ctx, "Sector monitor stopped",
				"processed", stats.Processed, "dropped", stats.Dropped, "failed", stats.Failed)

			return nil
		case frame := <-m.pending:
			// Errors are logged by Process and the next frame is the recovery.
			_, _ = m.Process(ctx, frame) //nolint:errcheck // See above.
		}
	}
}

// Stats returns the frame counters.
func (m *Monitor) Stats() Stats {
	return Stats{
		Processed: m.processed.Load(),
		Dropped:   m.dropped.Load(),
		Failed:    m.failed.Load(),
	}
}

// Indices returns the sector indices of the current geometry, if one resolved.
func (m *Monitor) Indices() (sector.Indices, bool) {
	indices, _, ok := m.resolver.Cached()

	return indices, ok
}

// logTransition reports the alarm switching on, moving to another sector, or clearing.
func logTransition(ctx context.Context, previous, current *alarm.State) {
	logger.DebugKV(ctx, "Scan evaluated",
		"sequence", current.Sequence,
		"alarm", current.Active,
		"forward_distance", current.ForwardDistance)

	if !current.Changed(previous) {
		return
	}

	if current.Active {
		logger.WarnKV(ctx, "Obstacle detected",
			"sector", string(current.TriggeringSector),
			"range", current.TriggeringRange,
			"forward_distance", current.ForwardDistance)

		return
	}

	if previous != nil && previous.Active {
		logger.InfoKV(ctx, "Obstacle cleared", "forward_distance", current.ForwardDistance)
	}
}
