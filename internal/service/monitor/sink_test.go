package monitor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/lidar-alarm/internal/domain/alarm"
	"github.com/oshokin/lidar-alarm/internal/domain/sector"
)

// TestTransitions forwards only states that switch the alarm or its sector.
func TestTransitions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	inner := new(recordingSink)
	sink := Transitions(inner)

	states := []*alarm.State{
		{Sequence: 1, ForwardDistance: 3},
		{Sequence: 2, ForwardDistance: 2},
		{Sequence: 3, Active: true, TriggeringSector: sector.Front, ForwardDistance: 0.5},
		{Sequence: 4, Active: true, TriggeringSector: sector.Front, ForwardDistance: 0.4},
		{Sequence: 5, Active: true, TriggeringSector: sector.Right45, ForwardDistance: 2},
		{Sequence: 6, ForwardDistance: 3},
	}

	for _, s := range states {
		require.NoError(t, sink.Publish(ctx, s))
	}

	var got []uint64
	for _, s := range inner.received() {
		got = append(got, s.Sequence)
	}

	require.Equal(t, []uint64{1, 3, 5, 6}, got)
}

// TestTransitions_RetriesAfterFailure keeps a transition pending until the inner sink accepts it.
func TestTransitions_RetriesAfterFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	inner := &recordingSink{err: errSinkDown}
	sink := Transitions(inner)

	active := &alarm.State{Sequence: 1, Active: true, TriggeringSector: sector.Front}
	require.ErrorIs(t, sink.Publish(ctx, active), errSinkDown)

	inner.err = nil

	active.Sequence = 2
	require.NoError(t, sink.Publish(ctx, active))
	require.Len(t, inner.received(), 2)
}

// TestSinkFunc adapts a plain function.
func TestSinkFunc(t *testing.T) {
	t.Parallel()

	var seen uint64

	f := SinkFunc(func(_ context.Context, s *alarm.State) error {
		seen = s.Sequence

		return nil
	})

	require.NoError(t, f.Publish(context.Background(), &alarm.State{Sequence: 9}))
	require.EqualValues(t, 9, seen)
}
