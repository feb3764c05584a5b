package journal

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/lidar-alarm/internal/domain/alarm"
	"github.com/oshokin/lidar-alarm/internal/domain/sector"
)

func openJournal(t *testing.T) *Journal {
	t.Helper()

	j, err := Open(context.Background(), filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, j.Close())
	})

	return j
}

// TestJournal_RecordAndRecent stores transitions and reads them back newest first.
func TestJournal_RecordAndRecent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	j := openJournal(t)

	base := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	tick := base

	j.now = func() time.Time {
		tick = tick.Add(time.Millisecond)

		return tick
	}

	detected := &alarm.State{
		Timestamp:        base,
		Sequence:         3,
		Active:           true,
		ForwardDistance:  2.9,
		TriggeringSector: sector.Left30,
		TriggeringRange:  0.4,
	}
	cleared := &alarm.State{
		Timestamp:       base.Add(time.Second),
		Sequence:        9,
		ForwardDistance: 3.1,
	}

	id, err := j.Record(ctx, detected)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)

	require.NoError(t, j.Publish(ctx, cleared))

	entries, err := j.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	require.EqualValues(t, 9, entries[0].State.Sequence)
	require.False(t, entries[0].State.Active)
	require.Empty(t, entries[0].State.TriggeringSector)
	require.True(t, cleared.Timestamp.Equal(entries[0].State.Timestamp))

	got := entries[1]
	require.Equal(t, id, got.ID)
	require.True(t, got.State.Active)
	require.Equal(t, sector.Left30, got.State.TriggeringSector)
	require.InDelta(t, 0.4, got.State.TriggeringRange, 1e-12)
	require.InDelta(t, 2.9, got.State.ForwardDistance, 1e-12)
	require.True(t, base.Add(time.Millisecond).Equal(got.RecordedAt))

	limited, err := j.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
}

// TestJournal_NaNDistance stores an unknown forward reading as NULL.
func TestJournal_NaNDistance(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	j := openJournal(t)

	_, err := j.Record(ctx, &alarm.State{Sequence: 1, ForwardDistance: math.NaN(), Timestamp: time.Now()})
	require.NoError(t, err)

	entries, err := j.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.True(t, math.IsNaN(entries[0].State.ForwardDistance))
}

// TestJournal_Reopen keeps entries across reopening the same file.
func TestJournal_Reopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(ctx, path)
	require.NoError(t, err)

	_, err = j.Record(ctx, &alarm.State{Sequence: 1, Active: true, TriggeringSector: sector.Front, Timestamp: time.Now()})
	require.NoError(t, err)
	require.NoError(t, j.Close())

	j, err = Open(ctx, path)
	require.NoError(t, err)

	defer func() {
		require.NoError(t, j.Close())
	}()

	entries, err := j.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, sector.Front, entries[0].State.TriggeringSector)
}
