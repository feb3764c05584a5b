package checker

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/lidar-alarm/internal/domain/alarm"
)

// TestFormatMeters checks finite and non-finite ranges.
func TestFormatMeters(t *testing.T) {
	t.Parallel()

	require.Equal(t, "0.400m", formatMeters(0.4))
	require.Equal(t, "+Infm", formatMeters(math.Inf(1)))
	require.Equal(t, "NaNm", formatMeters(math.NaN()))
}

// TestLogState_DoesNotPanic exercises the three log shapes.
func TestLogState_DoesNotPanic(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	require.NotPanics(t, func() {
		logState(ctx, new(alarm.State))
		logState(ctx, &alarm.State{Sequence: 1, ForwardDistance: 2})
		logState(ctx, &alarm.State{
			Timestamp:        time.Unix(1, 0),
			Sequence:         2,
			Active:           true,
			ForwardDistance:  0.4,
			TriggeringSector: "front",
			TriggeringRange:  0.4,
		})
	})
}

// TestRun_MissingConfig verifies configuration errors are reported before dialing.
func TestRun_MissingConfig(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), &Options{ConfigPath: t.TempDir() + "/missing.yaml"})
	require.ErrorContains(t, err, "load configuration")
}
