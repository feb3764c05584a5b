package server

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/lidar-alarm/internal/config"
	"github.com/oshokin/lidar-alarm/internal/domain/scan"
	"github.com/oshokin/lidar-alarm/internal/domain/sector"
)

// frame builds a 181-sample one-degree sweep over [-pi/2, pi/2] with
// every reading set to r, then applies overrides by index.
func frame(r float64, overrides map[int]float64) *scan.Frame {
	const samples = 181

	f := &scan.Frame{
		Timestamp:      time.Unix(1700000000, 0).UTC(),
		AngleMin:       -1.5707963267948966,
		AngleMax:       1.5707963267948966,
		AngleIncrement: 3.141592653589793 / (samples - 1),
		RangeMin:       0.05,
		RangeMax:       30,
		Ranges:         make([]float64, samples),
	}

	for i := range f.Ranges {
		f.Ranges[i] = r
	}

	for i, v := range overrides {
		f.Ranges[i] = v
	}

	return f
}

// TestResolveListenAddress covers overrides, port extraction, and failures.
func TestResolveListenAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		config   string
		override string
		want     string
		wantErr  bool
	}{
		{name: "override wins", config: "robot.local:7000", override: "127.0.0.1:9000", want: "127.0.0.1:9000"},
		{name: "port from config", config: "robot.local:7000", want: ":7000"},
		{name: "missing", wantErr: true},
		{name: "malformed", config: "robot.local", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := resolveListenAddress(tt.config, tt.override)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

// TestNewService_PersistsTransitions drives frames through the wired monitor
// and checks the snapshot and journal only see transitions.
func TestNewService_PersistsTransitions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	stateFile := filepath.Join(dir, "state.yaml")
	journalFile := filepath.Join(dir, "journal.db")

	settings := &config.Config{ServerAddress: "127.0.0.1:7000"}
	require.NoError(t, config.Validate(settings))

	svc, err := newService(ctx, settings, stateFile, journalFile)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, svc.close())
	})

	// Clear, clear, obstacle ahead, clear: three transitions.
	for _, f := range []*scan.Frame{
		frame(5, nil),
		frame(5, nil),
		frame(5, map[int]float64{90: 0.4}),
		frame(5, nil),
	} {
		_, err = svc.monitor.Process(ctx, f)
		require.NoError(t, err)
	}

	entries, err := svc.journal.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.False(t, entries[0].State.Active)
	require.True(t, entries[1].State.Active)
	require.Equal(t, sector.Front, entries[1].State.TriggeringSector)

	snapshot, err := svc.repo.Load(ctx)
	require.NoError(t, err)
	require.False(t, snapshot.Active)
	require.Equal(t, uint64(4), snapshot.Sequence)
}

// TestNewService_WithoutJournal verifies the journal stays closed when not configured.
func TestNewService_WithoutJournal(t *testing.T) {
	t.Parallel()

	settings := &config.Config{ServerAddress: "127.0.0.1:7000"}
	require.NoError(t, config.Validate(settings))

	svc, err := newService(context.Background(), settings, filepath.Join(t.TempDir(), "state.yaml"), "")
	require.NoError(t, err)
	require.Nil(t, svc.journal)
	require.NoError(t, svc.close())
}

// TestNewService_RejectsUnknownPolicy fails on a policy the settings were never validated for.
func TestNewService_RejectsUnknownPolicy(t *testing.T) {
	t.Parallel()

	settings := &config.Config{ServerAddress: "127.0.0.1:7000", InvalidRangePolicy: "clamp"}

	svc, err := newService(context.Background(), settings, filepath.Join(t.TempDir(), "state.yaml"), "")
	require.ErrorContains(t, err, "invalid range policy")
	require.Nil(t, svc)
}
