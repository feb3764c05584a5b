package replay

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/lidar-alarm/internal/domain/alarm"
	"github.com/oshokin/lidar-alarm/internal/domain/scan"
	"github.com/oshokin/lidar-alarm/internal/domain/sector"
)

// TestSweep_PlacesObstaclesOnSectors checks a synthesized obstacle trips the right sector.
func TestSweep_PlacesObstaclesOnSectors(t *testing.T) {
	t.Parallel()

	frame, err := Sweep(SweepOptions{
		Range:     5,
		Obstacles: map[sector.Name]float64{sector.Right45: 0.5},
	})
	require.NoError(t, err)
	require.NoError(t, frame.Validate())
	require.Len(t, frame.Ranges, DefaultSamples)
	require.InDelta(t, 0.5, frame.Ranges[45], 1e-12)

	table := sector.DefaultTable()
	indices, err := sector.Resolve(frame.Geometry(), table)
	require.NoError(t, err)

	state, err := alarm.Evaluate(frame.Ranges, indices, table)
	require.NoError(t, err)
	require.True(t, state.Active)
	require.Equal(t, sector.Right45, state.TriggeringSector)
	require.InDelta(t, 5.0, state.ForwardDistance, 1e-12)
}

// TestSweep_Errors covers unknown sectors and obstacles outside a narrow field of view.
func TestSweep_Errors(t *testing.T) {
	t.Parallel()

	_, err := Sweep(SweepOptions{Range: 5, Obstacles: map[sector.Name]float64{"rear": 0.1}})
	require.ErrorIs(t, err, errUnknownObstacleSector)

	_, err = Sweep(SweepOptions{
		Range:       5,
		FieldOfView: math.Pi / 2,
		Obstacles:   map[sector.Name]float64{sector.Left90: 0.1},
	})

	var geomErr *sector.GeometryError
	require.ErrorAs(t, err, &geomErr)
	require.Equal(t, sector.Left90, geomErr.Sector)
}

// TestLoadFrames reads back saved frames, including non-finite readings.
func TestLoadFrames(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "frames.yaml")

	first, err := Sweep(SweepOptions{Range: 2})
	require.NoError(t, err)

	second, err := Sweep(SweepOptions{Range: math.Inf(1)})
	require.NoError(t, err)

	require.NoError(t, SaveFrames(path, []*scan.Frame{first, second}))

	frames, err := LoadFrames(path)
	require.NoError(t, err)
	require.Len(t, frames, 2)
	require.True(t, first.Geometry().Equal(frames[0].Geometry()))
	require.True(t, math.IsInf(frames[1].Ranges[0], 1))
}

// TestLoadFrames_Rejects covers missing, empty, and malformed files.
func TestLoadFrames_Rejects(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := LoadFrames(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("frames: []\n"), 0o600))

	_, err = LoadFrames(empty)
	require.ErrorIs(t, err, errNoFrames)

	malformed := filepath.Join(dir, "malformed.yaml")
	contents := "frames:\n  - angle_min: 0\n    angle_max: 1\n    angle_increment: 0\n    ranges: [1, 2]\n"
	require.NoError(t, os.WriteFile(malformed, []byte(contents), 0o600))

	_, err = LoadFrames(malformed)
	require.ErrorIs(t, err, scan.ErrMalformedFrame)
}
