package state

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/lidar-alarm/internal/domain/alarm"
	"github.com/oshokin/lidar-alarm/internal/domain/sector"
)

// TestFileRepository_NotFound verifies Load returns ErrNotFound for a missing file.
func TestFileRepository_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "missing.yaml"))

	s, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, s)
}

// TestFileRepository_SaveLoad_Roundtrip ensures Save followed by Load returns an equal state.
func TestFileRepository_SaveLoad_Roundtrip(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "state.yaml")
	repo := NewFileRepository(file)

	want := &alarm.State{
		Timestamp:        time.Now().UTC().Truncate(time.Millisecond),
		Sequence:         12,
		Active:           true,
		ForwardDistance:  2.75,
		TriggeringSector: sector.Right45,
		TriggeringRange:  0.5,
	}

	require.NoError(t, repo.Save(context.Background(), want))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.True(t, want.Timestamp.Equal(got.Timestamp))

	got.Timestamp = want.Timestamp
	require.Equal(t, want, got)

	_, err = os.Stat(file + ".tmp")
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestFileRepository_NonFiniteDistance keeps a no-return forward reading.
func TestFileRepository_NonFiniteDistance(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "state.yaml"))

	require.NoError(t, repo.Save(context.Background(), &alarm.State{Sequence: 1, ForwardDistance: math.Inf(1)}))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.True(t, math.IsInf(got.ForwardDistance, 1))
	require.False(t, got.Active)
	require.Empty(t, got.TriggeringSector)
}

// TestFileRepository_Corrupt reports undecodable files.
func TestFileRepository_Corrupt(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "state.yaml")
	require.NoError(t, os.WriteFile(file, []byte("sequence: [oops"), 0o600))

	_, err := NewFileRepository(file).Load(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}
