package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/lidar-alarm/internal/config"
	"github.com/oshokin/lidar-alarm/internal/domain/alarm"
	"github.com/oshokin/lidar-alarm/internal/domain/sector"
)

// Repository defines persistence operations for the alarm snapshot.
type Repository interface {
	Load(ctx context.Context) (*alarm.State, error)
	Save(ctx context.Context, state *alarm.State) error
}

// FileRepository keeps the snapshot in a YAML file.
type FileRepository struct {
	// path is the filesystem location of the snapshot.
	path string
	// mu serializes file access.
	mu sync.Mutex
}

// ErrNotFound is returned when no snapshot was written yet.
var ErrNotFound = errors.New("state not found")

// snapshot is the on-disk layout. yaml.v3 writes non-finite distances as .inf and .nan.
type snapshot struct {
	Timestamp        time.Time `yaml:"timestamp"`
	Sequence         uint64    `yaml:"sequence"`
	AlarmActive      bool      `yaml:"alarm_active"`
	ForwardDistance  float64   `yaml:"forward_distance_meters"`
	TriggeringSector string    `yaml:"triggering_sector,omitempty"`
	TriggeringRange  float64   `yaml:"triggering_range_meters,omitempty"`
}

// NewFileRepository creates a repository reading and writing path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the snapshot from disk.
func (r *FileRepository) Load(_ context.Context) (*alarm.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read state file: %w", err)
	}

	var s snapshot
	if err = yaml.Unmarshal(contents, &s); err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}

	return &alarm.State{
		Timestamp:        s.Timestamp,
		Sequence:         s.Sequence,
		Active:           s.AlarmActive,
		ForwardDistance:  s.ForwardDistance,
		TriggeringSector: sector.Name(s.TriggeringSector),
		TriggeringRange:  s.TriggeringRange,
	}, nil
}

// Save replaces the snapshot with state. The file is written next to the
// target and renamed over it so readers never see half a snapshot.
func (r *FileRepository) Save(_ context.Context, state *alarm.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := yaml.Marshal(&snapshot{
		Timestamp:        state.Timestamp.UTC(),
		Sequence:         state.Sequence,
		AlarmActive:      state.Active,
		ForwardDistance:  state.ForwardDistance,
		TriggeringSector: string(state.TriggeringSector),
		TriggeringRange:  state.TriggeringRange,
	})
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	tmp := r.path + ".tmp"
	if err = os.WriteFile(tmp, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}

	if err = os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}

	return nil
}
