package replay

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/lidar-alarm/internal/config"
	"github.com/oshokin/lidar-alarm/internal/domain/scan"
	"github.com/oshokin/lidar-alarm/internal/domain/sector"
)

// frameRecord is the YAML form of scan.Frame.
type frameRecord struct {
	Timestamp      time.Time `yaml:"timestamp,omitempty"`
	AngleMin       float64   `yaml:"angle_min"`
	AngleMax       float64   `yaml:"angle_max"`
	AngleIncrement float64   `yaml:"angle_increment"`
	RangeMin       float64   `yaml:"range_min"`
	RangeMax       float64   `yaml:"range_max"`
	Ranges         []float64 `yaml:"ranges"`
}

// frameFile is the layout of a recorded frames file.
type frameFile struct {
	Frames []frameRecord `yaml:"frames"`
}

// SweepOptions describes a synthesized scan.
type SweepOptions struct {
	// Samples is the number of readings in the sweep.
	Samples int
	// FieldOfView is the angular width in radians, centered on the forward axis.
	FieldOfView float64
	// Range is the reading written to every sample.
	Range float64
	// RangeMax is the calibration upper bound reported with the frame.
	RangeMax float64
	// Obstacles overrides the reading at a sector's bearing.
	Obstacles map[sector.Name]float64
}

const (
	// DefaultSamples matches a one-degree sweep over a half circle.
	DefaultSamples = 181
	// DefaultRangeMax is a typical indoor lidar limit in meters.
	DefaultRangeMax = 30.0
	// defaultRangeMin is the reported lower calibration bound in meters.
	defaultRangeMin = 0.05
)

var (
	// errNoFrames is returned for a frames file without frames.
	errNoFrames = errors.New("frames file has no frames")
	// errUnknownObstacleSector is returned when an obstacle names a sector outside the default table.
	errUnknownObstacleSector = errors.New("unknown obstacle sector")
)

// LoadFrames reads and validates every frame in a YAML frames file.
func LoadFrames(path string) ([]*scan.Frame, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read frames: %w", err)
	}

	var file frameFile
	if err := yaml.Unmarshal(contents, &file); err != nil {
		return nil, fmt.Errorf("unmarshal frames: %w", err)
	}

	if len(file.Frames) == 0 {
		return nil, errNoFrames
	}

	frames := make([]*scan.Frame, 0, len(file.Frames))

	for i, rec := range file.Frames {
		frame := &scan.Frame{
			Timestamp:      rec.Timestamp,
			AngleMin:       rec.AngleMin,
			AngleMax:       rec.AngleMax,
			AngleIncrement: rec.AngleIncrement,
			RangeMin:       rec.RangeMin,
			RangeMax:       rec.RangeMax,
			Ranges:         rec.Ranges,
		}

		if err := frame.Validate(); err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}

		frames = append(frames, frame)
	}

	return frames, nil
}

// Sweep synthesizes a frame where every reading is opts.Range except at obstacle bearings.
func Sweep(opts SweepOptions) (*scan.Frame, error) {
	if opts.Samples <= 1 {
		opts.Samples = DefaultSamples
	}

	if opts.FieldOfView <= 0 {
		opts.FieldOfView = math.Pi
	}

	if opts.RangeMax <= 0 {
		opts.RangeMax = DefaultRangeMax
	}

	frame := &scan.Frame{
		AngleMin:       -opts.FieldOfView / 2,
		AngleMax:       opts.FieldOfView / 2,
		AngleIncrement: opts.FieldOfView / float64(opts.Samples-1),
		RangeMin:       defaultRangeMin,
		RangeMax:       opts.RangeMax,
		Ranges:         make([]float64, opts.Samples),
	}

	for i := range frame.Ranges {
		frame.Ranges[i] = opts.Range
	}

	table := sector.DefaultTable()
	geometry := frame.Geometry()

	for name, distance := range opts.Obstacles {
		spec, ok := table.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", errUnknownObstacleSector, name)
		}

		index := sector.Index(geometry, spec.Bearing)
		if index < 0 || index >= len(frame.Ranges) {
			return nil, &sector.GeometryError{Sector: name, Index: index, Geometry: geometry}
		}

		frame.Ranges[index] = distance
	}

	return frame, nil
}

// SaveFrames writes frames in the format LoadFrames reads.
func SaveFrames(path string, frames []*scan.Frame) error {
	file := frameFile{Frames: make([]frameRecord, 0, len(frames))}

	for _, f := range frames {
		file.Frames = append(file.Frames, frameRecord{
			Timestamp:      f.Timestamp,
			AngleMin:       f.AngleMin,
			AngleMax:       f.AngleMax,
			AngleIncrement: f.AngleIncrement,
			RangeMin:       f.RangeMin,
			RangeMax:       f.RangeMax,
			Ranges:         f.Ranges,
		})
	}

	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("marshal frames: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write frames: %w", err)
	}

	return nil
}
