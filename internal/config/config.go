package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/lidar-alarm/internal/domain/alarm"
	"github.com/oshokin/lidar-alarm/internal/domain/sector"
	"github.com/oshokin/lidar-alarm/internal/logger"
)

// Config holds the settings shared by the lidar-alarm binaries.
type Config struct {
	// ServerAddress is the gRPC address of the alarm server.
	ServerAddress string `yaml:"server_addr"`
	// StateFile is where the server keeps a snapshot of the last alarm transition.
	StateFile string `yaml:"state_file"`
	// JournalFile is an optional SQLite database recording every alarm transition.
	JournalFile string `yaml:"journal_file,omitempty"`
	// Timeout bounds network operations and RPC calls.
	Timeout time.Duration `yaml:"timeout"`
	// LogLevel is the minimum level written to the log.
	LogLevel string `yaml:"log_level,omitempty"`
	// InvalidRangePolicy selects how non-finite or out-of-calibration readings are compared.
	InvalidRangePolicy string `yaml:"invalid_range_policy,omitempty"`
	// Sectors lists the monitored sectors in priority order. Empty selects the default table.
	Sectors []Sector `yaml:"sectors,omitempty"`
}

// Sector is the YAML form of sector.Spec.
type Sector struct {
	Name            string  `yaml:"name"`
	BearingRad      float64 `yaml:"bearing_rad"`
	MinSafeDistance float64 `yaml:"min_safe_distance"`
}

const (
	// DefaultConfigFilename is the default settings file.
	DefaultConfigFilename = "lidar-alarm-settings.yaml"

	// DefaultStateFilename is the default alarm snapshot file.
	DefaultStateFilename = "lidar-alarm-state.yaml"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 5 * time.Second

	// DefaultFilePermissions is used for every file the binaries write.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errServerSocketRequired is returned when server address is missing.
	errServerSocketRequired = errors.New("server address must be provided")
	// errUnknownLogLevel is returned for log levels zap does not know.
	errUnknownLogLevel = errors.New("unknown log level")
)

// Load reads configuration from path and validates it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save validates cfg and writes it to path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks required fields and fills in defaults.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.ServerAddress == "" {
		return errServerSocketRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.ServerAddress); err != nil {
		return fmt.Errorf("invalid server socket: %w", err)
	}

	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if settings.StateFile == "" {
		settings.StateFile = DefaultStateFilename
	}

	if _, ok := logger.ParseLogLevel(settings.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errUnknownLogLevel, settings.LogLevel)
	}

	if _, err := settings.Policy(); err != nil {
		return err
	}

	if _, err := settings.Table(); err != nil {
		return fmt.Errorf("invalid sectors: %w", err)
	}

	return nil
}

// Table builds the sector table, falling back to sector.DefaultTable when none is configured.
func (c *Config) Table() (*sector.Table, error) {
	if len(c.Sectors) == 0 {
		return sector.DefaultTable(), nil
	}

	specs := make([]sector.Spec, 0, len(c.Sectors))
	for _, s := range c.Sectors {
		specs = append(specs, sector.Spec{
			Name:            sector.Name(s.Name),
			Bearing:         s.BearingRad,
			MinSafeDistance: s.MinSafeDistance,
		})
	}

	return sector.NewTable(specs...)
}

// Policy parses the configured out-of-calibration policy. Empty selects alarm.PolicyPassThrough.
func (c *Config) Policy() (alarm.Policy, error) {
	p, err := alarm.ParsePolicy(c.InvalidRangePolicy)
	if err != nil {
		return "", fmt.Errorf("invalid range policy: %w", err)
	}

	return p, nil
}

// SectorsFromTable converts a table to its YAML form, used to write example settings.
func SectorsFromTable(t *sector.Table) []Sector {
	specs := t.Specs()

	out := make([]Sector, 0, len(specs))
	for _, s := range specs {
		out = append(out, Sector{
			Name:            string(s.Name),
			BearingRad:      s.Bearing,
			MinSafeDistance: s.MinSafeDistance,
		})
	}

	return out
}
