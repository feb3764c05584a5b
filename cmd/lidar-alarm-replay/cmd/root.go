package cmd

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/lidar-alarm/internal/config"
	"github.com/oshokin/lidar-alarm/internal/domain/sector"
	"github.com/oshokin/lidar-alarm/internal/service/replay"
	"github.com/oshokin/lidar-alarm/internal/version"
)

// errMalformedObstacle is returned for an --obstacle value that is not sector=meters.
var errMalformedObstacle = errors.New("expected sector=meters")

var (
	// configPath to the configuration YAML file.
	configPath string
	// framesFile is the recorded frames file to replay.
	framesFile string
	// interval between frames.
	interval time.Duration
	// count of frames to push.
	count int
	// loop restarts the frames file when it ends.
	loop bool
	// attempts per frame before it is skipped.
	attempts int
	// samples in a synthesized sweep.
	samples int
	// fieldOfView of a synthesized sweep in degrees.
	fieldOfView float64
	// uniformRange written to every synthesized sample.
	uniformRange float64
	// obstacles are sector=meters pairs placed on the synthesized sweep.
	obstacles []string

	// rootCmd represents the base command for replaying scans.
	rootCmd = &cobra.Command{
		Use:   "lidar-alarm-replay [server-address]",
		Short: "Push recorded or synthesized lidar scans to the alarm server.",
		Long: `Publishes scan frames to the alarm server at a fixed rate.

Frames come from a YAML file (--frames) or are synthesized as a uniform sweep
(--range) with optional obstacles placed on named sectors, for example
--obstacle front=0.4 --obstacle left_45=0.5.

A frame that cannot be delivered is retried and then skipped.
Server address can be provided as argument or loaded from configuration file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			var serverAddress string
			if len(args) > 0 {
				serverAddress = args[0]
			}

			placed, err := parseObstacles(obstacles)
			if err != nil {
				return err
			}

			replayOptions := &replay.Options{
				ConfigPath:    configPath,
				ServerAddress: serverAddress,
				FramesFile:    framesFile,
				Sweep: replay.SweepOptions{
					Samples:     samples,
					FieldOfView: fieldOfView * math.Pi / 180,
					Range:       uniformRange,
					Obstacles:   placed,
				},
				Interval: interval,
				Count:    count,
				Loop:     loop,
				Attempts: attempts,
			}

			return replay.Run(ctx, replayOptions)
		},
	}
)

// Execute runs the lidar-alarm-replay CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// parseObstacles turns sector=meters pairs into a sweep obstacle map.
func parseObstacles(pairs []string) (map[sector.Name]float64, error) {
	placed := make(map[sector.Name]float64, len(pairs))

	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("obstacle %q: %w", pair, errMalformedObstacle)
		}

		distance, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("obstacle %q: %w", pair, err)
		}

		placed[sector.Name(name)] = distance
	}

	return placed, nil
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&framesFile, "frames", "f", "", "YAML frames file to replay")
	rootCmd.Flags().DurationVarP(&interval, "interval", "i", replay.DefaultInterval, "delay between frames")
	rootCmd.Flags().IntVarP(&count, "count", "n", 0, "number of frames to push (0: file once, or sweep forever)")
	rootCmd.Flags().BoolVar(&loop, "loop", false, "restart the frames file when it ends")
	rootCmd.Flags().IntVar(&attempts, "attempts", replay.DefaultAttempts, "attempts per frame before skipping it")
	rootCmd.Flags().IntVar(&samples, "samples", replay.DefaultSamples, "samples in a synthesized sweep")
	rootCmd.Flags().Float64Var(&fieldOfView, "fov", 180, "field of view of a synthesized sweep in degrees")
	rootCmd.Flags().Float64VarP(&uniformRange, "range", "r", 5, "reading for every synthesized sample in meters")
	rootCmd.Flags().StringArrayVarP(&obstacles, "obstacle", "o", nil, "sector=meters obstacle on the synthesized sweep")
}
