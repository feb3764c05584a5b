package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/lidar-alarm/internal/config"
	"github.com/oshokin/lidar-alarm/internal/service/checker"
	"github.com/oshokin/lidar-alarm/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// poll switches to periodic GetAlarmState calls.
	poll bool
	// pollInterval is the delay between polls and stream reconnects.
	pollInterval time.Duration

	// rootCmd represents the base command for following the alarm state.
	rootCmd = &cobra.Command{
		Use:   "lidar-alarm-checker [server-address]",
		Short: "Follow the proximity alarm and forward distance.",
		Long: `Subscribes to the alarm server and logs an "alarm" and a "distance" line for every
evaluated scan.

By default the checker follows the WatchAlarmState stream and reconnects when it
breaks. With --poll it calls GetAlarmState at a fixed interval instead.
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

			checkerOptions := &checker.Options{
				ConfigPath:    configPath,
				ServerAddress: serverAddress,
				Poll:          poll,
				PollInterval:  pollInterval,
			}

			return checker.Run(ctx, checkerOptions)
		},
	}
)

// Execute runs the lidar-alarm-checker CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().BoolVarP(&poll, "poll", "p", false, "poll GetAlarmState instead of watching the stream")
	rootCmd.Flags().DurationVarP(&pollInterval, "interval", "i", checker.DefaultPollInterval, "poll and reconnect interval")
}
