package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/lidar-alarm/internal/config"
	"github.com/oshokin/lidar-alarm/internal/service/server"
	"github.com/oshokin/lidar-alarm/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// stateFile path where the last alarm transition is kept.
	stateFile string
	// journalFile path of the SQLite transition journal.
	journalFile string
	// logLevel overrides the configured log level.
	logLevel string
	// synchronous makes PublishScan wait for the evaluation.
	synchronous bool

	// rootCmd represents the base command for running the gRPC server.
	rootCmd = &cobra.Command{
		Use:   "lidar-alarm-server [listen-address]",
		Short: "Evaluate lidar scans and serve the proximity alarm over gRPC.",
		Long: `Starts the gRPC server that evaluates incoming lidar scans against the sector table.

Every scan is checked sector by sector in priority order (front first, then the
left and right sides). The first sector whose reading is closer than its safety
distance raises the alarm. The forward distance is always the front reading.

Scans arriving faster than they can be evaluated are dropped so that only the
newest one is processed. Clients read the alarm with GetAlarmState or follow it
with WatchAlarmState.

Only the port from ServerAddress config is used for listening (e.g., :7000).
Listen address can be provided as argument to override config (e.g., :9090, 0.0.0.0:7000).
Alarm transitions are written to the state file and, when configured, to a SQLite journal.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			options := &server.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				StateFile:     stateFile,
				JournalFile:   journalFile,
				LogLevel:      logLevel,
				Synchronous:   synchronous,
			}

			return server.Run(ctx, options)
		},
	}
)

// Execute runs the lidar-alarm-server CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&stateFile, "state-file", "s", "", "path to the alarm snapshot (overrides config)")
	rootCmd.Flags().StringVarP(&journalFile, "journal-file", "j", "", "path to the SQLite transition journal (overrides config)")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "log level: debug, info, warn, error")
	rootCmd.Flags().BoolVar(&synchronous, "sync", false, "evaluate each scan before acknowledging PublishScan")
}
