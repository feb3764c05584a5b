package checker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/oshokin/lidar-alarm/internal/config"
	"github.com/oshokin/lidar-alarm/internal/domain/alarm"
	"github.com/oshokin/lidar-alarm/internal/logger"
	"github.com/oshokin/lidar-alarm/internal/service/common"
)

// Options controls how the checker follows the alarm state.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// ServerAddress provides an optional gRPC server address override.
	ServerAddress string
	// Poll switches from the WatchAlarmState stream to periodic GetAlarmState calls.
	Poll bool
	// PollInterval defines the interval between polls.
	PollInterval time.Duration
	// Timeout overrides the per-RPC timeout from the settings.
	Timeout time.Duration
}

// DefaultPollInterval defines the polling interval when none is given.
const DefaultPollInterval = time.Second

// Run follows the alarm state and logs every update until ctx is canceled.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "lidar-alarm-checker")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}

	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	timeout := cfg.Timeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}

	client, err := common.Dial(ctx, serverAddress, common.WithCallTimeout(timeout))
	if err != nil {
		return fmt.Errorf("dial server: %w", err)
	}

	defer func() {
		_ = client.Close()
	}()

	if opts.Poll {
		return poll(ctx, client, serverAddress, opts.PollInterval)
	}

	return watch(ctx, client, serverAddress, opts.PollInterval)
}

// watch follows the state stream and reconnects after interval when it breaks.
func watch(ctx context.Context, client *common.Client, serverAddress string, interval time.Duration) error {
	logger.InfoKV(ctx, "Watching alarm state", "server_address", serverAddress)

	var last *alarm.State

	report := func(state *alarm.State) error {
		if state.Evaluated() && last != nil && state.Sequence == last.Sequence {
			return nil
		}

		logState(ctx, state)
		last = state

		return nil
	}

	for {
		if err := client.WatchAlarmState(ctx, report); err != nil {
			logger.ErrorKV(ctx, "Alarm state stream failed", "error", err)
		}

		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context canceled, exiting")
			return nil
		case <-time.After(interval):
		}
	}
}

// poll asks for the alarm state every interval.
func poll(ctx context.Context, client *common.Client, serverAddress string, interval time.Duration) error {
	logger.InfoKV(ctx, "Polling alarm state", "server_address", serverAddress, "interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context canceled, exiting")
			return nil
		case <-ticker.C:
			state, err := client.GetAlarmState(ctx)
			if err != nil {
				logger.ErrorKV(ctx, "Check state failed", "error", err)
				continue
			}

			logState(ctx, state)
		}
	}
}

// logState writes the alarm and distance lines for one state.
// An alarm is logged at WARN so it stands out in the console.
func logState(ctx context.Context, state *alarm.State) {
	if !state.Evaluated() {
		logger.Info(ctx, "No scan evaluated yet")
		return
	}

	if state.Active {
		logger.WarnKV(ctx, "alarm", "active", true,
			"sector", string(state.TriggeringSector),
			"range", formatMeters(state.TriggeringRange),
			"sequence", state.Sequence)
	} else {
		logger.InfoKV(ctx, "alarm", "active", false, "sequence", state.Sequence)
	}

	logger.InfoKV(ctx, "distance", "forward", formatMeters(state.ForwardDistance), "sequence", state.Sequence)
}

// formatMeters renders a range in meters, keeping NaN and Inf readable.
func formatMeters(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64) + "m"
}
