package replay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oshokin/lidar-alarm/internal/config"
	"github.com/oshokin/lidar-alarm/internal/domain/scan"
	"github.com/oshokin/lidar-alarm/internal/logger"
	"github.com/oshokin/lidar-alarm/internal/service/common"
)

// Options configures the replay of scan frames.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// ServerAddress overrides server address from config when specified.
	ServerAddress string
	// FramesFile is a YAML frames file. Empty synthesizes frames from Sweep.
	FramesFile string
	// Sweep describes the synthesized frame used without a frames file.
	Sweep SweepOptions
	// Interval is the delay between frames.
	Interval time.Duration
	// Count stops after this many frames. Zero pushes the file once, or a sweep forever.
	Count int
	// Loop restarts the frames file after its last frame.
	Loop bool
	// Attempts bounds how often one frame is pushed before it is skipped.
	Attempts int
}

const (
	// DefaultInterval matches a 10 Hz lidar.
	DefaultInterval = 100 * time.Millisecond
	// DefaultAttempts is the number of tries per frame.
	DefaultAttempts = 3
	// defaultRetryInterval is the delay between failed attempts of one frame.
	defaultRetryInterval = time.Second
)

// errFrameSkipped marks a frame that exhausted its attempts.
var errFrameSkipped = errors.New("frame skipped after failed attempts")

// Publisher sends one frame to the alarm server.
type Publisher interface {
	PublishScan(ctx context.Context, frame *scan.Frame) error
}

// source yields the next frame to push, or false when the replay is done.
type source func(pushed int) (*scan.Frame, bool)

// Run pushes frames to the server until they run out or ctx is canceled.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "lidar-alarm-replay")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	next, err := newSource(opts)
	if err != nil {
		return err
	}

	client, err := common.Dial(ctx, serverAddress, common.WithCallTimeout(cfg.Timeout))
	if err != nil {
		return fmt.Errorf("dial server: %w", err)
	}

	defer func() {
		_ = client.Close()
	}()

	logger.InfoKV(ctx, "Replaying scan frames",
		"server_address", serverAddress,
		"frames_file", opts.FramesFile,
		"interval", opts.Interval.String(),
		"count", opts.Count)

	pushed, err := push(ctx, client, next, opts)

	logger.InfoKV(ctx, "Replay finished", "pushed", pushed)

	return err
}

// newSource selects the frame source described by opts.
func newSource(opts *Options) (source, error) {
	count := opts.Count

	if opts.FramesFile == "" {
		template, err := Sweep(opts.Sweep)
		if err != nil {
			return nil, fmt.Errorf("synthesize sweep: %w", err)
		}

		return func(pushed int) (*scan.Frame, bool) {
			if count > 0 && pushed >= count {
				return nil, false
			}

			frame := *template
			frame.Timestamp = time.Now()

			return &frame, true
		}, nil
	}

	frames, err := LoadFrames(opts.FramesFile)
	if err != nil {
		return nil, err
	}

	if count <= 0 && !opts.Loop {
		count = len(frames)
	}

	return func(pushed int) (*scan.Frame, bool) {
		if count > 0 && pushed >= count {
			return nil, false
		}

		frame := *frames[pushed%len(frames)]
		if frame.Timestamp.IsZero() {
			frame.Timestamp = time.Now()
		}

		return &frame, true
	}, nil
}

// push sends frames from next every opts.Interval and returns how many were sent.
// A failed frame is retried up to opts.Attempts times and then skipped.
func push(ctx context.Context, pub Publisher, next source, opts *Options) (int, error) {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pushed int

	for {
		frame, ok := next(pushed)
		if !ok {
			return pushed, nil
		}

		err := pushFrame(ctx, pub, frame, opts.Attempts)

		switch {
		case ctx.Err() != nil:
			return pushed, nil
		case errors.Is(err, errFrameSkipped):
			logger.WarnKV(ctx, "Scan frame skipped", "frame", pushed, "error", err)
		case err != nil:
			return pushed, err
		}

		// Skipped frames count so a bounded replay still ends.
		pushed++

		select {
		case <-ctx.Done():
			return pushed, nil
		case <-ticker.C:
		}
	}
}

// pushFrame tries to publish frame, waiting between failed attempts.
func pushFrame(ctx context.Context, pub Publisher, frame *scan.Frame, attempts int) error {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}

	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = pub.PublishScan(ctx, frame)
		if lastErr == nil {
			return nil
		}

		logger.ErrorKV(ctx, "PublishScan failed", "attempt", attempt, "error", lastErr)

		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(defaultRetryInterval):
		}
	}

	return fmt.Errorf("%w: %w", errFrameSkipped, lastErr)
}
