package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"go.uber.org/multierr"
	"google.golang.org/grpc"

	api "github.com/oshokin/lidar-alarm/internal/api/grpc/alarm"
	"github.com/oshokin/lidar-alarm/internal/config"
	"github.com/oshokin/lidar-alarm/internal/logger"
	pb "github.com/oshokin/lidar-alarm/internal/pb/v1"
	"github.com/oshokin/lidar-alarm/internal/version"
)

// Options controls the lidar-alarm-server process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// StateFile overrides the snapshot path from the settings.
	StateFile string
	// JournalFile overrides the SQLite journal path from the settings.
	JournalFile string
	// LogLevel overrides the log level from the settings.
	LogLevel string
	// Synchronous makes PublishScan evaluate the frame before returning.
	Synchronous bool
}

var (
	// ErrNoServerAddress indicates missing server configuration.
	ErrNoServerAddress = errors.New("no server address configured")
	// errUnknownLogLevel is returned for an unparsable --log-level value.
	errUnknownLogLevel = errors.New("unknown log level")
)

// Run starts the monitor and the gRPC server and blocks until ctx is canceled or the server stops.
//
//nolint:funlen // Linear start-up sequence; splitting would scatter the shutdown order.
func Run(ctx context.Context, opts *Options) (err error) {
	ctx = logger.WithName(ctx, "lidar-alarm-server")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	levelName := settings.LogLevel
	if opts.LogLevel != "" {
		levelName = opts.LogLevel
	}

	level, ok := logger.ParseLogLevel(levelName)
	if !ok {
		return fmt.Errorf("%w: %q", errUnknownLogLevel, levelName)
	}

	logger.SetLevel(level)

	stateFile := settings.StateFile
	if opts.StateFile != "" {
		stateFile = opts.StateFile
	}

	journalFile := settings.JournalFile
	if opts.JournalFile != "" {
		journalFile = opts.JournalFile
	}

	listenAddress, err := resolveListenAddress(settings.ServerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	svc, err := newService(ctx, settings, stateFile, journalFile)
	if err != nil {
		return fmt.Errorf("initialise service: %w", err)
	}

	defer func() {
		err = multierr.Append(err, svc.close())
	}()

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	var serverOpts []api.Option
	if opts.Synchronous {
		serverOpts = append(serverOpts, api.WithSynchronousPublish())
	}

	grpcServer := grpc.NewServer()
	pb.RegisterAlarmServiceServer(grpcServer, api.NewServer(svc.monitor, svc.hub, serverOpts...))

	monitorCtx, stopMonitor := context.WithCancel(ctx)
	defer stopMonitor()

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		_ = svc.monitor.Run(monitorCtx) //nolint:errcheck // Run only returns on cancellation.
	}()

	logger.InfoKV(ctx, "Lidar alarm server listening", append(version.KV(),
		"listen_address", listenAddress,
		"state_file", stateFile,
		"journal_file", journalFile,
		"synchronous", opts.Synchronous)...)

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		grpcServer.GracefulStop()
		close(done)
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		stopMonitor()
		wg.Wait()

		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	stopMonitor()
	wg.Wait()
	logger.Info(ctx, "GRPC server stopped")

	return nil
}

// resolveListenAddress determines the listen address for the gRPC server.
// If override is provided, uses it directly. Otherwise extracts port from configAddr.
func resolveListenAddress(configAddr, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	_, port, err := net.SplitHostPort(configAddr)
	if err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	// Bind on all interfaces.
	return ":" + port, nil
}
