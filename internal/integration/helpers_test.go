package integration

import (
	"context"
	"net"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/lidar-alarm/internal/config"
	"github.com/oshokin/lidar-alarm/internal/domain/scan"
	"github.com/oshokin/lidar-alarm/internal/service/common"
	"github.com/oshokin/lidar-alarm/internal/service/replay"
	"github.com/oshokin/lidar-alarm/internal/service/server"
)

const (
	// readyTimeout bounds how long a test waits for the server or an expected state.
	readyTimeout = 5 * time.Second
	// readyTick is the polling step while waiting.
	readyTick = 20 * time.Millisecond
)

// testServer is a running lidar-alarm-server with its files.
type testServer struct {
	addr        string
	configPath  string
	statePath   string
	journalPath string
}

// reservePort finds a free localhost port for a test server.
func reservePort(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	_ = l.Close()

	return addr
}

// startServer runs the real server on a free port until the test ends.
func startServer(t *testing.T, synchronous bool) *testServer {
	t.Helper()

	dir := t.TempDir()
	srv := &testServer{
		addr:        reservePort(t),
		configPath:  filepath.Join(dir, "settings.yaml"),
		statePath:   filepath.Join(dir, "state.yaml"),
		journalPath: filepath.Join(dir, "journal.db"),
	}

	require.NoError(t, config.Save(srv.configPath, &config.Config{
		ServerAddress: srv.addr,
		Timeout:       2 * time.Second,
		LogLevel:      "warn",
	}))

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		options := &server.Options{
			ConfigPath:    srv.configPath,
			ListenAddress: srv.addr,
			StateFile:     srv.statePath,
			JournalFile:   srv.journalPath,
			Synchronous:   synchronous,
		}

		_ = server.Run(ctx, options) //nolint:errcheck // Failures surface as the readiness check timing out.
	}()

	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})

	client := dial(t, srv.addr)

	require.Eventually(t, func() bool {
		_, err := client.GetAlarmState(context.Background())
		return err == nil
	}, readyTimeout, readyTick)

	return srv
}

// dial connects a client to addr, closed when the test ends.
func dial(t *testing.T, addr string) *common.Client {
	t.Helper()

	client, err := common.Dial(context.Background(), addr, common.WithCallTimeout(time.Second))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()
	})

	return client
}

// sweep synthesizes a scan described by opts with every reading at r.
func sweep(t *testing.T, r float64, opts replay.SweepOptions) *scan.Frame {
	t.Helper()

	opts.Range = r

	frame, err := replay.Sweep(opts)
	require.NoError(t, err)

	frame.Timestamp = time.Now()

	return frame
}
