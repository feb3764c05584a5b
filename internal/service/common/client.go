//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/oshokin/lidar-alarm/internal/config"
	"github.com/oshokin/lidar-alarm/internal/domain/alarm"
	"github.com/oshokin/lidar-alarm/internal/domain/scan"
	pb "github.com/oshokin/lidar-alarm/internal/pb/v1"
)

// Client wraps the AlarmService gRPC client with timeouts and domain types.
type Client struct {
	// conn is the underlying gRPC connection to the alarm server.
	conn *grpc.ClientConn
	// api is the AlarmService client.
	api pb.AlarmServiceClient

	// callTimeout bounds unary calls. Streams are bounded by the caller's context only.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for unary calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errFrameRequired is returned when PublishScan gets no frame.
	errFrameRequired = errors.New("frame must be provided")
)

// Dial creates a client for the alarm server at address.
// The connection is insecure; run it on a trusted robot network.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial alarm server: %w", err)
	}

	client := &Client{
		conn:        conn,
		api:         pb.NewAlarmServiceClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// PublishScan pushes one frame to the server.
func (c *Client) PublishScan(ctx context.Context, frame *scan.Frame) error {
	if frame == nil {
		return errFrameRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	if _, err := c.api.PublishScan(callCtx, pb.FrameToStruct(frame)); err != nil {
		return fmt.Errorf("publish scan: %w", err)
	}

	return nil
}

// GetAlarmState retrieves the current alarm state.
func (c *Client) GetAlarmState(ctx context.Context) (*alarm.State, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.GetAlarmState(callCtx, new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("get alarm state: %w", err)
	}

	state, err := pb.StateFromStruct(resp)
	if err != nil {
		return nil, fmt.Errorf("decode alarm state: %w", err)
	}

	return state, nil
}

// WatchAlarmState calls fn for every state the server streams until ctx is
// canceled, the server ends the stream, or fn returns an error.
func (c *Client) WatchAlarmState(ctx context.Context, fn func(*alarm.State) error) error {
	stream, err := c.api.WatchAlarmState(ctx, new(emptypb.Empty))
	if err != nil {
		return fmt.Errorf("watch alarm state: %w", err)
	}

	for {
		msg, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			if ctx.Err() != nil {
				return nil //nolint:nilerr // Cancellation is a normal way to stop watching.
			}

			return fmt.Errorf("receive alarm state: %w", err)
		}

		state, err := pb.StateFromStruct(msg)
		if err != nil {
			return fmt.Errorf("decode alarm state: %w", err)
		}

		if err = fn(state); err != nil {
			return err
		}
	}
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
