package alarm

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/lidar-alarm/internal/domain/alarm"
	"github.com/oshokin/lidar-alarm/internal/domain/scan"
	"github.com/oshokin/lidar-alarm/internal/domain/sector"
	"github.com/oshokin/lidar-alarm/internal/logger"
	pb "github.com/oshokin/lidar-alarm/internal/pb/v1"
)

// Service abstracts the evaluator operations the transport depends on.
type Service interface {
	Process(ctx context.Context, frame *scan.Frame) (*domain.State, error)
	Submit(frame *scan.Frame)
	Current() *domain.State
}

// Watcher provides alarm state subscriptions.
type Watcher interface {
	Subscribe() (<-chan *domain.State, func())
}

// Server implements lidaralarm.v1.AlarmService.
type Server struct {
	pb.UnimplementedAlarmServiceServer

	// service evaluates frames and holds the current state.
	service Service
	// watcher feeds WatchAlarmState streams.
	watcher Watcher
	// synchronous makes PublishScan evaluate the frame before replying.
	synchronous bool
}

// Option configures a Server.
type Option func(*Server)

// WithSynchronousPublish makes PublishScan evaluate the frame inline and
// report geometry failures to the caller instead of only logging them.
func WithSynchronousPublish() Option {
	return func(s *Server) {
		s.synchronous = true
	}
}

// NewServer wires the evaluator and the subscription source into a gRPC handler.
func NewServer(service Service, watcher Watcher, opts ...Option) *Server {
	s := &Server{
		service: service,
		watcher: watcher,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// PublishScan accepts one scan frame.
// Malformed frames are rejected here; otherwise the frame is queued, replacing
// any frame that has not been evaluated yet.
func (s *Server) PublishScan(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "frame is required")
	}

	frame, err := pb.FrameFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if err = frame.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if !s.synchronous {
		s.service.Submit(frame)

		return new(emptypb.Empty), nil
	}

	if _, err = s.service.Process(ctx, frame); err != nil {
		return nil, toStatus(err)
	}

	return new(emptypb.Empty), nil
}

// GetAlarmState returns the latest alarm state; an empty Struct before the first scan.
func (s *Server) GetAlarmState(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	state := s.service.Current()
	if !state.Evaluated() {
		return pb.StateToStruct(nil), nil
	}

	return pb.StateToStruct(state), nil
}

// WatchAlarmState sends the current state, then every new one, until the client leaves.
func (s *Server) WatchAlarmState(_ *emptypb.Empty, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	if s.watcher == nil {
		return status.Error(codes.Unimplemented, "alarm state streaming is not enabled")
	}

	ctx := logger.WithName(stream.Context(), "watch")

	updates, unsubscribe := s.watcher.Subscribe()
	defer unsubscribe()

	if current := s.service.Current(); current.Evaluated() {
		if err := stream.Send(pb.StateToStruct(current)); err != nil {
			return err
		}
	}

	logger.Debug(ctx, "Alarm state subscriber attached")

	for {
		select {
		case <-ctx.Done():
			logger.Debug(ctx, "Alarm state subscriber detached")

			return nil
		case state, ok := <-updates:
			if !ok {
				return nil
			}

			if err := stream.Send(pb.StateToStruct(state)); err != nil {
				return err
			}
		}
	}
}

// toStatus maps evaluator errors to gRPC status codes.
func toStatus(err error) error {
	var geomErr *sector.GeometryError

	switch {
	case errors.Is(err, scan.ErrMalformedFrame):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.As(err, &geomErr):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, "unable to evaluate frame")
	}
}
