package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Full method names of lidaralarm.v1.AlarmService.
const (
	AlarmServiceName                = "lidaralarm.v1.AlarmService"
	AlarmServicePublishScanMethod   = "/lidaralarm.v1.AlarmService/PublishScan"
	AlarmServiceGetAlarmStateMethod = "/lidaralarm.v1.AlarmService/GetAlarmState"
	AlarmServiceWatchAlarmMethod    = "/lidaralarm.v1.AlarmService/WatchAlarmState"
)

// AlarmServiceServer is the server API for lidaralarm.v1.AlarmService.
type AlarmServiceServer interface {
	// PublishScan hands one scan frame to the evaluator.
	PublishScan(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	// GetAlarmState returns the latest alarm state.
	GetAlarmState(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	// WatchAlarmState streams every new alarm state until the client goes away.
	WatchAlarmState(*emptypb.Empty, grpc.ServerStreamingServer[structpb.Struct]) error
}

// UnimplementedAlarmServiceServer must be embedded for forward compatibility.
type UnimplementedAlarmServiceServer struct{}

// PublishScan returns codes.Unimplemented.
func (UnimplementedAlarmServiceServer) PublishScan(context.Context, *structpb.Struct) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method PublishScan not implemented")
}

// GetAlarmState returns codes.Unimplemented.
func (UnimplementedAlarmServiceServer) GetAlarmState(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetAlarmState not implemented")
}

// WatchAlarmState returns codes.Unimplemented.
func (UnimplementedAlarmServiceServer) WatchAlarmState(
	*emptypb.Empty,
	grpc.ServerStreamingServer[structpb.Struct],
) error {
	return status.Error(codes.Unimplemented, "method WatchAlarmState not implemented")
}

// RegisterAlarmServiceServer registers srv on s.
func RegisterAlarmServiceServer(s grpc.ServiceRegistrar, srv AlarmServiceServer) {
	s.RegisterService(&AlarmServiceDesc, srv)
}

// AlarmServiceDesc is the grpc.ServiceDesc for lidaralarm.v1.AlarmService.
//
//nolint:gochecknoglobals // Service descriptors are package-level by gRPC convention.
var AlarmServiceDesc = grpc.ServiceDesc{
	ServiceName: AlarmServiceName,
	HandlerType: (*AlarmServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "PublishScan",
			Handler:    publishScanHandler,
		},
		{
			MethodName: "GetAlarmState",
			Handler:    getAlarmStateHandler,
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchAlarmState",
			Handler:       watchAlarmStateHandler,
			ServerStreams: true,
		},
	},
	Metadata: "lidaralarm/v1/alarm.proto",
}

func publishScanHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(AlarmServiceServer).PublishScan(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: AlarmServicePublishScanMethod,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AlarmServiceServer).PublishScan(ctx, req.(*structpb.Struct))
	}

	return interceptor(ctx, in, info, handler)
}

func getAlarmStateHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(AlarmServiceServer).GetAlarmState(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: AlarmServiceGetAlarmStateMethod,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AlarmServiceServer).GetAlarmState(ctx, req.(*emptypb.Empty))
	}

	return interceptor(ctx, in, info, handler)
}

func watchAlarmStateHandler(srv any, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}

	return srv.(AlarmServiceServer).WatchAlarmState(
		in,
		&grpc.GenericServerStream[emptypb.Empty, structpb.Struct]{ServerStream: stream},
	)
}

// AlarmServiceClient is the client API for lidaralarm.v1.AlarmService.
type AlarmServiceClient interface {
	PublishScan(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
	GetAlarmState(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	WatchAlarmState(
		ctx context.Context,
		in *emptypb.Empty,
		opts ...grpc.CallOption,
	) (grpc.ServerStreamingClient[structpb.Struct], error)
}

type alarmServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewAlarmServiceClient returns a client bound to cc.
//
//nolint:ireturn // Mirrors generated gRPC constructors.
func NewAlarmServiceClient(cc grpc.ClientConnInterface) AlarmServiceClient {
	return &alarmServiceClient{cc: cc}
}

func (c *alarmServiceClient) PublishScan(
	ctx context.Context,
	in *structpb.Struct,
	opts ...grpc.CallOption,
) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, AlarmServicePublishScanMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *alarmServiceClient) GetAlarmState(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, AlarmServiceGetAlarmStateMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

//nolint:ireturn // Mirrors generated gRPC streaming clients.
func (c *alarmServiceClient) WatchAlarmState(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (grpc.ServerStreamingClient[structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, &AlarmServiceDesc.Streams[0], AlarmServiceWatchAlarmMethod, opts...)
	if err != nil {
		return nil, err
	}

	x := &grpc.GenericClientStream[emptypb.Empty, structpb.Struct]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}

	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}

	return x, nil
}
