// Package pb describes the lidaralarm.v1.AlarmService gRPC API declared in
// api/lidaralarm/v1/alarm.proto.
//
// Messages are protobuf well-known types: a scan frame or an alarm state
// travels as a google.protobuf.Struct with the field names listed in
// convert.go, and argument-less calls take google.protobuf.Empty. The
// service descriptor, client and server glue mirror what protoc-gen-go-grpc
// emits, so any gRPC client that speaks Struct can talk to the server.
package pb
