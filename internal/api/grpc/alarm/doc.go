// Package alarm implements the gRPC transport for the lidar alarm.
//
// It decodes scan frames pushed by a scan source, hands them to the
// evaluator, and serves the resulting alarm state as a single read or as a
// stream of updates.
package alarm
