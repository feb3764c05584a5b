// Package config loads, validates and saves the YAML settings shared by the
// lidar-alarm binaries: the gRPC address, the persistence files, and the
// sector table with its priority order.
//
// The sector table is read once at startup; there is no reload.
package config
