// Package version carries the build metadata of the lidar-alarm binaries.
//
// Version, Commit and BuildTime are set with -ldflags "-X" at build time.
package version
