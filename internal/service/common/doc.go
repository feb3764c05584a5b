// Package common holds the gRPC client wrapper shared by the replay and
// checker services: per-call timeouts and conversion between wire messages
// and domain types.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
