// Package state persists a snapshot of the last alarm transition.
//
// The snapshot is operability data: the server logs it on startup to show how
// the previous run ended, but never seeds the live alarm from it.
package state
