// Package logger wraps zap with a process-wide sugared logger and
// context helpers (ToContext, FromContext, WithName, WithKV).
//
// Services never hold a logger field: they take a context and log through
// it, so a component name attached once at the top of a call chain shows up
// on every record below it.
package logger
