package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// levelCore overrides the level of a wrapped core.
type levelCore struct {
	zapcore.Core

	level zapcore.Level
}

// Enabled reports whether l passes the overridden level.
func (c *levelCore) Enabled(l zapcore.Level) bool {
	return c.level.Enabled(l)
}

// Check adds the core to ce when the entry level is enabled.
//
//nolint:gocritic // zapcore.Core requires ent by value.
func (c *levelCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}

	return ce
}

// With keeps the level override on derived cores.
//
//nolint:ireturn // zapcore.Core is the required return type.
func (c *levelCore) With(fields []zapcore.Field) zapcore.Core {
	return &levelCore{
		Core:  c.Core.With(fields),
		level: c.level,
	}
}

// WithLevel builds a logger that filters at lvl regardless of the shared level.
// The checker uses it to stay quiet on per-frame debug records.
//
//nolint:ireturn // zap.Option is the required return type.
func WithLevel(lvl zapcore.Level) zap.Option {
	return zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return &levelCore{Core: core, level: lvl}
	})
}
