// Package logger defines the logging port used throughout the SDK and a
// zerolog-backed implementation of it.
package logger

import "time"

// Logger defines the contract for structured logging.
// Components receive a Logger explicitly instead of reaching for a global.
type Logger interface {
	Info() LogEvent
	Error() LogEvent
	Debug() LogEvent
	Warn() LogEvent
	WithFields(fields map[string]any) Logger
}

// LogEvent represents a structured log event that can be built with fields and sent.
type LogEvent interface {
	Msg(msg string)
	Msgf(format string, args ...any)
	Err(err error) LogEvent
	Str(key, value string) LogEvent
	Int(key string, value int) LogEvent
	Int64(key string, value int64) LogEvent
	Dur(key string, d time.Duration) LogEvent
	Interface(key string, i any) LogEvent
	Bytes(key string, val []byte) LogEvent
}

// LevelChecker is implemented by loggers that can report whether debug output
// would be emitted. Callers use it to skip expensive diagnostic work.
type LevelChecker interface {
	DebugEnabled() bool
}

// DebugEnabled reports whether log emits debug events. Loggers that do not
// implement LevelChecker are assumed to.
func DebugEnabled(log Logger) bool {
	if log == nil {
		return false
	}
	if lc, ok := log.(LevelChecker); ok {
		return lc.DebugEnabled()
	}
	return true
}
