package logger

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ZeroLogger wraps zerolog.Logger to implement the Logger interface.
type ZeroLogger struct {
	zlog   *zerolog.Logger
	filter *SensitiveDataFilter
}

// Ensure ZeroLogger implements the interfaces
var (
	_ Logger       = (*ZeroLogger)(nil)
	_ LevelChecker = (*ZeroLogger)(nil)
)

var callerMarshalOnce sync.Once

// New creates a ZeroLogger writing to stdout with the specified level.
// If pretty is true, output will be formatted for human readability.
func New(level string, pretty bool) *ZeroLogger {
	return NewWithFilter(level, pretty, os.Stdout, DefaultFilterConfig())
}

// NewWithWriter creates a ZeroLogger writing to w. Writes to a sink that has
// already been closed are dropped silently.
func NewWithWriter(level string, pretty bool, w io.Writer) *ZeroLogger {
	return NewWithFilter(level, pretty, w, DefaultFilterConfig())
}

// NewWithFilter creates a ZeroLogger with a custom filter configuration.
func NewWithFilter(level string, pretty bool, w io.Writer, filterConfig *FilterConfig) *ZeroLogger {
	callerMarshalOnce.Do(func() {
		zerolog.CallerMarshalFunc = func(_ uintptr, file string, line int) string {
			base := filepath.Base(file)
			parent := filepath.Base(filepath.Dir(file))
			if parent != "." && parent != "" {
				return parent + "/" + base + ":" + strconv.Itoa(line)
			}
			return base + ":" + strconv.Itoa(line)
		}
	})

	if w == nil {
		w = os.Stdout
	}
	out := io.Writer(&closedSinkGuard{w: w})
	if pretty {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	l := zerolog.New(out).With().Timestamp().Logger()

	zLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		zLevel = zerolog.InfoLevel
	}
	l = l.Level(zLevel)

	return &ZeroLogger{zlog: &l, filter: NewSensitiveDataFilter(filterConfig)}
}

// Nop returns a logger that discards everything.
func Nop() *ZeroLogger {
	l := zerolog.Nop()
	return &ZeroLogger{zlog: &l}
}

// WithFields returns a logger with additional fields attached to all log entries.
func (l *ZeroLogger) WithFields(fields map[string]any) Logger {
	if l.filter != nil {
		fields = l.filter.FilterFields(fields)
	}
	log := l.zlog.With().Fields(fields).Logger()
	return &ZeroLogger{zlog: &log, filter: l.filter}
}

// DebugEnabled reports whether debug events would be written.
func (l *ZeroLogger) DebugEnabled() bool {
	lvl := l.zlog.GetLevel()
	return lvl <= zerolog.DebugLevel && zerolog.GlobalLevel() <= zerolog.DebugLevel
}
