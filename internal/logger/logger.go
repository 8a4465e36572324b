// Package logger provides the process-wide structured logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Log is the global logger. It writes console output to stderr until Setup
// is called.
var Log = New(os.Stderr, zerolog.InfoLevel, "console")

// Logger wraps zerolog with key/value logging methods.
type Logger struct {
	z zerolog.Logger
}

// New creates a logger writing to w at the given level.
// format is "json" or "console"; anything else means console.
func New(w io.Writer, level zerolog.Level, format string) *Logger {
	if strings.ToLower(format) != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return &Logger{z: zerolog.New(w).Level(level).With().Timestamp().Logger()}
}

// ParseLevel maps debug, info, warn and error (any case) to zerolog levels.
// Unknown names mean info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zerolog.DebugLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Setup replaces the global logger. Call it once at startup, before any
// goroutine logs.
func Setup(level, format string) {
	Log = New(os.Stderr, ParseLevel(level), format)
}

// With returns a child logger that adds the key/value pairs to every event.
func (l *Logger) With(args ...any) *Logger {
	ctx := l.z.With()
	for i := 0; i+1 < len(args); i += 2 {
		ctx = ctx.Interface(key(args[i]), args[i+1])
	}
	return &Logger{z: ctx.Logger()}
}

// Debug logs at debug level with variadic key/value pairs.
func (l *Logger) Debug(msg string, args ...any) {
	emit(l.z.Debug(), msg, args)
}

// Info logs at info level with variadic key/value pairs.
func (l *Logger) Info(msg string, args ...any) {
	emit(l.z.Info(), msg, args)
}

// Warn logs at warn level with variadic key/value pairs.
func (l *Logger) Warn(msg string, args ...any) {
	emit(l.z.Warn(), msg, args)
}

// Error logs at error level with variadic key/value pairs.
// An error value under the key "err" becomes zerolog's "error" field.
func (l *Logger) Error(msg string, args ...any) {
	emit(l.z.Error(), msg, args)
}

// emit adds the pairs and sends the event. A trailing key without a value is
// dropped. A nil event (level disabled) is a no-op.
func emit(e *zerolog.Event, msg string, args []any) {
	if e == nil {
		return
	}
	for i := 0; i+1 < len(args); i += 2 {
		k := key(args[i])
		if err, ok := args[i+1].(error); ok {
			if k == "err" {
				e = e.Err(err)
			} else {
				e = e.AnErr(k, err)
			}
			continue
		}
		e = e.Interface(k, args[i+1])
	}
	e.Msg(msg)
}

func key(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", k)
}
