package logbuffer

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// Level is the severity of a buffered log entry.
type Level int8

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

// String returns the upper-case name used in text exports.
func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	case LevelTrace:
		return "TRACE"
	default:
		return fmt.Sprintf("LEVEL(%d)", int8(l))
	}
}

// MarshalText encodes the level as its upper-case name.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText accepts level names in any case.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseLevel converts a level name ("error", "WARN", "warning", ...) to a Level.
func ParseLevel(name string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "ERROR":
		return LevelError, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "INFO":
		return LevelInfo, nil
	case "DEBUG":
		return LevelDebug, nil
	case "TRACE":
		return LevelTrace, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// ZapTraceLevel is the zap level recorded as LevelTrace. zap has no trace
// level of its own; log at it with (*zap.Logger).Log.
const ZapTraceLevel = zapcore.DebugLevel - 1

// FromZap maps a zap level onto the buffer's five levels.
// Everything at or above zap's ErrorLevel collapses to LevelError and
// everything below DebugLevel to LevelTrace.
func FromZap(level zapcore.Level) Level {
	switch {
	case level >= zapcore.ErrorLevel:
		return LevelError
	case level == zapcore.WarnLevel:
		return LevelWarn
	case level == zapcore.InfoLevel:
		return LevelInfo
	case level == zapcore.DebugLevel:
		return LevelDebug
	default:
		return LevelTrace
	}
}
