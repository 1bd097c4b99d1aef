package logbuffer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestCore_WhenNamedLoggerWrites_ThenTargetIsLoggerName(t *testing.T) {
	// Arrange
	buf := New(10)
	logger := zap.New(NewCore(buf, zapcore.DebugLevel)).Named("app_config")

	// Act
	logger.Info("Saving app config", zap.String("name", "prod"), zap.Int("attempt", 2))

	// Assert
	entries := buf.Snapshot()
	require.Len(t, entries, 1)
	assert.Equal(t, "app_config", entries[0].Target)
	assert.Equal(t, LevelInfo, entries[0].Level)
	assert.Equal(t, "Saving app config attempt=2 name=prod", entries[0].Message)
}

func TestCore_WhenUnnamed_ThenUsesDefaultTarget(t *testing.T) {
	buf := New(10)
	zap.New(NewCore(buf, zapcore.DebugLevel)).Warn("plain")

	entries := buf.Snapshot()
	require.Len(t, entries, 1)
	assert.Equal(t, DefaultTarget, entries[0].Target)
	assert.Equal(t, LevelWarn, entries[0].Level)
	assert.Equal(t, "plain", entries[0].Message)
}

func TestCore_WhenWithFields_ThenFieldsAreCarried(t *testing.T) {
	buf := New(10)
	logger := zap.New(NewCore(buf, zapcore.DebugLevel)).With(zap.String("collection", "configs"))

	logger.Error("write failed", zap.Error(errors.New("disk full")))

	entries := buf.Snapshot()
	require.Len(t, entries, 1)
	assert.Equal(t, LevelError, entries[0].Level)
	assert.Equal(t, "write failed collection=configs error=disk full", entries[0].Message)
}

func TestCore_WhenBelowLevel_ThenEntryIsSkipped(t *testing.T) {
	buf := New(10)
	logger := zap.New(NewCore(buf, zapcore.InfoLevel))

	logger.Debug("hidden")
	logger.Info("shown")

	assert.Equal(t, []string{"shown"}, messages(buf.Snapshot()))
}

func TestFromZap(t *testing.T) {
	assert.Equal(t, LevelDebug, FromZap(zapcore.DebugLevel))
	assert.Equal(t, LevelInfo, FromZap(zapcore.InfoLevel))
	assert.Equal(t, LevelWarn, FromZap(zapcore.WarnLevel))
	assert.Equal(t, LevelError, FromZap(zapcore.ErrorLevel))
	assert.Equal(t, LevelError, FromZap(zapcore.FatalLevel))
	assert.Equal(t, LevelTrace, FromZap(ZapTraceLevel))
}

func TestCore_WhenLoggedBelowDebug_ThenEntryIsTrace(t *testing.T) {
	// Arrange
	buf := New(10)
	logger := zap.New(NewCore(buf, ZapTraceLevel)).Named("sync")

	// Act
	logger.Log(ZapTraceLevel, "diff computed", zap.Int("changed", 2))

	// Assert
	entries := buf.Snapshot()
	require.Len(t, entries, 1)
	assert.Equal(t, LevelTrace, entries[0].Level)
	assert.Equal(t, "sync", entries[0].Target)
	assert.Equal(t, "diff computed changed=2", entries[0].Message)
}

func TestCore_WhenEnablerAtDebug_ThenTraceIsSkipped(t *testing.T) {
	// Arrange
	buf := New(10)
	logger := zap.New(NewCore(buf, zapcore.DebugLevel))

	// Act
	logger.Log(ZapTraceLevel, "hidden")

	// Assert
	assert.Zero(t, buf.Len())
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("warning")
	require.NoError(t, err)
	assert.Equal(t, LevelWarn, level)

	level, err = ParseLevel(" trace ")
	require.NoError(t, err)
	assert.Equal(t, LevelTrace, level)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestLevel_MarshalText_RoundTrips(t *testing.T) {
	text, err := LevelDebug.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", string(text))

	var l Level
	require.NoError(t, l.UnmarshalText([]byte("error")))
	assert.Equal(t, LevelError, l)
}
