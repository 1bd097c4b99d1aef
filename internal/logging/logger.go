package logging

import (
	"os"

	"github.com/dhima/edge-cache/internal/logbuffer"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger defines the interface for structured logging operations.
// This abstraction allows for testing and swapping implementations.
type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	Fatal(msg string, fields ...zap.Field)
	With(fields ...zap.Field) Logger
	// Named scopes the logger; the name is the target recorded in the log buffer.
	Named(name string) Logger
	// Zap exposes the underlying logger for middleware that needs *zap.Logger.
	Zap() *zap.Logger
	Sync() error
}

// zapLogger wraps zap.Logger to implement our Logger interface.
type zapLogger struct {
	logger *zap.Logger
}

type options struct {
	buffer      *logbuffer.Buffer
	bufferLevel zapcore.Level
	encoding    string
}

// Option configures NewLogger.
type Option func(*options)

// WithBuffer tees every entry at or above DebugLevel into buf.
// The tee sits outside the production sampler, so buffered history is complete.
func WithBuffer(buf *logbuffer.Buffer) Option {
	return func(o *options) { o.buffer = buf }
}

// WithBufferLevel sets the minimum level recorded in the buffer.
func WithBufferLevel(level zapcore.Level) Option {
	return func(o *options) { o.bufferLevel = level }
}

// WithEncoding overrides the encoder ("json" or "console").
func WithEncoding(encoding string) Option {
	return func(o *options) { o.encoding = encoding }
}

// NewLogger creates a new production-ready logger based on environment.
// Environment can be "development" or "production".
func NewLogger(environment, logLevel string, opts ...Option) (Logger, error) {
	o := options{bufferLevel: zapcore.DebugLevel}
	for _, opt := range opts {
		opt(&o)
	}

	var config zap.Config

	if environment == "development" {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	if o.encoding != "" {
		config.Encoding = o.encoding
	}

	// Parse log level
	level, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		level = zapcore.InfoLevel // default to info
	}
	config.Level = zap.NewAtomicLevelAt(level)

	// Enable sampling to prevent log storms in production
	if environment == "production" {
		config.Sampling = &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		}
	}

	buildOpts := []zap.Option{
		zap.AddCallerSkip(1), // Skip one level to show correct caller
		zap.AddStacktrace(zapcore.ErrorLevel),
	}
	if o.buffer != nil {
		bufferCore := logbuffer.NewCore(o.buffer, o.bufferLevel)
		buildOpts = append(buildOpts, zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewTee(core, bufferCore)
		}))
	}

	logger, err := config.Build(buildOpts...)
	if err != nil {
		return nil, err
	}

	return &zapLogger{logger: logger}, nil
}

// NewBufferLogger creates a logger that writes only into buf, at every level.
func NewBufferLogger(buf *logbuffer.Buffer) Logger {
	core := logbuffer.NewCore(buf, zapcore.DebugLevel)
	return &zapLogger{logger: zap.New(core)}
}

// NewDevelopmentLogger creates a logger optimized for development.
func NewDevelopmentLogger(opts ...Option) (Logger, error) {
	return NewLogger("development", "debug", opts...)
}

// NewProductionLogger creates a logger optimized for production.
func NewProductionLogger(opts ...Option) (Logger, error) {
	return NewLogger("production", "info", opts...)
}

// NewFromEnv creates a logger based on environment variables.
// Reads LOG_LEVEL and ENVIRONMENT from env.
func NewFromEnv(opts ...Option) (Logger, error) {
	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = "production"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	return NewLogger(environment, logLevel, opts...)
}

func (l *zapLogger) Debug(msg string, fields ...zap.Field) {
	l.logger.Debug(msg, fields...)
}

func (l *zapLogger) Info(msg string, fields ...zap.Field) {
	l.logger.Info(msg, fields...)
}

func (l *zapLogger) Warn(msg string, fields ...zap.Field) {
	l.logger.Warn(msg, fields...)
}

func (l *zapLogger) Error(msg string, fields ...zap.Field) {
	l.logger.Error(msg, fields...)
}

// Fatal logs a fatal-level message and exits the application.
func (l *zapLogger) Fatal(msg string, fields ...zap.Field) {
	l.logger.Fatal(msg, fields...)
}

// With creates a child logger with additional fields.
func (l *zapLogger) With(fields ...zap.Field) Logger {
	return &zapLogger{logger: l.logger.With(fields...)}
}

func (l *zapLogger) Named(name string) Logger {
	return &zapLogger{logger: l.logger.Named(name)}
}

func (l *zapLogger) Zap() *zap.Logger {
	return l.logger.WithOptions(zap.AddCallerSkip(-1))
}

// Sync flushes any buffered log entries.
// Should be called before application exits.
func (l *zapLogger) Sync() error {
	return l.logger.Sync()
}

// NoOpLogger is a logger that does nothing. Useful for testing.
type NoOpLogger struct{}

func (l *NoOpLogger) Debug(msg string, fields ...zap.Field) {}
func (l *NoOpLogger) Info(msg string, fields ...zap.Field)  {}
func (l *NoOpLogger) Warn(msg string, fields ...zap.Field)  {}
func (l *NoOpLogger) Error(msg string, fields ...zap.Field) {}
func (l *NoOpLogger) Fatal(msg string, fields ...zap.Field) {}
func (l *NoOpLogger) With(fields ...zap.Field) Logger       { return l }
func (l *NoOpLogger) Named(name string) Logger              { return l }
func (l *NoOpLogger) Zap() *zap.Logger                      { return zap.NewNop() }
func (l *NoOpLogger) Sync() error                           { return nil }

// NewNoOpLogger creates a no-op logger for testing.
func NewNoOpLogger() Logger {
	return &NoOpLogger{}
}
