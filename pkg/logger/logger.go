package logger

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logger configuration
type Config struct {
	Level  string // debug, info, warn, error
	Format string // console or json

	// Optional rotating log file. Empty means stderr only.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Field is a structured log field
type Field = zap.Field

// Logger wraps a zap logger with the subset of behaviour used across the services
type Logger struct {
	zap *zap.Logger
}

// New creates a new logger from the given configuration
func New(cfg Config) (*Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch strings.ToLower(cfg.Format) {
	case "", "console":
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	case "json":
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	default:
		return nil, fmt.Errorf("unsupported log format: %s", cfg.Format)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level),
	}

	if cfg.File != "" {
		hook := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		// Files always get JSON so they stay machine readable
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(hook),
			level,
		))
	}

	return &Logger{zap: zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))}, nil
}

// NewNop returns a logger that discards everything
func NewNop() *Logger {
	return &Logger{zap: zap.NewNop()}
}

// FromZap wraps an existing zap logger
func FromZap(l *zap.Logger) *Logger {
	return &Logger{zap: l}
}

func parseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(level) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unsupported log level: %s", level)
	}
}

// Named returns a child logger with the given name segment
func (l *Logger) Named(name string) *Logger {
	return &Logger{zap: l.zap.Named(name)}
}

// With returns a child logger carrying the given fields
func (l *Logger) With(fields ...Field) *Logger {
	return &Logger{zap: l.zap.With(fields...)}
}

func (l *Logger) Debug(msg string, fields ...Field) { l.zap.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...Field)  { l.zap.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.zap.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...Field) { l.zap.Error(msg, fields...) }

// Sync flushes buffered log entries
func (l *Logger) Sync() error {
	return l.zap.Sync()
}

// Field constructors

func String(key, val string) Field                 { return zap.String(key, val) }
func Int(key string, val int) Field                { return zap.Int(key, val) }
func Int64(key string, val int64) Field            { return zap.Int64(key, val) }
func Float64(key string, val float64) Field        { return zap.Float64(key, val) }
func Bool(key string, val bool) Field              { return zap.Bool(key, val) }
func Duration(key string, val time.Duration) Field { return zap.Duration(key, val) }
func Time(key string, val time.Time) Field         { return zap.Time(key, val) }
func Any(key string, val any) Field                { return zap.Any(key, val) }
func Error(err error) Field                        { return zap.Error(err) }
