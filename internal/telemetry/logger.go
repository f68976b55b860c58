// logger.go — zap-backed structured logger with request-id correlation.
package telemetry

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a *zap.SugaredLogger so call sites talk in terms of the
// scheduler's own vocabulary (session, target, request) rather than raw
// zap fields.
type Logger struct {
	z *zap.SugaredLogger
}

// New builds a Logger writing JSON lines at the given level. level is one
// of "debug", "info", "warn", "error"; unrecognized values fall back to
// "info".
func New(level string) *Logger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	z, err := cfg.Build()
	if err != nil {
		// zap.NewProductionConfig().Build() only fails on a broken sink
		// configuration; fall back to a no-op core rather than panicking
		// a request path over a logging misconfiguration.
		z = zap.NewNop()
	}
	return &Logger{z: z.Sugar()}
}

// NewRequestID returns a fresh opaque request correlation id.
func NewRequestID() string {
	return uuid.NewString()
}

// With returns a derived Logger carrying the given structured fields in
// addition to this Logger's own, e.g. l.With("sessionId", id, "op", "goto").
func (l *Logger) With(kv ...any) *Logger {
	return &Logger{z: l.z.With(kv...)}
}

func (l *Logger) Debug(msg string, kv ...any) { l.z.Debugw(msg, kv...) }
func (l *Logger) Info(msg string, kv ...any)  { l.z.Infow(msg, kv...) }
func (l *Logger) Warn(msg string, kv ...any)  { l.z.Warnw(msg, kv...) }
func (l *Logger) Error(msg string, kv ...any) { l.z.Errorw(msg, kv...) }

// Sync flushes any buffered log entries. Call during clean shutdown.
func (l *Logger) Sync() error { return l.z.Sync() }

// Nop returns a Logger that discards everything, for tests that do not
// care about log output.
func Nop() *Logger { return &Logger{z: zap.NewNop().Sugar()} }
