// Package diag wraps zap into the logger shape Encoder/Decoder accept:
// a no-op default, an optional rotated log file via lumberjack, and a
// fixed set of fields (operation ID, stage) so every log line from the
// codec pipeline carries the same shape.
package diag

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileConfig configures rotation when logging to a file path, mirroring
// the MaxSize/MaxBackups/MaxAge fields the pack's lumberjack call sites
// set explicitly rather than relying on defaults.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

const (
	defaultMaxSizeMB  = 10
	defaultMaxBackups = 3
	defaultMaxAgeDays = 28
)

// New builds a zap.Logger. With an empty FileConfig it returns
// zap.NewNop() so the library stays silent unless a caller opts in; with
// a non-empty Path it routes through a rotating lumberjack writer at
// Debug level.
func New(cfg FileConfig) *zap.Logger {
	if cfg.Path == "" {
		return zap.NewNop()
	}
	maxSize := cfg.MaxSizeMB
	if maxSize == 0 {
		maxSize = defaultMaxSizeMB
	}
	maxBackups := cfg.MaxBackups
	if maxBackups == 0 {
		maxBackups = defaultMaxBackups
	}
	maxAge := cfg.MaxAgeDays
	if maxAge == 0 {
		maxAge = defaultMaxAgeDays
	}
	writer := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		MaxAge:     maxAge,
	}
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(writer), zapcore.DebugLevel)
	return zap.New(core)
}

// WithOp returns a child logger with the op_id field set, used to
// correlate every log line emitted during one Encode/Decode call.
func WithOp(l *zap.Logger, opID string) *zap.Logger {
	return l.With(zap.String("op_id", opID))
}
