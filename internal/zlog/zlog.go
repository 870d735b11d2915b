// Package zlog provides the process-wide structured logger.
package zlog

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	once   sync.Once
	logger *zap.Logger
)

// Init builds the process-wide logger. Safe to call more than once;
// only the first call takes effect.
func Init(production bool) {
	once.Do(func() {
		var cfg zap.Config
		if production {
			cfg = zap.NewProductionConfig()
		} else {
			cfg = zap.NewDevelopmentConfig()
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		l, err := cfg.Build()
		if err != nil {
			// Logging is ambient infrastructure; if it can't be built we still
			// want the process to run with a sane default rather than panic.
			l = zap.NewNop()
		}
		logger = l
	})
}

// L returns the process-wide logger. If Init was never called, it
// initializes one on first use: production config when GO_ENV is
// "production", development config otherwise.
func L() *zap.Logger {
	if logger == nil {
		Init(os.Getenv("GO_ENV") == "production")
	}
	return logger
}

// Sync flushes any buffered log entries. Call before process exit.
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}

// With returns a child logger with the given fields.
func With(fields ...zap.Field) *zap.Logger {
	return L().With(fields...)
}
