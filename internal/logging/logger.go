// Package logging provides zap logger helpers.
package logging

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// L is the shared process-level logger. It is a no-op logger until Init
// is called, so packages may log during early startup without a nil check.
var L = zap.NewNop()

var initOnce sync.Once

// Init installs the shared logger. It is safe to call multiple times;
// only the first call has any effect.
func Init() {
	initOnce.Do(func() {
		logger, err := New(false)
		if err != nil {
			// Nothing sensible to do this early; keep the no-op logger.
			return
		}
		L = logger
	})
}

// New builds a zap.Logger configured for development or production.
func New(development bool) (*zap.Logger, error) {
	if development {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		logger, err := cfg.Build()
		if err != nil {
			return nil, fmt.Errorf("build dev logger: %w", err)
		}
		return logger, nil
	}
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = false
	cfg.EncoderConfig.TimeKey = "ts"
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build prod logger: %w", err)
	}
	return logger, nil
}
