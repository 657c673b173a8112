// Package logging provides zap logger helpers.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// L is the process-global logger. It is replaced by InitLogger and defaults
// to a no-op logger so early code paths can log without panics.
var L = zap.NewNop()

// InitLogger builds the global logger. Verbose selects the development
// configuration with debug level and colored output.
func InitLogger(verbose bool) {
	logger, err := New(verbose)
	if err != nil {
		// Fall back to a bare production logger rather than dying before
		// the CLI has even parsed its flags.
		logger, _ = zap.NewProduction()
	}
	L = logger
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
