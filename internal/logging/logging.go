package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.SugaredLogger

// Init configures the global logger. Runs are quiet by default (warn
// and above); verbose raises the level to info, debug switches to full
// development output with caller annotations.
func Init(verbose, debug bool) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		}
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.DisableStacktrace = true
	}
	cfg.Encoding = "console"

	built, err := cfg.Build()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	logger = built.Sugar()
}

// L returns the global logger, falling back to a quiet default when
// Init has not been called (library use, tests).
func L() *zap.SugaredLogger {
	if logger == nil {
		Init(false, false)
	}
	return logger
}

// Sync flushes any buffered log entries. Safe to call on exit paths
// before the logger is initialized.
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
