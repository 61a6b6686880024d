package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestLDefaultsToQuiet(t *testing.T) {
	old := logger
	logger = nil
	t.Cleanup(func() { logger = old })

	l := L()
	if l == nil {
		t.Fatal("L() returned nil")
	}

	core := l.Desugar().Core()
	if core.Enabled(zapcore.InfoLevel) {
		t.Error("default logger must not log at info level")
	}
	if !core.Enabled(zapcore.WarnLevel) {
		t.Error("default logger must log at warn level")
	}
}

func TestInitVerbose(t *testing.T) {
	old := logger
	t.Cleanup(func() { logger = old })

	Init(true, false)

	core := L().Desugar().Core()
	if !core.Enabled(zapcore.InfoLevel) {
		t.Error("verbose logger must log at info level")
	}
	if core.Enabled(zapcore.DebugLevel) {
		t.Error("verbose logger must not log at debug level")
	}
}

func TestInitDebug(t *testing.T) {
	old := logger
	t.Cleanup(func() { logger = old })

	Init(false, true)

	if !L().Desugar().Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug logger must log at debug level")
	}
}

func TestSyncBeforeInit(t *testing.T) {
	old := logger
	logger = nil
	t.Cleanup(func() { logger = old })

	// Must not panic without an initialized logger.
	Sync()
}

func TestSyncAfterInit(t *testing.T) {
	old := logger
	t.Cleanup(func() { logger = old })

	Init(false, false)
	Sync()
}
