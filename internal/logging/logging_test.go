package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	quiet, err := New(false)
	if err != nil {
		t.Fatalf("New(false): %v", err)
	}
	if quiet.Core().Enabled(zapcore.WarnLevel) {
		t.Error("normal logger should drop warnings")
	}
	if !quiet.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("normal logger should keep errors")
	}

	debug, err := New(true)
	if err != nil {
		t.Fatalf("New(true): %v", err)
	}
	if !debug.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug logger should keep debug entries")
	}
}
