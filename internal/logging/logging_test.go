package logging

import "testing"

func TestInit(t *testing.T) {
	for _, verbose := range []bool{false, true} {
		if err := Init(verbose); err != nil {
			t.Fatalf("Init(verbose=%v) failed: %v", verbose, err)
		}
		if L() == nil {
			t.Fatal("L() returned nil after Init")
		}
	}
}

func TestLWithoutInitFallsBackToNop(t *testing.T) {
	globalLogger = nil

	logger := L()
	if logger == nil {
		t.Fatal("L() returned nil without Init")
	}

	// Helpers must be safe before Init.
	Debug("debug")
	Info("info")
	Warn("warn")
	Error("error")
	if err := Sync(); err != nil {
		t.Errorf("Sync failed: %v", err)
	}
}
