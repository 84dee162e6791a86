package logger

import "testing"

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"dev", "prod", "PRODUCTION", ""} {
		l, err := New(mode)
		if err != nil {
			t.Fatalf("New(%q): %v", mode, err)
		}
		l.With("mode", mode).Debug("test message", "k", 1)
	}
}

func TestNop(t *testing.T) {
	l := NewNop().With("service", "test")
	l.Info("ignored")
	l.Warn("ignored", "err", "x")
	l.Sync()
}
