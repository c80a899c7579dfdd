package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewWritesToFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "zellij.log")

	logger, err := New(DebugConfig(file))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Debug("unit started", zap.String("unit", "router"))
	logger.Sync()

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "unit started") || !strings.Contains(string(data), "router") {
		t.Errorf("log = %q, want the debug entry", data)
	}
}

func TestNewLevelFilters(t *testing.T) {
	file := filepath.Join(t.TempDir(), "zellij.log")

	logger, err := New(Config{Level: "warn", File: file})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	logger.Sync()

	data, _ := os.ReadFile(file)
	if strings.Contains(string(data), "hidden") {
		t.Error("info entry should be filtered at warn level")
	}
	if !strings.Contains(string(data), "shown") {
		t.Error("warn entry missing")
	}
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"no file", Config{Level: "debug"}},
		{"bad level", Config{Level: "loud", File: filepath.Join(t.TempDir(), "x.log")}},
	}

	for _, tt := range tests {
		if _, err := New(tt.cfg); err == nil {
			t.Errorf("%s: New() expected error", tt.name)
		}
	}
}
