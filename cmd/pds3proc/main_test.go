package main

import (
	"context"
	"log/slog"
	"testing"
)

// TestNewLogger checks level and format handling
func TestNewLogger(t *testing.T) {
	logger, err := newLogger("debug", "json")
	if err != nil {
		t.Fatalf("Failed to build logger: %v", err)
	}
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Expected debug level to be enabled")
	}

	logger, err = newLogger("warn", "text")
	if err != nil {
		t.Fatalf("Failed to build logger: %v", err)
	}
	if logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("Expected info level to be disabled at warn")
	}

	if _, err := newLogger("loud", "text"); err == nil {
		t.Error("Expected error for unknown level")
	}
	if _, err := newLogger("info", "xml"); err == nil {
		t.Error("Expected error for unknown format")
	}
}
