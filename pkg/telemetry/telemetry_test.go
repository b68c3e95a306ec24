package telemetry

import (
	"log/slog"
	"testing"
)

func TestSetupReturnsLoggerAndSetsDefault(t *testing.T) {
	logger := Setup(Config{ServiceName: "replicasim", Replica: 3, LogLevel: "info", LogFormat: "json"})
	if logger == nil {
		t.Fatal("Setup() returned nil")
	}
	if slog.Default() != logger {
		t.Error("Setup() did not install the logger as slog default")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetupHandlesBothFormats(t *testing.T) {
	for _, format := range []string{"json", "text", "invalid"} {
		logger := Setup(Config{ServiceName: "s", LogLevel: "info", LogFormat: format})
		if logger == nil {
			t.Fatalf("Setup() with format %q returned nil", format)
		}
	}
}
