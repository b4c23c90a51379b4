package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		level    LogLevel
		expected slog.Level
	}{
		{"debug level", LevelDebug, slog.LevelDebug},
		{"info level", LevelInfo, slog.LevelInfo},
		{"warn level", LevelWarn, slog.LevelWarn},
		{"error level", LevelError, slog.LevelError},
		{"upper case", LogLevel("DEBUG"), slog.LevelDebug},
		{"unknown falls back to info", LogLevel("verbose"), slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.level); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != LevelInfo {
		t.Errorf("Expected default level %s, got %s", LevelInfo, cfg.Level)
	}
	if cfg.Format != FormatText {
		t.Errorf("Expected default format %s, got %s", FormatText, cfg.Format)
	}
	if cfg.Output != "stderr" {
		t.Errorf("Expected default output stderr, got %s", cfg.Output)
	}
}

func TestNewWithFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "nmapcycle.log")

	logger, err := New(Config{Level: LevelInfo, Format: FormatText, Output: path})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("cycle started", "cycle_id", "abc")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "cycle started") {
		t.Errorf("Expected log file to contain message, got %q", string(data))
	}
}

func TestJSONFormatFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(Config{Level: LevelDebug, Format: FormatJSON}, &buf)

	logger.WithCycleID("c-1").WithMode("-sS").WithTarget("127.0.0.1").Info("invocation finished")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON output, got %q: %v", buf.String(), err)
	}
	for key, want := range map[string]string{
		"msg":      "invocation finished",
		"cycle_id": "c-1",
		"mode":     "-sS",
		"target":   "127.0.0.1",
	} {
		if entry[key] != want {
			t.Errorf("Expected %s=%q, got %v", key, want, entry[key])
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(Config{Level: LevelWarn, Format: FormatText}, &buf)

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("warn message should be logged")
	}
}

func TestDomainHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(Config{Level: LevelInfo, Format: FormatText}, &buf)

	logger.InfoCycle("cycle started", "c-2", "modes", 3)
	logger.ErrorInvocation("invocation failed", "-sU", "10.0.0.1", errors.New("exit status 1"))

	out := buf.String()
	for _, want := range []string{"component=cycle", "cycle_id=c-2", "modes=3", "mode=-sU", "target=10.0.0.1", `error="exit status 1"`} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got %q", want, out)
		}
	}
}

func TestSetDefault(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	var buf bytes.Buffer
	SetDefault(NewWithWriter(Config{Level: LevelDebug}, &buf))

	Debug("debug line")
	Info("info line")
	Warn("warn line")
	Error("error line")

	for _, want := range []string{"debug line", "info line", "warn line", "error line"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("Expected default logger output to contain %q", want)
		}
	}
}
