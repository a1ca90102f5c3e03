package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLineHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: HumanFormat, Level: "info", Output: &buf})

	logger.Info("String created", "id", 3, "value", "Racecar")

	output := buf.String()
	for _, want := range []string{"[info]", "String created", " | ", "id=3", "value=Racecar"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
}

func TestLineHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "warn", Output: &buf})

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	output := buf.String()
	if strings.Contains(output, "debug message") || strings.Contains(output, "info message") {
		t.Errorf("messages below warn should be filtered, got: %s", output)
	}
	if !strings.Contains(output, "warn message") || !strings.Contains(output, "error message") {
		t.Errorf("warn and error should be logged, got: %s", output)
	}
}

func TestLineHandler_WithGroupAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf}).With("component", "api").WithGroup("req")

	logger.Info("handled", "status", 201)

	output := buf.String()
	if !strings.Contains(output, "component=api") {
		t.Errorf("expected pre-set attr in output, got: %s", output)
	}
	if !strings.Contains(output, "req.status=201") {
		t.Errorf("expected grouped attr in output, got: %s", output)
	}
}

func TestLineHandler_RequestIDPrefix(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf})

	logger.Info("HTTP request", "method", "GET", RequestIDKey, "abc-123", "status", 200)

	output := buf.String()
	if !strings.Contains(output, "[info] (req=abc-123) HTTP request | method=GET status=200") {
		t.Errorf("expected request ID prefix, got: %s", output)
	}
	if strings.Contains(output, "requestID=") {
		t.Errorf("request ID should not be repeated as an attribute, got: %s", output)
	}
}

func TestLineHandler_NoRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf}).With(RequestIDKey, "")

	logger.Info("Seed applied", "created", 2)

	output := buf.String()
	if strings.Contains(output, "(req=") {
		t.Errorf("empty request ID should not produce a prefix, got: %s", output)
	}
	if !strings.Contains(output, "[info] Seed applied | created=2") {
		t.Errorf("unexpected line: %s", output)
	}
}

func TestLineHandler_QuotesAndGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf})

	logger.Warn("Skipping duplicate seed value",
		"value", "hello world",
		slog.Group("store", slog.String("backend", "sqlite"), slog.Int("records", 4)),
	)

	output := buf.String()
	for _, want := range []string{
		"[warn] Skipping duplicate seed value",
		`value="hello world"`,
		"store.backend=sqlite",
		"store.records=4",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
}

func TestLineHandler_TimestampLayout(t *testing.T) {
	var buf bytes.Buffer
	h := NewLineHandler(&buf, nil)

	r := slog.NewRecord(time.Date(2025, 10, 21, 9, 30, 15, 123000000, time.FixedZone("X", 3600)), slog.LevelError, "boom", 0)
	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	if got, want := buf.String(), "2025-10-21T08:30:15.123Z [error] boom\n"; got != want {
		t.Errorf("line = %q, want %q", got, want)
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: JSONFormat, Level: "debug", Output: &buf})

	logger.Debug("lookup", "value", "hello")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	if entry["msg"] != "lookup" {
		t.Errorf("msg = %v, want lookup", entry["msg"])
	}
	if entry["value"] != "hello" {
		t.Errorf("value = %v, want hello", entry["value"])
	}
}

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := LevelFromString(tt.in); got != tt.want {
			t.Errorf("LevelFromString(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("JSON") != JSONFormat {
		t.Error("ParseFormat should be case-insensitive for json")
	}
	if ParseFormat("") != HumanFormat {
		t.Error("ParseFormat should default to human")
	}
}

func TestNewDiscardLogger(t *testing.T) {
	logger := NewDiscardLogger()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Error("discard logger should not be enabled for any level")
	}
}
