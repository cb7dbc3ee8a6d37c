package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func parseLogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, line)
	}
	return entry
}

func TestLoggerWritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.Info(context.Background(), "provider call completed", Field{Key: "status", Value: 200})

	entry := parseLogLine(t, &buf)
	if entry["msg"] != "provider call completed" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v", entry["level"])
	}
	if entry["status"] != float64(200) {
		t.Errorf("status = %v", entry["status"])
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Error("entry should carry a timestamp")
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("warn", &buf)

	logger.Debug(context.Background(), "debug msg")
	logger.Info(context.Background(), "info msg")
	if buf.Len() != 0 {
		t.Errorf("below-level messages should be dropped, got %q", buf.String())
	}

	logger.Warn(context.Background(), "warn msg")
	if buf.Len() == 0 {
		t.Error("warn message should be written at warn level")
	}
}

func TestLoggerRedactsSensitiveFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.Info(context.Background(), "auth attempt",
		Field{Key: "token", Value: "eyJhbGciOi..."},
		Field{Key: "user", Value: "u1"},
	)

	entry := parseLogLine(t, &buf)
	if entry["token"] != "[REDACTED]" {
		t.Errorf("token = %v, want [REDACTED]", entry["token"])
	}
	if entry["user"] != "u1" {
		t.Errorf("user = %v, want u1", entry["user"])
	}
}

func TestLoggerWithCall(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	callLogger := logger.WithCall(CallMeta{Service: "resend", Endpoint: "/api/email", Method: "POST"})
	callLogger.Info(context.Background(), "email sent")

	entry := parseLogLine(t, &buf)
	if entry["call.service"] != "resend" {
		t.Errorf("call.service = %v", entry["call.service"])
	}
	if entry["call.endpoint"] != "/api/email" {
		t.Errorf("call.endpoint = %v", entry["call.endpoint"])
	}

	// The parent logger is unchanged.
	buf.Reset()
	logger.Info(context.Background(), "plain")
	entry = parseLogLine(t, &buf)
	if _, ok := entry["call.service"]; ok {
		t.Error("parent logger should not inherit call attributes")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
