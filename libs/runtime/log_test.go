package runtime

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLoggerJSONCarriesService(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "availability-service", LogOptions{Level: "info"})
	logger.Debug("hidden")
	logger.Info("hello", "tutor_id", "t-1")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected a single JSON line, got %q: %v", buf.String(), err)
	}
	if entry["service"] != "availability-service" {
		t.Fatalf("expected service attribute, got %v", entry["service"])
	}
	if entry["tutor_id"] != "t-1" {
		t.Fatalf("expected tutor_id attribute, got %v", entry["tutor_id"])
	}
}

func TestNewLoggerTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "svc", LogOptions{Format: "text"})
	logger.Info("booking saved")
	if !bytes.Contains(buf.Bytes(), []byte("booking saved")) {
		t.Fatalf("expected message in text output, got %q", buf.String())
	}
}
