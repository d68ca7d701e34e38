package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
)

func TestCloudRunHandlerWritesSeverityAndData(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(newCloudRunHandler(&buf, slog.LevelInfo)).With("restore_id", "r-1")

	log.Warn("record restore failed", "step", "accounts", "error", errors.New("boom"))

	var event map[string]any
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if event["severity"] != "WARNING" {
		t.Fatalf("severity = %v, want WARNING", event["severity"])
	}
	data, ok := event["data"].(map[string]any)
	if !ok {
		t.Fatalf("missing data: %#v", event)
	}
	if data["restore_id"] != "r-1" || data["step"] != "accounts" || data["error"] != "boom" {
		t.Fatalf("unexpected data: %#v", data)
	}
}

func TestCloudRunHandlerFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(newCloudRunHandler(&buf, slog.LevelWarn))

	log.Info("ignored")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below level, got %q", buf.String())
	}
}

func TestNewParsesLevel(t *testing.T) {
	log := New("debug", NewTestHandler)
	if !log.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatalf("expected debug to be enabled")
	}
	log = New("bogus", NewTestHandler)
	if log.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatalf("unknown level should default to info")
	}
}
