package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"WARNING": slog.LevelWarn,
		" Debug ": slog.LevelDebug,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewJSONWritesRecords(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info", "json")
	log.Debug("hidden")
	log.Info("catalog reloaded", "items", 3)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected a single JSON record, got %q: %v", buf.String(), err)
	}
	if rec["msg"] != "catalog reloaded" {
		t.Errorf("msg = %v, want catalog reloaded", rec["msg"])
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-42")
	if got := RequestID(ctx); got != "req-42" {
		t.Errorf("RequestID = %q, want req-42", got)
	}
	if got := RequestID(context.Background()); got != "" {
		t.Errorf("RequestID on empty ctx = %q, want empty", got)
	}
}

func TestContextRequestIDAttached(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info", "json")
	ctx := WithRequestID(context.Background(), "req-7")
	log.InfoContext(ctx, "search executed")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decoding %q: %v", buf.String(), err)
	}
	if rec["request_id"] != "req-7" {
		t.Errorf("request_id = %v, want req-7", rec["request_id"])
	}

	buf.Reset()
	log.With("component", "catalog").Info("no context")
	if bytes.Contains(buf.Bytes(), []byte("request_id")) {
		t.Errorf("record without context carried a request id: %s", buf.String())
	}
}
