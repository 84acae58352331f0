package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		m := map[string]any{}
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("bad json line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestBuild_FieldsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	zl := Build(Config{Level: "warn", Component: "gateway", Version: "v1"}, &buf)

	zl.Info().Msg("dropped")
	zl.Warn().Msg("kept")

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %s", len(lines), buf.String())
	}
	l := lines[0]
	if l["msg"] != "kept" || l["level"] != "warn" {
		t.Fatalf("unexpected line: %v", l)
	}
	if l["component"] != "gateway" || l["version"] != "v1" {
		t.Fatalf("missing static fields: %v", l)
	}
	if _, ok := l["timestamp"]; !ok {
		t.Fatalf("missing timestamp: %v", l)
	}
}

func TestSlogBridge_ContextAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	zl := Build(Config{Level: "debug"}, &buf)
	log := NewSlog(&zl).With("route", "/busdata")

	ctx := WithRequestID(context.Background(), "abc123")
	ctx = WithComponent(ctx, "http")
	log.ErrorContext(ctx, "API error",
		"status", 503,
		"reason", "Service Unavailable",
		"err", errors.New("boom"),
		slog.Group("upstream", slog.String("host", "example.test")),
	)

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	l := lines[0]
	want := map[string]any{
		"level":         "error",
		"msg":           "API error",
		"request_id":    "abc123",
		"component":     "http",
		"route":         "/busdata",
		"reason":        "Service Unavailable",
		"err":           "boom",
		"upstream.host": "example.test",
	}
	for k, v := range want {
		if l[k] != v {
			t.Fatalf("%s=%v want %v (line %v)", k, l[k], v, l)
		}
	}
	if l["status"] != float64(503) {
		t.Fatalf("status=%v want 503", l["status"])
	}
}

func TestSlogBridge_EnabledFollowsLevel(t *testing.T) {
	var buf bytes.Buffer
	zl := Build(Config{Level: "info"}, &buf)
	log := NewSlog(&zl)

	if log.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatalf("debug should be disabled at info level")
	}
	log.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug line leaked: %s", buf.String())
	}
}

func TestWithRequestID_GeneratesWhenEmpty(t *testing.T) {
	ctx := WithRequestID(context.Background(), "")
	if id := RequestID(ctx); len(id) != 16 {
		t.Fatalf("generated id=%q want 16 hex chars", id)
	}
}
