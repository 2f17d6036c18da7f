package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewHandler(&buf, "info", "json")).Info("ingestion complete", "inserted", 3)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("json output not parseable: %v (%s)", err, buf.String())
	}
	if line["msg"] != "ingestion complete" || line["inserted"] != float64(3) {
		t.Errorf("line = %v", line)
	}

	buf.Reset()
	slog.New(NewHandler(&buf, "warn", "text")).Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %s", buf.String())
	}
}

func withDefault(t *testing.T, buf *bytes.Buffer) {
	t.Helper()
	prev := slog.Default()
	slog.SetDefault(slog.New(NewHandler(buf, "debug", "text")))
	t.Cleanup(func() { slog.SetDefault(prev) })
}

func TestFromContext_RequestID(t *testing.T) {
	var buf bytes.Buffer
	withDefault(t, &buf)

	var ctx context.Context
	h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx = r.Context()
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	FromContext(ctx).Info("hello")
	if !strings.Contains(buf.String(), "request_id=") {
		t.Errorf("log line missing request_id: %s", buf.String())
	}
}

func TestNewContext(t *testing.T) {
	var buf bytes.Buffer
	withDefault(t, &buf)

	ctx := NewContext(context.Background(), slog.Default().With("batch_id", "b-1"))
	WithFields(ctx, "path", "headers.json").Debug("headers saved")

	out := buf.String()
	if !strings.Contains(out, "batch_id=b-1") || !strings.Contains(out, "path=headers.json") {
		t.Errorf("log line = %s, want batch_id and path", out)
	}
}
