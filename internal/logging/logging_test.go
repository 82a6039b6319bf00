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
	"time"
)

// captureLogOutput redirects the default logger to a buffer at debug level
// while f runs.
func captureLogOutput(f func()) string {
	var buf bytes.Buffer
	oldLogger := defaultLogger
	defaultLogger = slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	f()
	defaultLogger = oldLogger
	return buf.String()
}

func decodeLine(t *testing.T, out string) map[string]any {
	t.Helper()
	var m map[string]any
	line := strings.TrimSpace(strings.Split(strings.TrimSpace(out), "\n")[0])
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("output %q is not JSON: %v", out, err)
	}
	return m
}

func TestInitLoggerWithWriter(t *testing.T) {
	tests := []struct {
		name      string
		level     Level
		format    Format
		logFunc   func()
		wantEmpty bool
		contains  string
	}{
		{"json info", LevelInfo, FormatJSON, func() { Info("hello") }, false, `"msg":"hello"`},
		{"text warn", LevelWarn, FormatText, func() { Warn("careful") }, false, "msg=careful"},
		{"debug filtered at info", LevelInfo, FormatJSON, func() { Debug("hidden") }, true, ""},
		{"error passes at error", LevelError, FormatText, func() { Error("bad") }, false, "level=ERROR"},
		{"unknown level defaults to info", Level(42), FormatJSON, func() { Info("x") }, false, `"level":"INFO"`},
	}
	defer InitLogger(LevelWarn, FormatText)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			InitLoggerWithWriter(&buf, tt.level, tt.format)
			tt.logFunc()
			out := buf.String()
			if tt.wantEmpty {
				if out != "" {
					t.Errorf("expected no output, got %q", out)
				}
				return
			}
			if !strings.Contains(out, tt.contains) {
				t.Errorf("output %q does not contain %q", out, tt.contains)
			}
		})
	}
}

func TestReplaceAttrTimestamp(t *testing.T) {
	defer InitLogger(LevelWarn, FormatText)
	var buf bytes.Buffer
	InitLoggerWithWriter(&buf, LevelInfo, FormatJSON)
	Info("stamp")

	m := decodeLine(t, buf.String())
	ts, ok := m["time"].(string)
	if !ok {
		t.Fatalf("missing time in %v", m)
	}
	if _, err := time.Parse(time.RFC3339, ts); err != nil {
		t.Errorf("time %q is not RFC3339: %v", ts, err)
	}
}

func TestParseLevelAndFormat(t *testing.T) {
	levels := map[string]Level{
		"debug": LevelDebug, "INFO": LevelInfo, "warn": LevelWarn,
		"warning": LevelWarn, "error": LevelError, "": LevelInfo, "loud": LevelInfo,
	}
	for in, want := range levels {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
	if ParseFormat("JSON") != FormatJSON || ParseFormat("text") != FormatText || ParseFormat("") != FormatText {
		t.Error("ParseFormat mapping is wrong")
	}
}

func TestRunID(t *testing.T) {
	id := NewRunID()
	if len(id) != 36 {
		t.Errorf("NewRunID() = %q, want a UUID", id)
	}
	if NewRunID() == id {
		t.Error("NewRunID returned the same id twice")
	}

	ctx := WithRunID(context.Background(), id)
	if got := GetRunID(ctx); got != id {
		t.Errorf("GetRunID() = %q, want %q", got, id)
	}
	if got := GetRunID(context.Background()); got != "" {
		t.Errorf("GetRunID(empty) = %q", got)
	}
	if got := GetRunID(context.WithValue(context.Background(), RunIDKey, 7)); got != "" {
		t.Errorf("GetRunID(non-string) = %q", got)
	}
}

func TestLoggerFromContext(t *testing.T) {
	out := captureLogOutput(func() {
		InfoContext(WithRunID(context.Background(), "run-1"), "ctx message")
	})
	m := decodeLine(t, out)
	if m["run_id"] != "run-1" {
		t.Errorf("run_id = %v, want run-1", m["run_id"])
	}

	out = captureLogOutput(func() {
		InfoContext(context.Background(), "no id")
	})
	if strings.Contains(out, "run_id") {
		t.Errorf("unexpected run_id in %q", out)
	}
}

func TestLevelHelpers(t *testing.T) {
	ctx := WithRunID(context.Background(), "r")
	tests := []struct {
		name  string
		fn    func()
		level string
	}{
		{"Debug", func() { Debug("m") }, "DEBUG"},
		{"Info", func() { Info("m") }, "INFO"},
		{"Warn", func() { Warn("m") }, "WARN"},
		{"Error", func() { Error("m") }, "ERROR"},
		{"DebugContext", func() { DebugContext(ctx, "m") }, "DEBUG"},
		{"InfoContext", func() { InfoContext(ctx, "m") }, "INFO"},
		{"WarnContext", func() { WarnContext(ctx, "m") }, "WARN"},
		{"ErrorContext", func() { ErrorContext(ctx, "m") }, "ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := decodeLine(t, captureLogOutput(tt.fn))
			if m["level"] != tt.level {
				t.Errorf("level = %v, want %s", m["level"], tt.level)
			}
		})
	}
}

func TestDomainHelpers(t *testing.T) {
	ctx := WithRunID(context.Background(), "r")
	tests := []struct {
		name string
		fn   func()
		msg  string
		keys map[string]any
	}{
		{
			name: "FileFormatted",
			fn:   func() { FileFormatted(ctx, "a.items", 3, 1500*time.Millisecond, "style", "Column") },
			msg:  "file_formatted",
			keys: map[string]any{"path": "a.items", "edits": float64(3), "duration_ms": float64(1500), "style": "Column", "run_id": "r"},
		},
		{
			name: "FileSkipped",
			fn:   func() { FileSkipped(ctx, "x.rules", "unsupported") },
			msg:  "file_skipped",
			keys: map[string]any{"path": "x.rules", "reason": "unsupported"},
		},
		{
			name: "RecordDropped",
			fn:   func() { RecordDropped(9, "type without name") },
			msg:  "record_dropped",
			keys: map[string]any{"line": float64(10), "reason": "type without name", "level": "DEBUG"},
		},
		{
			name: "StyleUnknown",
			fn:   func() { StyleUnknown("Tabular", "Column") },
			msg:  "style_unknown",
			keys: map[string]any{"style": "Tabular", "fallback": "Column", "level": "WARN"},
		},
		{
			name: "WebSocketEvent",
			fn:   func() { WebSocketEvent("client_connected", 2) },
			msg:  "websocket_event",
			keys: map[string]any{"event": "client_connected", "client_count": float64(2)},
		},
		{
			name: "ServerStartup",
			fn:   func() { ServerStartup("websocket", ":8765") },
			msg:  "server_startup",
			keys: map[string]any{"server_type": "websocket", "addr": ":8765"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := decodeLine(t, captureLogOutput(tt.fn))
			if m["msg"] != tt.msg {
				t.Errorf("msg = %v, want %s", m["msg"], tt.msg)
			}
			for k, want := range tt.keys {
				if m[k] != want {
					t.Errorf("%s = %v (%T), want %v", k, m[k], m[k], want)
				}
			}
		})
	}
}

func TestRunIDMiddleware(t *testing.T) {
	var seen string
	h := RunIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRunID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || rec.Header().Get("X-Run-ID") != seen {
		t.Errorf("generated run id %q, header %q", seen, rec.Header().Get("X-Run-ID"))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Run-ID", "client-id")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "client-id" {
		t.Errorf("run id = %q, want client-id", seen)
	}
}

func TestCombinedMiddleware(t *testing.T) {
	h := CombinedMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusOK)
	}))
	out := captureLogOutput(func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/format", nil))
	})
	m := decodeLine(t, out)
	if m["msg"] != "http_request" || m["status_code"] != float64(http.StatusTeapot) || m["path"] != "/format" {
		t.Errorf("unexpected log entry %v", m)
	}
	if m["run_id"] == nil {
		t.Error("run_id missing from request log")
	}
}

func TestResponseWriterWriteSetsStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}
	if _, err := rw.Write([]byte("ok")); err != nil {
		t.Fatal(err)
	}
	if !rw.written || rw.statusCode != http.StatusOK {
		t.Errorf("written=%v status=%d", rw.written, rw.statusCode)
	}
}

func TestResponseWriterHijackUnsupported(t *testing.T) {
	rw := &responseWriter{ResponseWriter: httptest.NewRecorder()}
	if _, _, err := rw.Hijack(); err == nil {
		t.Error("expected hijack to fail on a recorder")
	}
}
