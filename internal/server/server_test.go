package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/FocuswithJustin/ohfmt/internal/config"
)

func newTestServer(t *testing.T, discover bool) (*Server, *httptest.Server) {
	t.Helper()
	s := New(Config{Defaults: config.Default(), Discover: discover, Version: "test"})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func dial(t *testing.T, ts *httptest.Server, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/format"
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, req any) Response {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var data []byte
	switch v := req.(type) {
	case string:
		data = []byte(v)
	default:
		var err error
		if data, err = json.Marshal(v); err != nil {
			t.Fatal(err)
		}
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("write: %v", err)
	}
	var resp Response
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("read: %v", err)
	}
	return resp
}

func TestFormatRequests(t *testing.T) {
	_, ts := newTestServer(t, false)
	conn := dial(t, ts, nil)

	tests := []struct {
		name     string
		req      any
		wantText string
		wantKind string
		edits    int
	}{
		{
			name:     "items",
			req:      Request{ID: "1", Path: "a.items", Lines: []string{`Switch   A "L"`, ""}},
			wantText: "Switch\tA\t\"L\"\n",
			edits:    1,
		},
		{
			name:     "already formatted",
			req:      Request{Path: "a.items", Lines: []string{"Switch\tA"}},
			wantText: "Switch\tA",
		},
		{
			name:     "range",
			req:      Request{Path: "a.items", Lines: []string{"Switch  A", "Switch  B"}, Range: &LineRange{First: 1, Last: 1}},
			wantText: "Switch  A\nSwitch\tB",
			edits:    1,
		},
		{
			name:     "style override",
			req:      Request{Path: "a.items", Lines: []string{`Switch A "L"`}, Options: json.RawMessage(`{"formatStyle":"Multiline"}`)},
			wantText: "Switch\t\tA\n\t\t\t\"L\"",
			edits:    1,
		},
		{
			name:     "whole file",
			req:      Request{Path: "a.items", Lines: []string{"Switch  A", ""}, Whole: true},
			wantText: "Switch\tA\n",
			edits:    1,
		},
		{
			name:     "unsupported",
			req:      Request{Path: "a.rules", Lines: []string{"rule"}},
			wantKind: "unsupported",
		},
		{
			name:     "no document",
			req:      Request{Path: "a.items"},
			wantKind: "no_document",
		},
		{
			name:     "bad range",
			req:      Request{Path: "a.items", Lines: []string{"x"}, Range: &LineRange{First: 2, Last: 1}},
			wantKind: "invalid",
		},
		{
			name:     "bad json",
			req:      "{",
			wantKind: "invalid",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := roundTrip(t, conn, tt.req)
			if resp.Kind != tt.wantKind {
				t.Fatalf("kind = %q (%s), want %q", resp.Kind, resp.Error, tt.wantKind)
			}
			if tt.wantKind != "" {
				return
			}
			if resp.Text != tt.wantText {
				t.Errorf("text = %q, want %q", resp.Text, tt.wantText)
			}
			if len(resp.Edits) != tt.edits {
				t.Errorf("edits = %+v, want %d", resp.Edits, tt.edits)
			}
		})
	}
}

func TestFormatDiscoversConfig(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.FileName), []byte(`{"formatStyle":"Multiline"}`), 0644); err != nil {
		t.Fatal(err)
	}
	_, ts := newTestServer(t, true)
	conn := dial(t, ts, nil)

	resp := roundTrip(t, conn, Request{Path: filepath.Join(dir, "home.items"), Lines: []string{`Switch A "L"`}})
	if resp.Error != "" {
		t.Fatal(resp.Error)
	}
	if want := "Switch\t\tA\n\t\t\t\"L\""; resp.Text != want {
		t.Errorf("text = %q, want %q", resp.Text, want)
	}
}

func TestHealth(t *testing.T) {
	s, ts := newTestServer(t, false)
	dial(t, ts, nil)

	deadline := time.Now().Add(2 * time.Second)
	for s.Clients() != 1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.Header.Get("X-Run-ID") == "" {
		t.Error("missing X-Run-ID header")
	}
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing security headers")
	}
	var h health
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		t.Fatal(err)
	}
	if h.Status != "ok" || h.Version != "test" || h.Clients != 1 {
		t.Errorf("health = %+v", h)
	}
}

func TestOriginRejected(t *testing.T) {
	_, ts := newTestServer(t, false)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/format"
	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://evil.example"}})
	if err == nil {
		t.Fatal("dial from foreign origin succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("response = %v", resp)
	}
}

func TestOriginPolicy(t *testing.T) {
	tests := []struct {
		allowed []string
		origin  string
		want    bool
	}{
		{nil, "", true},
		{nil, "http://localhost:3000", true},
		{nil, "http://127.0.0.1", true},
		{nil, "vscode-webview://abc", true},
		{nil, "https://example.com", false},
		{[]string{"https://example.com"}, "https://example.com", true},
		{[]string{"https://example.com"}, "http://localhost", false},
		{[]string{"*"}, "https://anything.test", true},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/format", nil)
		if tt.origin != "" {
			r.Header.Set("Origin", tt.origin)
		}
		if got := (OriginPolicy{Allowed: tt.allowed}).Check(r); got != tt.want {
			t.Errorf("Check(%v, %q) = %v, want %v", tt.allowed, tt.origin, got, tt.want)
		}
	}
}

func TestHubCloseAll(t *testing.T) {
	s, ts := newTestServer(t, false)
	conn := dial(t, ts, nil)

	deadline := time.Now().Add(2 * time.Second)
	for s.Clients() != 1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	s.hub.CloseAll()
	if s.Clients() != 0 {
		t.Errorf("Clients = %d after CloseAll", s.Clients())
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("read after CloseAll = %v, want normal closure", err)
	}
}
