// Package server exposes the formatter to editors over a websocket: each
// message carries one document and is answered with the edits that format
// it.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/FocuswithJustin/ohfmt/core/errors"
	"github.com/FocuswithJustin/ohfmt/core/sqlite"
	"github.com/FocuswithJustin/ohfmt/internal/cache"
	"github.com/FocuswithJustin/ohfmt/internal/config"
	"github.com/FocuswithJustin/ohfmt/internal/logging"
)

const (
	// maxMessageSize bounds one request, document included.
	maxMessageSize = 8 << 20
	// configTTL is how long a discovered config file is reused.
	configTTL = 5 * time.Second
)

// Config holds server configuration.
type Config struct {
	Addr string
	// Defaults applies to requests without a config file or overrides.
	Defaults config.Config
	// Discover looks up .ohfmt.json next to absolute request paths.
	Discover bool
	Origins  OriginPolicy
	Version  string
}

// Server serves formatting sessions.
type Server struct {
	cfg      Config
	hub      *Hub
	configs  *cache.Memo[string, config.Config]
	upgrader websocket.Upgrader
}

// New creates a server. Call Handler or ListenAndServe to use it.
func New(cfg Config) *Server {
	s := &Server{
		cfg:     cfg,
		hub:     NewHub(),
		configs: cache.NewMemo[string, config.Config](configTTL),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     cfg.Origins.Check,
	}
	return s
}

// Handler returns the HTTP routes wrapped in the logging middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/format", s.handleWebSocket)
	mux.HandleFunc("/healthz", s.handleHealth)
	return securityHeaders(logging.CombinedMiddleware(mux))
}

// Clients returns the number of open sessions.
func (s *Server) Clients() int {
	return s.hub.Len()
}

// ListenAndServe serves until ctx is cancelled, then closes open sessions
// and shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.ServerStartup("websocket", s.cfg.Addr, "sqlite_driver", sqlite.DriverType())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return errors.NewIO("listen", s.cfg.Addr, err)
	case <-ctx.Done():
	}

	s.hub.CloseAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}

// health is the /healthz response body.
type health struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Clients int    `json:"clients"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health{Status: "ok", Version: s.cfg.Version, Clients: s.hub.Len()})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.ErrorContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}
	c := &Client{
		server: s,
		conn:   conn,
		send:   make(chan []byte, 16),
		done:   make(chan struct{}),
		runID:  logging.GetRunID(r.Context()),
	}
	s.hub.register(c)
	go c.writePump()
	go c.readPump()
}
