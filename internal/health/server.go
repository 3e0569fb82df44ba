// Package health provides the HTTP endpoints for health checks and
// Prometheus metrics when zonesync runs in interval mode.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Response is the /ready payload.
type Response struct {
	Status       string `json:"status"` // "ready" or "not_ready"
	LastSyncTime string `json:"last_sync_time,omitempty"`
	LastError    string `json:"last_error,omitempty"`
}

// Server provides /health, /ready and /metrics endpoints. Readiness reflects
// the outcome of the most recent reconciliation run.
type Server struct {
	port   int
	mux    *http.ServeMux
	server *http.Server
	logger *slog.Logger

	mu           sync.RWMutex
	lastSyncTime time.Time
	lastErr      error
}

// Option is a functional option for configuring the Server.
type Option func(*Server)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a new health server on the specified port.
func New(port int, opts ...Option) *Server {
	s := &Server{
		port:   port,
		mux:    http.NewServeMux(),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/ready", s.handleReady)
	s.mux.Handle("/metrics", promhttp.Handler())

	return s
}

// RecordSync stores the outcome of a reconciliation run for /ready.
func (s *Server) RecordSync(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSyncTime = time.Now()
	s.lastErr = err
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(Response{Status: "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	lastSyncTime, lastErr := s.lastSyncTime, s.lastErr
	s.mu.RUnlock()

	resp := Response{Status: "ready"}
	if !lastSyncTime.IsZero() {
		resp.LastSyncTime = lastSyncTime.UTC().Format(time.RFC3339)
	}

	w.Header().Set("Content-Type", "application/json")
	if lastErr != nil {
		resp.Status = "not_ready"
		resp.LastError = lastErr.Error()
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	_ = json.NewEncoder(w).Encode(resp)
}

// Start starts the health server in a goroutine.
func (s *Server) Start() {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		s.logger.Info("health server starting", slog.Int("port", s.port))
		if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
			s.logger.Error("health server error", slog.String("error", err.Error()))
		}
	}()
}

// Shutdown gracefully shuts down the health server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
