// Package api provides the HTTP surface of the reception intake service: the
// stateless turn endpoint, visitor record CRUD, and a health check.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bilal1975873/DPL-RECEP-back/internal/flow"
	"github.com/bilal1975873/DPL-RECEP-back/internal/store"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8000"

// Timeouts for the HTTP server.
const (
	ReadTimeout     = 15 * time.Second
	WriteTimeout    = 30 * time.Second
	ShutdownTimeout = 10 * time.Second
)

// Opts holds configuration options for the API server.
type Opts struct {
	Addr          string
	AllowedOrigin string
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithAllowedOrigin enables CORS for the given origin. "*" allows any origin.
func WithAllowedOrigin(origin string) Option {
	return func(o *Opts) { o.AllowedOrigin = origin }
}

// Server serves the reception HTTP API. The turn endpoint is stateless: the
// entire dialog state travels in each request and response.
type Server struct {
	engine        *flow.Engine
	st            store.Store
	addr          string
	allowedOrigin string
}

// NewServer creates an API server over the given engine and store.
func NewServer(engine *flow.Engine, st store.Store, opts ...Option) (*Server, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if engine == nil {
		return nil, fmt.Errorf("engine must be provided")
	}
	if st == nil {
		return nil, fmt.Errorf("store must be provided")
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	slog.Debug("NewServer invoked", "addr", cfg.Addr, "allowed_origin", cfg.AllowedOrigin)

	return &Server{
		engine:        engine,
		st:            st,
		addr:          cfg.Addr,
		allowedOrigin: cfg.AllowedOrigin,
	}, nil
}

// Handler builds the route table. Exposed separately from Start for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/process-message/", s.processMessageHandler)
	mux.HandleFunc("/visitors/", s.visitorsHandler)
	mux.HandleFunc("/visitors", s.visitorsHandler)
	mux.HandleFunc("/health", s.healthHandler)
	return s.withCORS(mux)
}

// Start runs the HTTP server until the context is cancelled, then shuts it
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  ReadTimeout,
		WriteTimeout: WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("API server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

// withCORS applies the configured CORS policy. With no origin configured the
// handler is returned unchanged.
func (s *Server) withCORS(next http.Handler) http.Handler {
	if s.allowedOrigin == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
