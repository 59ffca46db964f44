// Package server assembles the demo HTTP service around the session store.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/txn2/memsession/internal/config"
	"github.com/txn2/memsession/pkg/health"
	"github.com/txn2/memsession/pkg/metrics"
	"github.com/txn2/memsession/pkg/pipeline"
	"github.com/txn2/memsession/pkg/session"
)

// Version is set at build time.
var Version = "dev"

// Server is the demo service: a message page backed by the session store,
// plus health and metrics endpoints.
type Server struct {
	cfg        *config.Config
	store      *session.MemoryStore
	health     *health.Checker
	handler    http.Handler
	httpServer *http.Server
}

// New wires the session store, pipeline and routes for cfg.
func New(cfg *config.Config) *Server {
	registry := prometheus.NewRegistry()

	var storeMetrics session.Metrics
	if cfg.Metrics.Enabled {
		storeMetrics = metrics.NewCollector(registry)
	}

	p := pipeline.New()
	store := session.EnableWithConfig(p, session.Config{
		TTL:     cfg.Session.TTL,
		Cookie:  cfg.CookieOptions(),
		Metrics: storeMetrics,
	})

	s := &Server{
		cfg:    cfg,
		store:  store,
		health: health.NewChecker(store.Len),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health.LivenessHandler())
	r.Get("/readyz", s.health.ReadinessHandler())
	if cfg.Metrics.Enabled {
		metrics.RegisterActiveSessions(registry, store.Len)
		r.Method(http.MethodGet, cfg.Metrics.Path, metrics.Handler(registry))
	}

	p.AddBefore(limitBody)
	p.AddAfterToStart(noStore)

	r.Group(func(r chi.Router) {
		r.Use(p.Handler)
		r.Get("/", handleGetMessage)
		r.Post("/", handlePostMessage)
	})

	s.handler = r
	s.httpServer = &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           r,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Store returns the session store.
func (s *Server) Store() *session.MemoryStore {
	return s.store
}

// Run listens on the configured address and serves until Shutdown is called.
func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.cfg.Server.Address)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Server.Address, err)
	}
	return s.Serve(ln)
}

// Serve starts the cleanup routine and serves on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	if !s.cfg.Session.DisableCleanup {
		s.store.StartCleanupRoutine(s.cfg.Session.CleanupInterval)
	}
	s.health.SetReady()

	slog.Info("memsession listening",
		"address", ln.Addr().String(),
		"version", Version,
		"session_ttl", s.cfg.Session.TTL,
		"cleanup", !s.cfg.Session.DisableCleanup,
	)

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving http: %w", err)
	}
	return nil
}

// Shutdown drains the server and stops the cleanup routine. The routine is
// stopped even when draining times out.
func (s *Server) Shutdown(ctx context.Context) error {
	s.health.SetDraining()

	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutting down http server: %w", err))
	}
	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing session store: %w", err))
	}
	return errors.Join(errs...)
}
