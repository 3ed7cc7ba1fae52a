// Package http wires the chi router, middleware and handlers into an HTTP
// server with graceful shutdown.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/erpacceso/api/internal/config"
	"github.com/erpacceso/api/internal/infra/http/handler"
	"github.com/erpacceso/api/internal/infra/http/middleware"
	"github.com/erpacceso/api/pkg/logger"
)

// Server is the API HTTP server.
type Server struct {
	httpServer *http.Server
	config     *config.ServerConfig
	logger     *logger.Logger
}

// NewServer builds the server with the full middleware chain and all routes
// registered.
func NewServer(cfg *config.ServerConfig, h *handler.Handlers, log *logger.Logger) *Server {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.CleanPath)
	r.Use(chimw.StripSlashes)
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	r.Use(middleware.Metrics())

	registerRoutes(r, h)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      r,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		config: cfg,
		logger: log.With("component", "http_server"),
	}
}

// Start runs the server until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("starting http server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops the server, letting in-flight requests finish until the
// context expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.httpServer.Shutdown(ctx)
}
