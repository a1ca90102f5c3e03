package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"strreg/internal/registry"
)

// ServerConfig contains HTTP server tuning
type ServerConfig struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	MaxBodyBytes int64
	CORSOrigin   string
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		MaxBodyBytes: 1 << 20,
		CORSOrigin:   "*",
	}
}

// Server represents the HTTP API server
type Server struct {
	router   *http.ServeMux
	server   *http.Server
	addr     string
	logger   *slog.Logger
	registry *registry.Service
	metrics  *MetricsCollector
	config   ServerConfig
}

// NewServer creates a new HTTP server instance
func NewServer(addr string, svc *registry.Service, logger *slog.Logger, config ServerConfig) *Server {
	s := &Server{
		addr:     addr,
		logger:   logger,
		registry: svc,
		metrics:  NewMetricsCollector(),
		config:   config,
		router:   http.NewServeMux(),
	}

	s.registerRoutes()

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.applyMiddleware(s.router),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return s
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", "addr", s.addr)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.logger.Info("Server shut down successfully")
	return nil
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.server.Handler.ServeHTTP(w, r)
}

// applyMiddleware wraps the handler with middleware in the correct order.
// Metrics sits directly on the router so it sees the matched pattern.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	handler = MetricsMiddleware(s.metrics)(handler)
	handler = RecoveryMiddleware(s.logger)(handler)
	handler = CompressionMiddleware()(handler)
	handler = LoggingMiddleware(s.logger)(handler)
	handler = RequestIDMiddleware()(handler)
	handler = CORSMiddleware(s.config.CORSOrigin)(handler)
	return handler
}
