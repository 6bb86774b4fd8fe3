package http

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"

	"github.com/spounge-ai/brainstormity/internal/infra/config"
	"github.com/spounge-ai/brainstormity/pkg/patterns/lifecycle"
)

type Server struct {
	httpServer *http.Server
	lis        net.Listener
	logger     *slog.Logger
	tls        bool
	serving    atomic.Bool
}

var _ lifecycle.ManagedResource = (*Server)(nil)

// New binds the listener immediately so the chosen port is known before Start.
func New(cfg config.ServerConfig, handler http.Handler, tlsConfig *tls.Config, logger *slog.Logger) (*Server, int, error) {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to listen: %w", err)
	}

	port := lis.Addr().(*net.TCPAddr).Port

	srv := &http.Server{
		Handler:      handler,
		TLSConfig:    tlsConfig,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	return &Server{
		httpServer: srv,
		lis:        lis,
		logger:     logger,
		tls:        tlsConfig != nil,
	}, port, nil
}

// Start serves until Stop is called.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("HTTP server listening", "address", s.lis.Addr().String(), "tls", s.tls)
	s.serving.Store(true)
	defer s.serving.Store(false)

	var err error
	if s.tls {
		// certificates come from TLSConfig
		err = s.httpServer.ServeTLS(s.lis, "", "")
	} else {
		err = s.httpServer.Serve(s.lis)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop waits for in-flight requests until ctx expires, then closes what remains.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping HTTP server...")
	s.serving.Store(false)
	if err := s.httpServer.Shutdown(ctx); err != nil {
		_ = s.httpServer.Close()
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	s.logger.Info("HTTP server stopped.")
	return nil
}

func (s *Server) Health(ctx context.Context) lifecycle.HealthStatus {
	if !s.serving.Load() {
		return lifecycle.HealthStatus{Ready: false, Message: "not serving"}
	}
	return lifecycle.HealthStatus{Ready: true}
}

func (s *Server) Addr() net.Addr {
	return s.lis.Addr()
}
