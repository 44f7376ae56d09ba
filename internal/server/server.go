package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dipjyotimetia/pubsub-client/internal/emulator"
	"github.com/dipjyotimetia/pubsub-client/pkg/logger"
)

// Server represents the HTTP server with graceful shutdown capability
type Server struct {
	emulator *emulator.Emulator
	port     string
	log      *logger.Logger

	mu  sync.Mutex
	srv *http.Server
}

// Config holds the server configuration
type Config struct {
	Port     string
	Emulator *emulator.Emulator
	Logger   *logger.Logger
}

// New creates a new Server instance
func New(cfg *Config) *Server {
	return &Server{
		emulator: cfg.Emulator,
		port:     cfg.Port,
		log:      cfg.Logger,
	}
}

// Handler returns the emulator routes with logging and CORS applied
func (s *Server) Handler() http.Handler {
	return s.emulator.Handler()
}

func (s *Server) newHTTPServer() *http.Server {
	srv := &http.Server{
		Addr:         ":" + s.port,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.mu.Lock()
	s.srv = srv
	s.mu.Unlock()
	return srv
}

// Start starts the HTTP server and blocks until a shutdown signal is
// received or ctx is done
func (s *Server) Start(ctx context.Context) error {
	srv := s.newHTTPServer()

	serverErrors := make(chan error, 1)

	go func() {
		s.log.Info("Starting Pub/Sub emulator on port %s", s.port)
		s.log.Info("REST API available at http://localhost:%s/v1", s.port)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		s.log.Info("Received shutdown signal: %v", sig)

	case <-ctx.Done():
		s.log.Info("Context done, shutting down: %v", ctx.Err())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.Error("Graceful shutdown failed: %v", err)
		if err := srv.Close(); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	s.log.Info("Server stopped gracefully")
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()

	if srv != nil {
		return srv.Shutdown(ctx)
	}
	return nil
}

// ListenAndServe starts the server without graceful shutdown handling
func (s *Server) ListenAndServe() error {
	srv := s.newHTTPServer()

	s.log.Info("Starting Pub/Sub emulator on port %s", s.port)
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
