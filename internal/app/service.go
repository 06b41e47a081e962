package app

import (
	"context"
	"log"
	"time"

	"solid-service/internal/audit"
	"solid-service/internal/config"
	"solid-service/internal/http"
)

// Service bundles the wired components of a running server.
type Service struct {
	config  *config.Config
	server  *http.Server
	auditor *audit.Recorder
	cleanup func()
}

// NewService wires up all dependencies and returns a runnable Service
func NewService() (*Service, error) {
	return InitializeService()
}

// Start starts the HTTP server
func (s *Service) Start() error {
	log.Printf("starting solid-service on port %s (base %s)", s.config.Server.Port, s.config.Server.BaseURL)
	return s.server.Start()
}

// ShutdownTimeout exposes the configured graceful shutdown window.
func (s *Service) ShutdownTimeout() time.Duration {
	return s.config.Server.ShutdownTimeout
}

// Shutdown gracefully stops the server and flushes the audit trail.
func (s *Service) Shutdown(ctx context.Context) error {
	err := s.server.Shutdown(ctx)
	s.auditor.Close()
	if s.cleanup != nil {
		s.cleanup()
	}
	return err
}
