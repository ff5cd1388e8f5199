// Package server exposes the snapshot pipeline over a small REST surface.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/nmisra/folio/internal/common"
	"github.com/nmisra/folio/internal/holdings"
	"github.com/nmisra/folio/internal/interfaces"
)

// Server wraps the HTTP server and its collaborators.
type Server struct {
	config    *common.Config
	logger    *common.Logger
	holdings  *holdings.Source
	snapshots interfaces.SnapshotService
	server    *http.Server
}

// NewServer creates a new HTTP REST API server.
func NewServer(config *common.Config, logger *common.Logger, source *holdings.Source, snapshots interfaces.SnapshotService) *Server {
	s := &Server{
		config:    config,
		logger:    logger,
		holdings:  source,
		snapshots: snapshots,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	handler := applyMiddleware(mux, logger)

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server (blocking).
func (s *Server) Start() error {
	s.logger.Info().
		Str("addr", s.server.Addr).
		Msg("Starting REST API server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
