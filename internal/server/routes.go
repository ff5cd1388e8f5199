package server

import (
	"errors"
	"net/http"

	"github.com/nmisra/folio/internal/common"
	"github.com/nmisra/folio/internal/services/snapshot"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/portfolio", s.handlePortfolio)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
}

// handlePortfolio handles GET /api/portfolio — builds and returns a fresh
// snapshot. Fetch failures surface inside the snapshot's warnings, not as
// HTTP errors; only an unusable holdings set fails the request.
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}

	snap, err := s.snapshots.BuildSnapshot(r.Context(), s.holdings.Holdings())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, snapshot.ErrNoHoldings) {
			status = http.StatusServiceUnavailable
		}
		s.logger.Error().Err(err).Msg("Snapshot build failed")
		WriteError(w, status, "failed to build portfolio snapshot: "+err.Error())
		return
	}

	// Snapshots are point-in-time; intermediaries must not serve them stale.
	w.Header().Set("Cache-Control", "no-store")
	WriteJSON(w, http.StatusOK, snap)
}

// handleHealth handles GET/HEAD /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleVersion handles GET/HEAD /api/version.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}
