package api

import (
	"context"
	"net/http"
	"time"
)

const pingTimeout = 2 * time.Second

type healthResponse struct {
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Store     string         `json:"store"`
	Stats     map[string]any `json:"stats,omitempty"`
}

// handleHealth reports liveness. A failing store ping is reported but does
// not fail the check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	resp := healthResponse{Status: "ok", Timestamp: time.Now().UTC(), Store: "ok", Stats: s.deps.Stats(ctx)}
	if err := s.deps.Ping(ctx); err != nil {
		resp.Store = "unavailable"
	}
	writeJSON(w, http.StatusOK, resp)
}
