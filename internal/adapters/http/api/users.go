package api

import (
	"net/http"

	"github.com/okian/fitquest/internal/domain/model"
)

// handleCurrentUser handles GET /api/auth/user.
func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// handleUpdateProfile handles PUT /api/user/profile.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_profile"
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req model.ProfileUpdate
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	updated, err := s.deps.UpdateProfile(r.Context(), u.ID, req)
	if err != nil {
		writeServiceError(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
