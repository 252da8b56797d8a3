package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/okian/fitquest/internal/domain/model"
)

const idempotencyKeyHeader = "Idempotency-Key"

// handleRecordWorkout handles POST /api/workouts.
func (s *Server) handleRecordWorkout(w http.ResponseWriter, r *http.Request) {
	const op = "api.record_workout"
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req model.NewWorkout
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	key := strings.TrimSpace(r.Header.Get(idempotencyKeyHeader))
	workout, err := s.deps.RecordWorkout(r.Context(), u.ID, req, key)
	if err != nil {
		writeServiceError(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, workout)
}

// handleListWorkouts handles GET /api/workouts?limit=N.
func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_workouts"
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	out, err := s.deps.ListWorkouts(r.Context(), u.ID, limit)
	if err != nil {
		writeServiceError(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleWorkoutsInRange handles GET /api/workouts/range. A date-only
// endDate covers that whole day.
func (s *Server) handleWorkoutsInRange(w http.ResponseWriter, r *http.Request) {
	const op = "api.workouts_range"
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	if q.Get("startDate") == "" || q.Get("endDate") == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	start, _, err := parseDate(q.Get("startDate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	end, dateOnly, err := parseDate(q.Get("endDate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if dateOnly {
		end = end.Add(24*time.Hour - time.Nanosecond)
	}
	out, err := s.deps.WorkoutsInRange(r.Context(), u.ID, start, end)
	if err != nil {
		writeServiceError(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleStats handles GET /api/stats.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	const op = "api.stats"
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	stats, err := s.deps.GetUserStats(r.Context(), u.ID)
	if err != nil {
		writeServiceError(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleLeaderboard handles GET /api/leaderboard?period=week|month|all.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.leaderboard"
	entries, err := s.deps.GetLeaderboard(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		writeServiceError(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
