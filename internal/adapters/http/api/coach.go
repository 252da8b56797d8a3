package api

import (
	"net/http"

	service "github.com/okian/fitquest/internal/app"
	"github.com/okian/fitquest/internal/domain/model"
)

type chatRequest struct {
	Message     string `json:"message"`
	MessageType string `json:"messageType"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// handleChat handles POST /api/ai/chat.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	const op = "api.chat"
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req chatRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	m, err := s.deps.Chat(r.Context(), u.ID, req.Message, req.MessageType)
	if err != nil {
		writeServiceError(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Response: m.Response})
}

// handleChatHistory handles GET /api/chat-history?limit=N.
func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	const op = "api.chat_history"
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	out, err := s.deps.ChatHistory(r.Context(), u.ID, limit)
	if err != nil {
		writeServiceError(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleGeneratePlan handles POST /api/ai/workout-plan.
func (s *Server) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	const op = "api.generate_plan"
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req service.PlanRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	p, err := s.deps.GenerateWorkoutPlan(r.Context(), u.ID, req)
	if err != nil {
		writeServiceError(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// handleCreateWorkoutPlan handles POST /api/workout-plans.
func (s *Server) handleCreateWorkoutPlan(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_plan"
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req model.WorkoutPlan
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	p, err := s.deps.CreateWorkoutPlan(r.Context(), u.ID, req)
	if err != nil {
		writeServiceError(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// handleListWorkoutPlans handles GET /api/workout-plans.
func (s *Server) handleListWorkoutPlans(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	out, err := s.deps.ListWorkoutPlans(r.Context(), u.ID)
	if err != nil {
		writeServiceError(r.Context(), w, Wrap("api.list_plans", err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}
