package api

import (
	"net/http"

	"github.com/okian/fitquest/internal/domain/model"
)

type friendRequest struct {
	FriendID string `json:"friendId"`
}

type challengeRequest struct {
	ParticipantID string `json:"participantId"`
	ChallengeType string `json:"challengeType"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	TargetValue   int    `json:"targetValue"`
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
	Status        string `json:"status"`
}

// handleRequestFriend handles POST /api/friends/request.
func (s *Server) handleRequestFriend(w http.ResponseWriter, r *http.Request) {
	const op = "api.request_friend"
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req friendRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	f, err := s.deps.RequestFriend(r.Context(), u.ID, req.FriendID)
	if err != nil {
		writeServiceError(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

// handleAcceptFriend handles POST /api/friends/accept/{id}.
func (s *Server) handleAcceptFriend(w http.ResponseWriter, r *http.Request) {
	const op = "api.accept_friend"
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	f, err := s.deps.AcceptFriend(r.Context(), u.ID, id)
	if err != nil {
		writeServiceError(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// handleListFriends handles GET /api/friends.
func (s *Server) handleListFriends(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	out, err := s.deps.ListFriends(r.Context(), u.ID)
	if err != nil {
		writeServiceError(r.Context(), w, Wrap("api.list_friends", err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleListFriendRequests handles GET /api/friends/requests.
func (s *Server) handleListFriendRequests(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	out, err := s.deps.ListFriendRequests(r.Context(), u.ID)
	if err != nil {
		writeServiceError(r.Context(), w, Wrap("api.list_friend_requests", err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleCreateChallenge handles POST /api/challenges.
func (s *Server) handleCreateChallenge(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_challenge"
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req challengeRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	start, err := dateValue(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	end, err := dateValue(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	c, err := s.deps.CreateChallenge(r.Context(), u.ID, model.Challenge{
		ParticipantID: req.ParticipantID,
		ChallengeType: req.ChallengeType,
		Title:         req.Title,
		Description:   req.Description,
		TargetValue:   req.TargetValue,
		StartDate:     start,
		EndDate:       end,
		Status:        req.Status,
	})
	if err != nil {
		writeServiceError(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// handleListChallenges handles GET /api/challenges.
func (s *Server) handleListChallenges(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	out, err := s.deps.ListChallenges(r.Context(), u.ID)
	if err != nil {
		writeServiceError(r.Context(), w, Wrap("api.list_challenges", err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleListAchievements handles GET /api/achievements.
func (s *Server) handleListAchievements(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	out, err := s.deps.ListAchievements(r.Context(), u.ID)
	if err != nil {
		writeServiceError(r.Context(), w, Wrap("api.list_achievements", err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}
