// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/okian/fitquest/internal/adapters/http/swagger"
	service "github.com/okian/fitquest/internal/app"
	"github.com/okian/fitquest/internal/domain/model"
	"github.com/okian/fitquest/internal/domain/types"
	"github.com/okian/fitquest/pkg/logger"
)

const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Ping(ctx context.Context) error
	Stats(ctx context.Context) map[string]any

	SignIn(ctx context.Context, id model.Identity) (model.User, error)
	CurrentUser(ctx context.Context, userID string) (model.User, error)
	UpdateProfile(ctx context.Context, userID string, p model.ProfileUpdate) (model.User, error)

	RecordWorkout(ctx context.Context, userID string, in model.NewWorkout, idempotencyKey string) (model.Workout, error)
	ListWorkouts(ctx context.Context, userID string, limit int) ([]model.Workout, error)
	WorkoutsInRange(ctx context.Context, userID string, start, end time.Time) ([]model.Workout, error)
	GetUserStats(ctx context.Context, userID string) (model.UserStats, error)
	GetLeaderboard(ctx context.Context, period string) ([]types.Entry, error)

	AddNutrition(ctx context.Context, userID string, e model.NutritionEntry) (model.NutritionEntry, error)
	ListNutrition(ctx context.Context, userID string, day *time.Time) ([]model.NutritionEntry, error)
	LogWater(ctx context.Context, userID string, in service.WaterInput) (model.WaterIntake, error)
	GetWater(ctx context.Context, userID string, day *time.Time) (model.WaterIntake, error)
	CreateDailyGoal(ctx context.Context, userID string, g model.DailyGoal) (model.DailyGoal, error)
	ListDailyGoals(ctx context.Context, userID string, day *time.Time) ([]model.DailyGoal, error)
	UpdateDailyGoal(ctx context.Context, userID string, goalID int64, p service.GoalProgress) (model.DailyGoal, error)

	RequestFriend(ctx context.Context, userID, friendID string) (model.Friendship, error)
	AcceptFriend(ctx context.Context, userID string, friendshipID int64) (model.Friendship, error)
	ListFriends(ctx context.Context, userID string) ([]model.User, error)
	ListFriendRequests(ctx context.Context, userID string) ([]model.Friendship, error)
	CreateChallenge(ctx context.Context, userID string, c model.Challenge) (model.Challenge, error)
	ListChallenges(ctx context.Context, userID string) ([]model.Challenge, error)
	ListAchievements(ctx context.Context, userID string) ([]model.Achievement, error)

	Chat(ctx context.Context, userID, message, messageType string) (model.ChatMessage, error)
	ChatHistory(ctx context.Context, userID string, limit int) ([]model.ChatMessage, error)
	GenerateWorkoutPlan(ctx context.Context, userID string, req service.PlanRequest) (model.WorkoutPlan, error)
	CreateWorkoutPlan(ctx context.Context, userID string, p model.WorkoutPlan) (model.WorkoutPlan, error)
	ListWorkoutPlans(ctx context.Context, userID string) ([]model.WorkoutPlan, error)
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	deps Dependencies
	auth *Authenticator
}

// NewServer creates a new API server.
func NewServer(deps Dependencies, auth *Authenticator) *Server {
	return &Server{deps: deps, auth: auth}
}

// route is one authenticated API endpoint; name labels its metrics.
type route struct {
	pattern string
	name    string
	handler http.HandlerFunc
}

func (s *Server) routes() []route {
	return []route{
		{"GET /api/auth/user", "auth_user", s.handleCurrentUser},
		{"PUT /api/user/profile", "user_profile", s.handleUpdateProfile},

		{"POST /api/workouts", "workouts_create", s.handleRecordWorkout},
		{"GET /api/workouts", "workouts_list", s.handleListWorkouts},
		{"GET /api/workouts/range", "workouts_range", s.handleWorkoutsInRange},
		{"GET /api/stats", "stats", s.handleStats},
		{"GET /api/leaderboard", "leaderboard", s.handleLeaderboard},

		{"POST /api/nutrition", "nutrition_create", s.handleAddNutrition},
		{"GET /api/nutrition", "nutrition_list", s.handleListNutrition},
		{"POST /api/water-intake", "water_upsert", s.handleLogWater},
		{"GET /api/water-intake", "water_get", s.handleGetWater},
		{"POST /api/daily-goals", "goals_create", s.handleCreateDailyGoal},
		{"GET /api/daily-goals", "goals_list", s.handleListDailyGoals},
		{"PUT /api/daily-goals/{id}", "goals_update", s.handleUpdateDailyGoal},

		{"POST /api/friends/request", "friends_request", s.handleRequestFriend},
		{"POST /api/friends/accept/{id}", "friends_accept", s.handleAcceptFriend},
		{"GET /api/friends", "friends_list", s.handleListFriends},
		{"GET /api/friends/requests", "friends_requests", s.handleListFriendRequests},
		{"POST /api/challenges", "challenges_create", s.handleCreateChallenge},
		{"GET /api/challenges", "challenges_list", s.handleListChallenges},
		{"GET /api/achievements", "achievements", s.handleListAchievements},

		{"POST /api/workout-plans", "plans_create", s.handleCreateWorkoutPlan},
		{"GET /api/workout-plans", "plans_list", s.handleListWorkoutPlans},
		{"POST /api/ai/chat", "ai_chat", s.handleChat},
		{"POST /api/ai/workout-plan", "ai_workout_plan", s.handleGeneratePlan},
		{"GET /api/chat-history", "chat_history", s.handleChatHistory},
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.handleHealth, "healthz"))
	mux.HandleFunc("GET /api/health", MetricsMiddleware(s.handleHealth, "api_health"))
	mux.Handle("GET /metrics", MetricsHandler())
	swagger.Register(mux)

	for _, rt := range s.routes() {
		mux.HandleFunc(rt.pattern, MetricsMiddleware(s.auth.Require(rt.handler), rt.name))
	}
}

// Handler returns the full API handler with recovery and request ids.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return RequestID(Recover(mux))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// statusFor maps an error onto an HTTP status and an error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrDuplicate):
		return http.StatusConflict, "duplicate"
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, service.ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, service.ErrCoachUnavailable):
		return http.StatusServiceUnavailable, "coach_unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeServiceError writes err with its mapped status. Internal failures
// are logged and answered with a generic message.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Get().Named("api").Error(ctx, "request failed", logger.Error(err))
		writeError(w, status, code, nil)
		return
	}
	writeError(w, status, code, err)
}

// decode reads a JSON body into v.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return fmt.Errorf("malformed JSON body: %w", err)
	}
	return nil
}

// parseDate accepts RFC3339 or YYYY-MM-DD. dateOnly reports the latter.
func parseDate(s string) (t time.Time, dateOnly bool, err error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true, nil
	}
	t, err = time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid date %q; use YYYY-MM-DD or RFC3339", s)
	}
	return t, false, nil
}

// optionalDate parses s when it is non-empty.
func optionalDate(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil //nolint:nilnil // absent date
	}
	t, _, err := parseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// dateValue parses s when non-empty and returns the zero time otherwise.
func dateValue(s string) (time.Time, error) {
	t, err := optionalDate(s)
	if err != nil || t == nil {
		return time.Time{}, err
	}
	return *t, nil
}

// queryInt parses an optional positive integer query parameter. Absent
// values yield 0.
func queryInt(r *http.Request, key string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return n, nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", r.PathValue("id"))
	}
	return id, nil
}
