package api

import (
	"net/http"

	service "github.com/okian/fitquest/internal/app"
	"github.com/okian/fitquest/internal/domain/model"
)

type nutritionRequest struct {
	MealType string   `json:"mealType"`
	FoodItem string   `json:"foodItem"`
	Quantity string   `json:"quantity"`
	Calories *int     `json:"calories"`
	Protein  *float64 `json:"protein"`
	Carbs    *float64 `json:"carbs"`
	Fat      *float64 `json:"fat"`
	Date     string   `json:"date"`
}

type waterRequest struct {
	Glasses *int   `json:"glasses"`
	Amount  *int   `json:"amount"`
	Date    string `json:"date"`
}

type goalRequest struct {
	GoalType     string `json:"goalType"`
	TargetValue  int    `json:"targetValue"`
	CurrentValue int    `json:"currentValue"`
	PointsValue  int    `json:"pointsValue"`
	Date         string `json:"date"`
}

// handleAddNutrition handles POST /api/nutrition.
func (s *Server) handleAddNutrition(w http.ResponseWriter, r *http.Request) {
	const op = "api.add_nutrition"
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req nutritionRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	day, err := dateValue(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	entry, err := s.deps.AddNutrition(r.Context(), u.ID, model.NutritionEntry{
		MealType: req.MealType,
		FoodItem: req.FoodItem,
		Quantity: req.Quantity,
		Calories: req.Calories,
		Protein:  req.Protein,
		Carbs:    req.Carbs,
		Fat:      req.Fat,
		Date:     day,
	})
	if err != nil {
		writeServiceError(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// handleListNutrition handles GET /api/nutrition[?date=].
func (s *Server) handleListNutrition(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_nutrition"
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	day, err := optionalDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	out, err := s.deps.ListNutrition(r.Context(), u.ID, day)
	if err != nil {
		writeServiceError(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleLogWater handles POST /api/water-intake.
func (s *Server) handleLogWater(w http.ResponseWriter, r *http.Request) {
	const op = "api.log_water"
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req waterRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	day, err := optionalDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	out, err := s.deps.LogWater(r.Context(), u.ID, service.WaterInput{Glasses: req.Glasses, Amount: req.Amount, Date: day})
	if err != nil {
		writeServiceError(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleGetWater handles GET /api/water-intake[?date=].
func (s *Server) handleGetWater(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_water"
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	day, err := optionalDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	out, err := s.deps.GetWater(r.Context(), u.ID, day)
	if err != nil {
		writeServiceError(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleCreateDailyGoal handles POST /api/daily-goals.
func (s *Server) handleCreateDailyGoal(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_daily_goal"
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req goalRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	day, err := dateValue(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	goal, err := s.deps.CreateDailyGoal(r.Context(), u.ID, model.DailyGoal{
		GoalType:     req.GoalType,
		TargetValue:  req.TargetValue,
		CurrentValue: req.CurrentValue,
		PointsValue:  req.PointsValue,
		Date:         day,
	})
	if err != nil {
		writeServiceError(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, goal)
}

// handleListDailyGoals handles GET /api/daily-goals[?date=].
func (s *Server) handleListDailyGoals(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_daily_goals"
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	day, err := optionalDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	out, err := s.deps.ListDailyGoals(r.Context(), u.ID, day)
	if err != nil {
		writeServiceError(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleUpdateDailyGoal handles PUT /api/daily-goals/{id}.
func (s *Server) handleUpdateDailyGoal(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_daily_goal"
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	var req service.GoalProgress
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	goal, err := s.deps.UpdateDailyGoal(r.Context(), u.ID, id, req)
	if err != nil {
		writeServiceError(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, goal)
}
