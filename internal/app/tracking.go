package service

import (
	"context"
	"errors"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/okian/fitquest/internal/adapters/repository"
	"github.com/okian/fitquest/internal/domain/model"
)

var mealTypes = []string{model.MealBreakfast, model.MealLunch, model.MealDinner, model.MealSnack} //nolint:gochecknoglobals // fixed value set

// WaterInput sets a day's water intake either as glasses or as an amount in
// millilitres. Glasses wins when both are present.
type WaterInput struct {
	Glasses *int       `json:"glasses"`
	Amount  *int       `json:"amount"`
	Date    *time.Time `json:"-"`
}

// GoalProgress is the mutable part of a daily goal.
type GoalProgress struct {
	CurrentValue int  `json:"currentValue"`
	Completed    bool `json:"completed"`
}

func (s *Service) today() time.Time { return model.Day(s.now()) }

func (s *Service) dayOr(t time.Time) time.Time {
	if t.IsZero() {
		return s.today()
	}
	return model.Day(t)
}

// AddNutrition logs a food item, dated today unless e.Date is set.
func (s *Service) AddNutrition(ctx context.Context, userID string, e model.NutritionEntry) (model.NutritionEntry, error) { //nolint:gocritic // hugeParam: models travel by value
	e.MealType = strings.ToLower(strings.TrimSpace(e.MealType))
	e.FoodItem = strings.TrimSpace(e.FoodItem)
	switch {
	case !slices.Contains(mealTypes, e.MealType):
		return model.NutritionEntry{}, invalid("mealType must be one of %s", strings.Join(mealTypes, ", "))
	case e.FoodItem == "":
		return model.NutritionEntry{}, invalid("foodItem is required")
	case e.Calories != nil && *e.Calories < 0:
		return model.NutritionEntry{}, invalid("calories must not be negative")
	}
	for name, v := range map[string]*float64{"protein": e.Protein, "carbs": e.Carbs, "fat": e.Fat} {
		if v != nil && *v < 0 {
			return model.NutritionEntry{}, invalid("%s must not be negative", name)
		}
	}
	e.ID = 0
	e.UserID = userID
	e.Date = s.dayOr(e.Date)
	out, err := s.store.AddNutrition(ctx, e)
	if err != nil {
		return model.NutritionEntry{}, storeErr("service.AddNutrition", err)
	}
	return out, nil
}

// ListNutrition returns entries newest first, for one day when day is set.
func (s *Service) ListNutrition(ctx context.Context, userID string, day *time.Time) ([]model.NutritionEntry, error) {
	out, err := s.store.ListNutrition(ctx, userID, day)
	if err != nil {
		return nil, storeErr("service.ListNutrition", err)
	}
	return out, nil
}

// Glasses converts millilitres to glasses, rounding to the nearest glass.
func Glasses(amountMl int) int {
	return int(math.Round(float64(amountMl) / model.MillilitresPerGlass))
}

// LogWater sets the glasses drunk on a day, today by default.
func (s *Service) LogWater(ctx context.Context, userID string, in WaterInput) (model.WaterIntake, error) {
	var glasses int
	switch {
	case in.Glasses != nil:
		glasses = *in.Glasses
	case in.Amount != nil:
		if *in.Amount < 0 {
			return model.WaterIntake{}, invalid("amount must not be negative")
		}
		glasses = Glasses(*in.Amount)
	default:
		return model.WaterIntake{}, invalid("glasses or amount is required")
	}
	if glasses < 0 {
		return model.WaterIntake{}, invalid("glasses must not be negative")
	}
	day := s.today()
	if in.Date != nil {
		day = model.Day(*in.Date)
	}
	out, err := s.store.UpsertWater(ctx, model.WaterIntake{UserID: userID, Date: day, Glasses: glasses})
	if err != nil {
		return model.WaterIntake{}, storeErr("service.LogWater", err)
	}
	return out, nil
}

// GetWater returns the intake for a day, zero glasses when nothing was logged.
func (s *Service) GetWater(ctx context.Context, userID string, day *time.Time) (model.WaterIntake, error) {
	d := s.today()
	if day != nil {
		d = model.Day(*day)
	}
	w, err := s.store.GetWater(ctx, userID, d)
	if errors.Is(err, repository.ErrNotFound) {
		return model.WaterIntake{UserID: userID, Date: d}, nil
	}
	if err != nil {
		return model.WaterIntake{}, storeErr("service.GetWater", err)
	}
	return w, nil
}

// CreateDailyGoal adds a goal, dated today unless g.Date is set.
func (s *Service) CreateDailyGoal(ctx context.Context, userID string, g model.DailyGoal) (model.DailyGoal, error) { //nolint:gocritic // hugeParam: models travel by value
	g.GoalType = strings.TrimSpace(g.GoalType)
	switch {
	case g.GoalType == "":
		return model.DailyGoal{}, invalid("goalType is required")
	case g.TargetValue <= 0:
		return model.DailyGoal{}, invalid("targetValue must be positive")
	case g.CurrentValue < 0:
		return model.DailyGoal{}, invalid("currentValue must not be negative")
	case g.PointsValue < 0:
		return model.DailyGoal{}, invalid("pointsValue must not be negative")
	}
	if g.PointsValue == 0 {
		g.PointsValue = defaultGoalPoints
	}
	g.ID = 0
	g.UserID = userID
	g.Date = s.dayOr(g.Date)
	out, err := s.store.CreateDailyGoal(ctx, g)
	if err != nil {
		return model.DailyGoal{}, storeErr("service.CreateDailyGoal", err)
	}
	return out, nil
}

// ListDailyGoals returns the goals set for a day, today by default.
func (s *Service) ListDailyGoals(ctx context.Context, userID string, day *time.Time) ([]model.DailyGoal, error) {
	d := s.today()
	if day != nil {
		d = model.Day(*day)
	}
	out, err := s.store.ListDailyGoals(ctx, userID, d)
	if err != nil {
		return nil, storeErr("service.ListDailyGoals", err)
	}
	return out, nil
}

// UpdateDailyGoal sets a goal's progress. Goals of other users are not found.
func (s *Service) UpdateDailyGoal(ctx context.Context, userID string, goalID int64, p GoalProgress) (model.DailyGoal, error) {
	if p.CurrentValue < 0 {
		return model.DailyGoal{}, invalid("currentValue must not be negative")
	}
	out, err := s.store.UpdateDailyGoal(ctx, userID, goalID, p.CurrentValue, p.Completed)
	if err != nil {
		return model.DailyGoal{}, storeErr("service.UpdateDailyGoal", err)
	}
	return out, nil
}
