package service

import (
	"context"
	"slices"
	"strings"

	"github.com/okian/fitquest/internal/domain/model"
)

var (
	activityLevels = []string{model.ActivitySedentary, model.ActivityLightlyActive, model.ActivityModeratelyActive, model.ActivityVeryActive} //nolint:gochecknoglobals // fixed value set
	fitnessGoals   = []string{model.GoalLoseWeight, model.GoalBuildMuscle, model.GoalMaintain, model.GoalImproveEndurance}                  //nolint:gochecknoglobals // fixed value set
)

// SignIn upserts the user behind an authenticated identity.
func (s *Service) SignIn(ctx context.Context, id model.Identity) (model.User, error) {
	if strings.TrimSpace(id.ID) == "" {
		return model.User{}, invalid("subject is required")
	}
	u, err := s.store.UpsertUser(ctx, id)
	if err != nil {
		return model.User{}, storeErr("service.SignIn", err)
	}
	return u, nil
}

// CurrentUser returns the stored user.
func (s *Service) CurrentUser(ctx context.Context, userID string) (model.User, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return model.User{}, storeErr("service.CurrentUser", err)
	}
	return u, nil
}

// UpdateProfile applies the set fields of p.
func (s *Service) UpdateProfile(ctx context.Context, userID string, p model.ProfileUpdate) (model.User, error) {
	if err := validateProfile(p); err != nil {
		return model.User{}, err
	}
	u, err := s.store.UpdateProfile(ctx, userID, p)
	if err != nil {
		return model.User{}, storeErr("service.UpdateProfile", err)
	}
	return u, nil
}

func validateProfile(p model.ProfileUpdate) error {
	if p.Age != nil && (*p.Age <= 0 || *p.Age > 150) {
		return invalid("age must be between 1 and 150")
	}
	for name, v := range map[string]*float64{"height": p.Height, "currentWeight": p.CurrentWeight, "goalWeight": p.GoalWeight} {
		if v != nil && *v <= 0 {
			return invalid("%s must be positive", name)
		}
	}
	if p.ActivityLevel != nil && !slices.Contains(activityLevels, *p.ActivityLevel) {
		return invalid("activityLevel must be one of %s", strings.Join(activityLevels, ", "))
	}
	if p.FitnessGoal != nil && !slices.Contains(fitnessGoals, *p.FitnessGoal) {
		return invalid("fitnessGoal must be one of %s", strings.Join(fitnessGoals, ", "))
	}
	return nil
}
