// Package model contains domain models passed between layers.
package model

import "time"

// Activity levels accepted on a profile.
const (
	ActivitySedentary        = "sedentary"
	ActivityLightlyActive    = "lightly_active"
	ActivityModeratelyActive = "moderately_active"
	ActivityVeryActive       = "very_active"
)

// Fitness goals accepted on a profile.
const (
	GoalLoseWeight       = "lose_weight"
	GoalBuildMuscle      = "build_muscle"
	GoalMaintain         = "maintain"
	GoalImproveEndurance = "improve_endurance"
)

// User is an account keyed by the identity provider subject.
type User struct {
	ID              string     `json:"id"`
	Email           string     `json:"email,omitempty"`
	FirstName       string     `json:"firstName,omitempty"`
	LastName        string     `json:"lastName,omitempty"`
	ProfileImageURL string     `json:"profileImageUrl,omitempty"`
	Age             *int       `json:"age,omitempty"`
	Height          *float64   `json:"height,omitempty"`
	CurrentWeight   *float64   `json:"currentWeight,omitempty"`
	GoalWeight      *float64   `json:"goalWeight,omitempty"`
	ActivityLevel   string     `json:"activityLevel,omitempty"`
	FitnessGoal     string     `json:"fitnessGoal,omitempty"`
	TotalPoints     int64      `json:"totalPoints"`
	CurrentStreak   int        `json:"currentStreak"`
	LongestStreak   int        `json:"longestStreak"`
	LastWorkoutOn   *time.Time `json:"lastWorkoutOn,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Identity carries the claims used to upsert a user on sign-in.
type Identity struct {
	ID              string
	Email           string
	FirstName       string
	LastName        string
	ProfileImageURL string
}

// ProfileUpdate holds optional profile edits; nil fields are left unchanged.
type ProfileUpdate struct {
	FirstName     *string  `json:"firstName"`
	LastName      *string  `json:"lastName"`
	Age           *int     `json:"age"`
	Height        *float64 `json:"height"`
	CurrentWeight *float64 `json:"currentWeight"`
	GoalWeight    *float64 `json:"goalWeight"`
	ActivityLevel *string  `json:"activityLevel"`
	FitnessGoal   *string  `json:"fitnessGoal"`
}

// Apply copies the set fields of p onto u.
func (p ProfileUpdate) Apply(u *User) {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Age != nil {
		u.Age = p.Age
	}
	if p.Height != nil {
		u.Height = p.Height
	}
	if p.CurrentWeight != nil {
		u.CurrentWeight = p.CurrentWeight
	}
	if p.GoalWeight != nil {
		u.GoalWeight = p.GoalWeight
	}
	if p.ActivityLevel != nil {
		u.ActivityLevel = *p.ActivityLevel
	}
	if p.FitnessGoal != nil {
		u.FitnessGoal = *p.FitnessGoal
	}
}

// UserStats is the aggregate view returned for a user.
type UserStats struct {
	User          User  `json:"user"`
	TotalWorkouts int64 `json:"totalWorkouts"`
	TotalCalories int64 `json:"totalCalories"`
	TotalMinutes  int64 `json:"totalMinutes"`
	TotalPoints   int64 `json:"totalPoints"`
	CurrentStreak int   `json:"currentStreak"`
	LongestStreak int   `json:"longestStreak"`
}

// WorkoutTotals are the per-user sums a store computes.
type WorkoutTotals struct {
	Count    int64
	Calories int64
	Minutes  int64
}
