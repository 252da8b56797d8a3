package model

import "time"

// Workout is one logged training session. PointsEarned is fixed at creation.
type Workout struct {
	ID             int64     `json:"id"`
	UserID         string    `json:"userId"`
	ExerciseType   string    `json:"exerciseType"`
	Duration       int       `json:"duration"`
	Intensity      string    `json:"intensity"`
	CaloriesBurned *int      `json:"caloriesBurned,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	PointsEarned   int64     `json:"pointsEarned"`
	Date           time.Time `json:"date"`
	CreatedAt      time.Time `json:"createdAt"`
}

// NewWorkout is the caller-supplied part of a workout.
type NewWorkout struct {
	ExerciseType   string `json:"exerciseType"`
	Duration       int    `json:"duration"`
	Intensity      string `json:"intensity"`
	CaloriesBurned *int   `json:"caloriesBurned"`
	Notes          string `json:"notes"`
}

// WorkoutRecorded is emitted after a workout and its points are committed.
type WorkoutRecorded struct {
	EventID       string    `json:"eventId"`
	WorkoutID     int64     `json:"workoutId"`
	UserID        string    `json:"userId"`
	ExerciseType  string    `json:"exerciseType"`
	Duration      int       `json:"duration"`
	Intensity     string    `json:"intensity"`
	PointsEarned  int64     `json:"pointsEarned"`
	TotalPoints   int64     `json:"totalPoints"`
	CurrentStreak int       `json:"currentStreak"`
	OccurredAt    time.Time `json:"occurredAt"`
}
