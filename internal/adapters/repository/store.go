// Package repository defines the persistence interfaces and the in-memory store.
package repository

import (
	"context"
	"time"

	"github.com/okian/fitquest/internal/domain/model"
	"github.com/okian/fitquest/internal/domain/types"
	"github.com/okian/fitquest/pkg/metrics"
)

// UserStore persists accounts.
type UserStore interface {
	// UpsertUser creates the user or refreshes its identity fields.
	UpsertUser(ctx context.Context, id model.Identity) (model.User, error)
	// GetUser returns ErrUserNotFound for an unknown id.
	GetUser(ctx context.Context, userID string) (model.User, error)
	UpdateProfile(ctx context.Context, userID string, p model.ProfileUpdate) (model.User, error)
}

// WorkoutStore persists workouts and the aggregates derived from them.
type WorkoutStore interface {
	// RecordWorkout inserts w, adds w.PointsEarned to the owner's total and
	// advances the owner's streak, all or nothing. It returns the stored
	// workout and the updated owner.
	RecordWorkout(ctx context.Context, w model.Workout) (model.Workout, model.User, error)
	// ListWorkouts returns the newest workouts first.
	ListWorkouts(ctx context.Context, userID string, limit int) ([]model.Workout, error)
	// WorkoutsInRange returns workouts with start <= date <= end, newest first.
	WorkoutsInRange(ctx context.Context, userID string, start, end time.Time) ([]model.Workout, error)
	WorkoutTotals(ctx context.Context, userID string) (model.WorkoutTotals, error)
	// Leaderboard ranks users by points earned since the given time, or by
	// lifetime total when since is nil. Ties break by user id ascending.
	Leaderboard(ctx context.Context, since *time.Time, limit int) ([]types.Entry, error)
}

// TrackingStore persists nutrition, hydration and daily goals.
type TrackingStore interface {
	AddNutrition(ctx context.Context, e model.NutritionEntry) (model.NutritionEntry, error)
	// ListNutrition returns entries newest first, optionally for one day only.
	ListNutrition(ctx context.Context, userID string, day *time.Time) ([]model.NutritionEntry, error)
	// UpsertWater sets the glasses for (user, day).
	UpsertWater(ctx context.Context, w model.WaterIntake) (model.WaterIntake, error)
	// GetWater returns ErrNotFound when nothing was logged that day.
	GetWater(ctx context.Context, userID string, day time.Time) (model.WaterIntake, error)
	CreateDailyGoal(ctx context.Context, g model.DailyGoal) (model.DailyGoal, error)
	ListDailyGoals(ctx context.Context, userID string, day time.Time) ([]model.DailyGoal, error)
	// UpdateDailyGoal returns ErrNotFound unless the goal belongs to userID.
	UpdateDailyGoal(ctx context.Context, userID string, goalID int64, current int, completed bool) (model.DailyGoal, error)
}

// SocialStore persists friendships, challenges and achievements.
type SocialStore interface {
	// CreateFriendship returns ErrConflict if the pair is already linked.
	CreateFriendship(ctx context.Context, f model.Friendship) (model.Friendship, error)
	// AcceptFriendship returns ErrNotFound unless addresseeID received the
	// pending request.
	AcceptFriendship(ctx context.Context, addresseeID string, friendshipID int64) (model.Friendship, error)
	ListFriends(ctx context.Context, userID string) ([]model.User, error)
	ListFriendRequests(ctx context.Context, userID string) ([]model.Friendship, error)
	CreateChallenge(ctx context.Context, c model.Challenge) (model.Challenge, error)
	ListChallenges(ctx context.Context, userID string) ([]model.Challenge, error)
	ListAchievements(ctx context.Context, userID string) ([]model.Achievement, error)
}

// CoachStore persists workout plans and coach chat history.
type CoachStore interface {
	CreateWorkoutPlan(ctx context.Context, p model.WorkoutPlan) (model.WorkoutPlan, error)
	ListWorkoutPlans(ctx context.Context, userID string) ([]model.WorkoutPlan, error)
	AddChatMessage(ctx context.Context, m model.ChatMessage) (model.ChatMessage, error)
	ListChatMessages(ctx context.Context, userID string, limit int) ([]model.ChatMessage, error)
}

// Store is the full persistence surface used by the service.
type Store interface {
	UserStore
	WorkoutStore
	TrackingStore
	SocialStore
	CoachStore

	Ping(ctx context.Context) error
	Close() error
}

// Observe records the latency of a store operation started at start.
func Observe(op string, start time.Time) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000)
}
