package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/fitquest/internal/adapters/repository"
	"github.com/okian/fitquest/internal/domain/dedupe"
	"github.com/okian/fitquest/internal/domain/model"
	"github.com/okian/fitquest/internal/domain/scoring"
	"github.com/okian/fitquest/internal/domain/types"
	"github.com/okian/fitquest/pkg/logger"
	"github.com/okian/fitquest/pkg/metrics"
)

// RecordWorkout validates in, scores it and stores it together with the
// owner's new point total and streak. A non-empty idempotencyKey already
// used by the same user fails with ErrDuplicate.
func (s *Service) RecordWorkout(ctx context.Context, userID string, in model.NewWorkout, idempotencyKey string) (model.Workout, error) {
	const op = "service.RecordWorkout"
	start := time.Now()
	defer func() {
		metrics.RecordWorkoutLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	intensity, err := validateWorkout(in)
	if err != nil {
		metrics.RecordWorkoutRejected("validation")
		return model.Workout{}, err
	}

	if idempotencyKey != "" {
		key := dedupe.Key(userID, idempotencyKey)
		if s.deduper.SeenAndRecord(ctx, key) {
			metrics.RecordDuplicate()
			s.logger.Debug(ctx, "duplicate workout request", logger.String("user_id", userID), logger.String("key", idempotencyKey))
			return model.Workout{}, ErrDuplicate
		}
		defer func() {
			if err != nil {
				s.deduper.Unrecord(ctx, key)
			}
		}()
	}

	points, err := scoring.Points(in.Duration, intensity)
	if err != nil {
		return model.Workout{}, invalid("%v", err)
	}

	w := model.Workout{
		UserID:         userID,
		ExerciseType:   strings.TrimSpace(in.ExerciseType),
		Duration:       in.Duration,
		Intensity:      string(intensity),
		CaloriesBurned: in.CaloriesBurned,
		Notes:          strings.TrimSpace(in.Notes),
		PointsEarned:   points,
		Date:           s.now().UTC(),
	}
	stored, user, err := s.store.RecordWorkout(ctx, w)
	if err != nil {
		reason := "store"
		if errors.Is(err, repository.ErrUserNotFound) {
			reason = "unknown_user"
		}
		metrics.RecordWorkoutRejected(reason)
		err = storeErr(op, err)
		return model.Workout{}, err
	}
	metrics.RecordWorkout(stored.Intensity, stored.PointsEarned)

	if cerr := s.cache.Invalidate(ctx); cerr != nil {
		s.logger.Warn(ctx, "leaderboard cache invalidation failed", logger.Error(cerr))
	}
	s.emit(ctx, stored, user)

	s.logger.Debug(ctx, "workout recorded",
		logger.String("user_id", userID),
		logger.Int64("workout_id", stored.ID),
		logger.Int64("points", stored.PointsEarned),
		logger.Int64("total_points", user.TotalPoints),
		logger.Int("streak", user.CurrentStreak),
	)
	return stored, nil
}

func validateWorkout(in model.NewWorkout) (scoring.Intensity, error) {
	if in.Duration <= 0 || in.Duration > scoring.MaxDuration {
		return "", invalid("duration must be between 1 and %d minutes", scoring.MaxDuration)
	}
	intensity, err := scoring.ParseIntensity(in.Intensity)
	if err != nil {
		return "", invalid("intensity must be one of low, moderate, high, very_high")
	}
	if strings.TrimSpace(in.ExerciseType) == "" {
		return "", invalid("exerciseType is required")
	}
	if in.CaloriesBurned != nil && *in.CaloriesBurned < 0 {
		return "", invalid("caloriesBurned must not be negative")
	}
	return intensity, nil
}

// emit hands a workout.recorded event to the queue. A full queue only
// loses the event.
func (s *Service) emit(ctx context.Context, w model.Workout, u model.User) { //nolint:gocritic // hugeParam: models travel by value
	if s.events == nil {
		return
	}
	e := model.WorkoutRecorded{
		EventID:       uuid.NewString(),
		WorkoutID:     w.ID,
		UserID:        w.UserID,
		ExerciseType:  w.ExerciseType,
		Duration:      w.Duration,
		Intensity:     w.Intensity,
		PointsEarned:  w.PointsEarned,
		TotalPoints:   u.TotalPoints,
		CurrentStreak: u.CurrentStreak,
		OccurredAt:    w.CreatedAt,
	}
	if !s.events.Enqueue(ctx, e) {
		s.logger.Warn(ctx, "workout event dropped",
			logger.String("event_id", e.EventID),
			logger.Int64("workout_id", e.WorkoutID),
		)
	}
}

// ListWorkouts returns the user's most recent workouts. limit <= 0 selects
// the default; larger values are capped.
func (s *Service) ListWorkouts(ctx context.Context, userID string, limit int) ([]model.Workout, error) {
	if limit <= 0 {
		limit = defaultWorkoutsLimit
	}
	limit = min(limit, s.maxWorkouts)
	out, err := s.store.ListWorkouts(ctx, userID, limit)
	if err != nil {
		return nil, storeErr("service.ListWorkouts", err)
	}
	return out, nil
}

// WorkoutsInRange returns workouts dated within [start, end].
func (s *Service) WorkoutsInRange(ctx context.Context, userID string, start, end time.Time) ([]model.Workout, error) {
	if start.IsZero() || end.IsZero() {
		return nil, invalid("startDate and endDate are required")
	}
	if end.Before(start) {
		return nil, invalid("endDate must not be before startDate")
	}
	out, err := s.store.WorkoutsInRange(ctx, userID, start, end)
	if err != nil {
		return nil, storeErr("service.WorkoutsInRange", err)
	}
	return out, nil
}

// GetUserStats returns the user with aggregate workout totals.
func (s *Service) GetUserStats(ctx context.Context, userID string) (model.UserStats, error) {
	const op = "service.GetUserStats"
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return model.UserStats{}, storeErr(op, err)
	}
	totals, err := s.store.WorkoutTotals(ctx, userID)
	if err != nil {
		return model.UserStats{}, storeErr(op, err)
	}
	return model.UserStats{
		User:          u,
		TotalWorkouts: totals.Count,
		TotalCalories: totals.Calories,
		TotalMinutes:  totals.Minutes,
		TotalPoints:   u.TotalPoints,
		CurrentStreak: u.CurrentStreak,
		LongestStreak: u.LongestStreak,
	}, nil
}

// GetLeaderboard returns the top users for period ("week" when empty).
func (s *Service) GetLeaderboard(ctx context.Context, period string) ([]types.Entry, error) {
	const op = "service.GetLeaderboard"
	p, err := types.ParsePeriod(period)
	if err != nil {
		return nil, invalid("%v", err)
	}
	metrics.RecordLeaderboardQuery(string(p))

	entries, ok, err := s.cache.Get(ctx, p)
	switch {
	case err != nil:
		metrics.RecordLeaderboardCache("error")
		s.logger.Warn(ctx, "leaderboard cache read failed", logger.String("period", string(p)), logger.Error(err))
	case ok:
		metrics.RecordLeaderboardCache("hit")
		return entries, nil
	default:
		metrics.RecordLeaderboardCache("miss")
	}

	// Read before the store so a workout committed meanwhile bumps it.
	gen, genErr := s.cache.Generation(ctx)
	if genErr != nil {
		s.logger.Warn(ctx, "leaderboard cache generation read failed", logger.Error(genErr))
	}

	var since *time.Time
	if t, windowed := p.Window(s.now()); windowed {
		since = &t
	}
	entries, err = s.store.Leaderboard(ctx, since, types.LeaderboardSize)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if genErr == nil {
		if err := s.cache.Set(ctx, p, gen, entries); err != nil {
			s.logger.Warn(ctx, "leaderboard cache write failed", logger.String("period", string(p)), logger.Error(err))
		}
	}
	return entries, nil
}
