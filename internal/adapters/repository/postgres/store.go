// Package postgres implements repository.Store on PostgreSQL with pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/fitquest/internal/adapters/repository"
	"github.com/okian/fitquest/internal/domain/model"
	"github.com/okian/fitquest/internal/domain/scoring"
	"github.com/okian/fitquest/internal/domain/types"
)

const uniqueViolation = "23505"

const userColumns = `id, email, first_name, last_name, profile_image_url, age, height,
	current_weight, goal_weight, activity_level, fitness_goal, total_points,
	current_streak, longest_streak, last_workout_on, created_at, updated_at`

const prefixedUserColumns = `u.id, u.email, u.first_name, u.last_name, u.profile_image_url, u.age, u.height,
	u.current_weight, u.goal_weight, u.activity_level, u.fitness_goal, u.total_points,
	u.current_streak, u.longest_streak, u.last_workout_on, u.created_at, u.updated_at`

const workoutColumns = `id, user_id, exercise_type, duration, intensity, calories_burned,
	notes, points_earned, date, created_at`

// Store is a pgxpool-backed repository.Store.
type Store struct {
	pool *pgxpool.Pool
}

var _ repository.Store = (*Store)(nil)

// NewStore wraps an existing pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Connect opens a pool for dsn and checks it with a ping.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping: %w", ErrConnect, err)
	}
	return pool, nil
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.ProfileImageURL, &u.Age, &u.Height,
		&u.CurrentWeight, &u.GoalWeight, &u.ActivityLevel, &u.FitnessGoal, &u.TotalPoints,
		&u.CurrentStreak, &u.LongestStreak, &u.LastWorkoutOn, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func scanWorkout(row pgx.Row) (model.Workout, error) {
	var w model.Workout
	err := row.Scan(&w.ID, &w.UserID, &w.ExerciseType, &w.Duration, &w.Intensity, &w.CaloriesBurned,
		&w.Notes, &w.PointsEarned, &w.Date, &w.CreatedAt)
	return w, err
}

func userNotFound(err error, userID string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", repository.ErrUserNotFound, userID)
	}
	return err
}

// Users

func (s *Store) UpsertUser(ctx context.Context, id model.Identity) (model.User, error) {
	defer repository.Observe("upsert_user", time.Now())
	const q = `INSERT INTO users (id, email, first_name, last_name, profile_image_url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			email = COALESCE(NULLIF(EXCLUDED.email, ''), users.email),
			first_name = COALESCE(NULLIF(EXCLUDED.first_name, ''), users.first_name),
			last_name = COALESCE(NULLIF(EXCLUDED.last_name, ''), users.last_name),
			profile_image_url = COALESCE(NULLIF(EXCLUDED.profile_image_url, ''), users.profile_image_url),
			updated_at = now()
		RETURNING ` + userColumns
	return scanUser(s.pool.QueryRow(ctx, q, id.ID, id.Email, id.FirstName, id.LastName, id.ProfileImageURL))
}

func (s *Store) GetUser(ctx context.Context, userID string) (model.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
	if err != nil {
		return model.User{}, userNotFound(err, userID)
	}
	return u, nil
}

func (s *Store) UpdateProfile(ctx context.Context, userID string, p model.ProfileUpdate) (model.User, error) {
	const q = `UPDATE users SET
			first_name = COALESCE($2, first_name),
			last_name = COALESCE($3, last_name),
			age = COALESCE($4, age),
			height = COALESCE($5, height),
			current_weight = COALESCE($6, current_weight),
			goal_weight = COALESCE($7, goal_weight),
			activity_level = COALESCE($8, activity_level),
			fitness_goal = COALESCE($9, fitness_goal),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + userColumns
	u, err := scanUser(s.pool.QueryRow(ctx, q, userID, p.FirstName, p.LastName, p.Age, p.Height,
		p.CurrentWeight, p.GoalWeight, p.ActivityLevel, p.FitnessGoal))
	if err != nil {
		return model.User{}, userNotFound(err, userID)
	}
	return u, nil
}

// Workouts

// RecordWorkout locks the owner row so concurrent recordings for one user
// serialise on it while other users proceed.
func (s *Store) RecordWorkout(ctx context.Context, w model.Workout) (model.Workout, model.User, error) {
	defer repository.Observe("record_workout", time.Now())

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return model.Workout{}, model.User{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var streak scoring.Streak
	err = tx.QueryRow(ctx,
		`SELECT current_streak, longest_streak, last_workout_on FROM users WHERE id = $1 FOR UPDATE`,
		w.UserID,
	).Scan(&streak.Current, &streak.Longest, &streak.LastWorkoutOn)
	if err != nil {
		return model.Workout{}, model.User{}, userNotFound(err, w.UserID)
	}

	if w.Date.IsZero() {
		w.Date = time.Now().UTC()
	}
	next := streak.Advance(w.Date)

	err = tx.QueryRow(ctx,
		`INSERT INTO workouts (user_id, exercise_type, duration, intensity, calories_burned, notes, points_earned, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`,
		w.UserID, w.ExerciseType, w.Duration, w.Intensity, w.CaloriesBurned, w.Notes, w.PointsEarned, w.Date,
	).Scan(&w.ID, &w.CreatedAt)
	if err != nil {
		return model.Workout{}, model.User{}, fmt.Errorf("insert workout: %w", err)
	}

	u, err := scanUser(tx.QueryRow(ctx,
		`UPDATE users SET
			total_points = total_points + $2,
			current_streak = $3,
			longest_streak = $4,
			last_workout_on = $5,
			updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		w.UserID, w.PointsEarned, next.Current, next.Longest, next.LastWorkoutOn,
	))
	if err != nil {
		return model.Workout{}, model.User{}, fmt.Errorf("update totals: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Workout{}, model.User{}, err
	}
	return w, u, nil
}

func (s *Store) ListWorkouts(ctx context.Context, userID string, limit int) ([]model.Workout, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", repository.ErrInvalidLimit, limit)
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+workoutColumns+` FROM workouts WHERE user_id = $1 ORDER BY date DESC, id DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Workout, error) { return scanWorkout(row) })
}

func (s *Store) WorkoutsInRange(ctx context.Context, userID string, start, end time.Time) ([]model.Workout, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+workoutColumns+` FROM workouts
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date DESC, id DESC`,
		userID, start, end)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Workout, error) { return scanWorkout(row) })
}

func (s *Store) WorkoutTotals(ctx context.Context, userID string) (model.WorkoutTotals, error) {
	var t model.WorkoutTotals
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(calories_burned), 0)::bigint, COALESCE(SUM(duration), 0)::bigint
		FROM workouts WHERE user_id = $1`, userID,
	).Scan(&t.Count, &t.Calories, &t.Minutes)
	return t, err
}

func (s *Store) Leaderboard(ctx context.Context, since *time.Time, limit int) ([]types.Entry, error) {
	defer repository.Observe("leaderboard", time.Now())
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", repository.ErrInvalidLimit, limit)
	}

	var (
		rows pgx.Rows
		err  error
	)
	if since == nil {
		rows, err = s.pool.Query(ctx,
			`SELECT id, first_name, last_name, profile_image_url, total_points, total_points
			FROM users ORDER BY total_points DESC, id ASC LIMIT $1`, limit)
	} else {
		rows, err = s.pool.Query(ctx,
			`SELECT u.id, u.first_name, u.last_name, u.profile_image_url,
				SUM(w.points_earned)::bigint AS points, u.total_points
			FROM workouts w JOIN users u ON u.id = w.user_id
			WHERE w.date >= $1
			GROUP BY u.id
			ORDER BY points DESC, u.id ASC
			LIMIT $2`, *since, limit)
	}
	if err != nil {
		return nil, err
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.Entry, error) {
		var e types.Entry
		err := row.Scan(&e.UserID, &e.FirstName, &e.LastName, &e.ProfileImageURL, &e.Points, &e.TotalPoints)
		return e, err
	})
	if err != nil {
		return nil, err
	}
	return types.Rank(entries), nil
}

// Nutrition, water and goals

const nutritionColumns = `id, user_id, meal_type, food_item, quantity, calories, protein, carbs, fat, date, created_at`

func scanNutrition(row pgx.Row) (model.NutritionEntry, error) {
	var e model.NutritionEntry
	err := row.Scan(&e.ID, &e.UserID, &e.MealType, &e.FoodItem, &e.Quantity, &e.Calories,
		&e.Protein, &e.Carbs, &e.Fat, &e.Date, &e.CreatedAt)
	return e, err
}

func (s *Store) AddNutrition(ctx context.Context, e model.NutritionEntry) (model.NutritionEntry, error) {
	return scanNutrition(s.pool.QueryRow(ctx,
		`INSERT INTO nutrition (user_id, meal_type, food_item, quantity, calories, protein, carbs, fat, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+nutritionColumns,
		e.UserID, e.MealType, e.FoodItem, e.Quantity, e.Calories, e.Protein, e.Carbs, e.Fat, model.Day(e.Date)))
}

func (s *Store) ListNutrition(ctx context.Context, userID string, day *time.Time) ([]model.NutritionEntry, error) {
	var d *time.Time
	if day != nil {
		v := model.Day(*day)
		d = &v
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+nutritionColumns+` FROM nutrition
		WHERE user_id = $1 AND ($2::date IS NULL OR date = $2::date)
		ORDER BY created_at DESC, id DESC`, userID, d)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.NutritionEntry, error) { return scanNutrition(row) })
}

func (s *Store) UpsertWater(ctx context.Context, w model.WaterIntake) (model.WaterIntake, error) {
	var out model.WaterIntake
	err := s.pool.QueryRow(ctx,
		`INSERT INTO water_intake (user_id, date, glasses) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, date) DO UPDATE SET glasses = EXCLUDED.glasses
		RETURNING id, user_id, date, glasses`,
		w.UserID, model.Day(w.Date), w.Glasses,
	).Scan(&out.ID, &out.UserID, &out.Date, &out.Glasses)
	return out, err
}

func (s *Store) GetWater(ctx context.Context, userID string, day time.Time) (model.WaterIntake, error) {
	var out model.WaterIntake
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, date, glasses FROM water_intake WHERE user_id = $1 AND date = $2`,
		userID, model.Day(day),
	).Scan(&out.ID, &out.UserID, &out.Date, &out.Glasses)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.WaterIntake{}, repository.ErrNotFound
	}
	return out, err
}

const goalColumns = `id, user_id, goal_type, target_value, current_value, completed, points_value, date, created_at`

func scanGoal(row pgx.Row) (model.DailyGoal, error) {
	var g model.DailyGoal
	err := row.Scan(&g.ID, &g.UserID, &g.GoalType, &g.TargetValue, &g.CurrentValue, &g.Completed,
		&g.PointsValue, &g.Date, &g.CreatedAt)
	return g, err
}

func (s *Store) CreateDailyGoal(ctx context.Context, g model.DailyGoal) (model.DailyGoal, error) {
	return scanGoal(s.pool.QueryRow(ctx,
		`INSERT INTO daily_goals (user_id, goal_type, target_value, current_value, completed, points_value, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+goalColumns,
		g.UserID, g.GoalType, g.TargetValue, g.CurrentValue, g.Completed, g.PointsValue, model.Day(g.Date)))
}

func (s *Store) ListDailyGoals(ctx context.Context, userID string, day time.Time) ([]model.DailyGoal, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+goalColumns+` FROM daily_goals WHERE user_id = $1 AND date = $2 ORDER BY id`,
		userID, model.Day(day))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.DailyGoal, error) { return scanGoal(row) })
}

func (s *Store) UpdateDailyGoal(ctx context.Context, userID string, goalID int64, current int, completed bool) (model.DailyGoal, error) {
	g, err := scanGoal(s.pool.QueryRow(ctx,
		`UPDATE daily_goals SET current_value = $3, completed = $4
		WHERE id = $1 AND user_id = $2
		RETURNING `+goalColumns,
		goalID, userID, current, completed))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.DailyGoal{}, fmt.Errorf("%w: daily goal %d", repository.ErrNotFound, goalID)
	}
	return g, err
}

// Friends, challenges and achievements

const friendshipColumns = `id, user_id, friend_id, status, created_at`

func scanFriendship(row pgx.Row) (model.Friendship, error) {
	var f model.Friendship
	err := row.Scan(&f.ID, &f.UserID, &f.FriendID, &f.Status, &f.CreatedAt)
	return f, err
}

func (s *Store) CreateFriendship(ctx context.Context, f model.Friendship) (model.Friendship, error) {
	if f.Status == "" {
		f.Status = model.FriendshipPending
	}
	out, err := scanFriendship(s.pool.QueryRow(ctx,
		`INSERT INTO friendships (user_id, friend_id, status) VALUES ($1, $2, $3)
		RETURNING `+friendshipColumns,
		f.UserID, f.FriendID, f.Status))
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return model.Friendship{}, fmt.Errorf("%w: friendship %s/%s", repository.ErrConflict, f.UserID, f.FriendID)
	}
	return out, err
}

func (s *Store) AcceptFriendship(ctx context.Context, addresseeID string, friendshipID int64) (model.Friendship, error) {
	f, err := scanFriendship(s.pool.QueryRow(ctx,
		`UPDATE friendships SET status = $3
		WHERE id = $1 AND friend_id = $2 AND status = $4
		RETURNING `+friendshipColumns,
		friendshipID, addresseeID, model.FriendshipAccepted, model.FriendshipPending))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Friendship{}, fmt.Errorf("%w: friend request %d", repository.ErrNotFound, friendshipID)
	}
	return f, err
}

func (s *Store) ListFriends(ctx context.Context, userID string) ([]model.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+prefixedUserColumns+`
		FROM friendships f
		JOIN users u ON u.id = CASE WHEN f.user_id = $1 THEN f.friend_id ELSE f.user_id END
		WHERE f.status = $2 AND (f.user_id = $1 OR f.friend_id = $1)
		ORDER BY f.created_at, f.id`,
		userID, model.FriendshipAccepted)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.User, error) { return scanUser(row) })
}

func (s *Store) ListFriendRequests(ctx context.Context, userID string) ([]model.Friendship, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+friendshipColumns+` FROM friendships
		WHERE friend_id = $1 AND status = $2
		ORDER BY created_at DESC, id DESC`,
		userID, model.FriendshipPending)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Friendship, error) { return scanFriendship(row) })
}

const challengeColumns = `id, creator_id, COALESCE(participant_id, ''), challenge_type, title, description,
	target_value, start_date, end_date, status, COALESCE(winner_id, ''), created_at`

func scanChallenge(row pgx.Row) (model.Challenge, error) {
	var c model.Challenge
	err := row.Scan(&c.ID, &c.CreatorID, &c.ParticipantID, &c.ChallengeType, &c.Title, &c.Description,
		&c.TargetValue, &c.StartDate, &c.EndDate, &c.Status, &c.WinnerID, &c.CreatedAt)
	return c, err
}

func (s *Store) CreateChallenge(ctx context.Context, c model.Challenge) (model.Challenge, error) {
	return scanChallenge(s.pool.QueryRow(ctx,
		`INSERT INTO challenges (creator_id, participant_id, challenge_type, title, description,
			target_value, start_date, end_date, status, winner_id)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''))
		RETURNING `+challengeColumns,
		c.CreatorID, c.ParticipantID, c.ChallengeType, c.Title, c.Description,
		c.TargetValue, c.StartDate, c.EndDate, c.Status, c.WinnerID))
}

func (s *Store) ListChallenges(ctx context.Context, userID string) ([]model.Challenge, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+challengeColumns+` FROM challenges
		WHERE creator_id = $1 OR participant_id = $1
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Challenge, error) { return scanChallenge(row) })
}

func (s *Store) ListAchievements(ctx context.Context, userID string) ([]model.Achievement, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, title, description, badge_icon, points_awarded, unlocked_at
		FROM achievements WHERE user_id = $1
		ORDER BY unlocked_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Achievement, error) {
		var a model.Achievement
		err := row.Scan(&a.ID, &a.UserID, &a.Title, &a.Description, &a.BadgeIcon, &a.PointsAwarded, &a.UnlockedAt)
		return a, err
	})
}

// Plans and chat

const planColumns = `id, user_id, title, description, plan, difficulty, days_per_week, created_by_ai, created_at`

func scanPlan(row pgx.Row) (model.WorkoutPlan, error) {
	var p model.WorkoutPlan
	err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.Description, &p.Plan, &p.Difficulty,
		&p.DaysPerWeek, &p.CreatedByAI, &p.CreatedAt)
	return p, err
}

func (s *Store) CreateWorkoutPlan(ctx context.Context, p model.WorkoutPlan) (model.WorkoutPlan, error) {
	plan := []byte(p.Plan)
	if len(plan) == 0 {
		plan = []byte("{}")
	}
	return scanPlan(s.pool.QueryRow(ctx,
		`INSERT INTO workout_plans (user_id, title, description, plan, difficulty, days_per_week, created_by_ai)
		VALUES ($1, $2, $3, $4::jsonb, $5, $6, $7)
		RETURNING `+planColumns,
		p.UserID, p.Title, p.Description, string(plan), p.Difficulty, p.DaysPerWeek, p.CreatedByAI))
}

func (s *Store) ListWorkoutPlans(ctx context.Context, userID string) ([]model.WorkoutPlan, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+planColumns+` FROM workout_plans WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.WorkoutPlan, error) { return scanPlan(row) })
}

const chatColumns = `id, user_id, message, response, message_type, created_at`

func scanChat(row pgx.Row) (model.ChatMessage, error) {
	var m model.ChatMessage
	err := row.Scan(&m.ID, &m.UserID, &m.Message, &m.Response, &m.MessageType, &m.CreatedAt)
	return m, err
}

func (s *Store) AddChatMessage(ctx context.Context, m model.ChatMessage) (model.ChatMessage, error) {
	return scanChat(s.pool.QueryRow(ctx,
		`INSERT INTO chat_history (user_id, message, response, message_type) VALUES ($1, $2, $3, $4)
		RETURNING `+chatColumns,
		m.UserID, m.Message, m.Response, m.MessageType))
}

func (s *Store) ListChatMessages(ctx context.Context, userID string, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", repository.ErrInvalidLimit, limit)
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+chatColumns+` FROM chat_history WHERE user_id = $1
		ORDER BY created_at DESC, id DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.ChatMessage, error) { return scanChat(row) })
}
