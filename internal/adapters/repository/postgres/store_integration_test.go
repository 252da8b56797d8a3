//go:build integration

package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/okian/fitquest/internal/adapters/repository"
	"github.com/okian/fitquest/internal/domain/model"
)

func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("fitquest"),
		postgrescontainer.WithUsername("fitquest"),
		postgrescontainer.WithPassword("fitquest"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool := waitForDatabase(t, ctx, connStr)
	t.Cleanup(pool.Close)

	require.NoError(t, Migrate(pool, Up))
	require.NoError(t, Migrate(pool, Up), "a second run must be a no-op")
	return pool
}

func waitForDatabase(t *testing.T, ctx context.Context, connStr string) *pgxpool.Pool {
	t.Helper()
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := Connect(ctx, connStr)
		if err == nil {
			return pool
		}
		if time.Now().After(deadline) {
			require.NoError(t, err)
		}
		time.Sleep(time.Second)
	}
}

func TestStoreRecordsWorkoutsAtomically(t *testing.T) {
	ctx := context.Background()
	store := NewStore(startPostgres(t))

	_, err := store.UpsertUser(ctx, model.Identity{ID: "alice", Email: "alice@example.com", FirstName: "Alice"})
	require.NoError(t, err)

	cal := 250
	w, u, err := store.RecordWorkout(ctx, model.Workout{
		UserID: "alice", ExerciseType: "run", Duration: 30, Intensity: "moderate",
		CaloriesBurned: &cal, PointsEarned: 18,
	})
	require.NoError(t, err)
	require.NotZero(t, w.ID)
	require.Equal(t, int64(18), u.TotalPoints)
	require.Equal(t, 1, u.CurrentStreak)
	require.NotNil(t, u.LastWorkoutOn)

	_, _, err = store.RecordWorkout(ctx, model.Workout{UserID: "ghost", ExerciseType: "run", Duration: 5, Intensity: "low", PointsEarned: 3})
	require.True(t, errors.Is(err, repository.ErrUserNotFound))

	totals, err := store.WorkoutTotals(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, model.WorkoutTotals{Count: 1, Calories: 250, Minutes: 30}, totals)
}

func TestStoreConcurrentIncrements(t *testing.T) {
	ctx := context.Background()
	store := NewStore(startPostgres(t))
	_, err := store.UpsertUser(ctx, model.Identity{ID: "alice"})
	require.NoError(t, err)

	const n = 40
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := store.RecordWorkout(ctx, model.Workout{UserID: "alice", ExerciseType: "row", Duration: 10, Intensity: "high", PointsEarned: 8})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	u, err := store.GetUser(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, int64(n*8), u.TotalPoints)
}

func TestStoreLeaderboard(t *testing.T) {
	ctx := context.Background()
	store := NewStore(startPostgres(t))

	for _, id := range []string{"carol", "bob", "alice"} {
		_, err := store.UpsertUser(ctx, model.Identity{ID: id})
		require.NoError(t, err)
	}
	now := time.Now().UTC()
	record := func(id string, pts int64, at time.Time) {
		_, _, err := store.RecordWorkout(ctx, model.Workout{UserID: id, ExerciseType: "bike", Duration: 10, Intensity: "low", PointsEarned: pts, Date: at})
		require.NoError(t, err)
	}
	record("alice", 50, now.AddDate(0, 0, -40))
	record("bob", 10, now)
	record("carol", 10, now)

	all, err := store.Leaderboard(ctx, nil, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "alice", all[0].UserID)
	require.Equal(t, []string{"bob", "carol"}, []string{all[1].UserID, all[2].UserID})

	since := now.AddDate(0, 0, -7)
	week, err := store.Leaderboard(ctx, &since, 10)
	require.NoError(t, err)
	require.Len(t, week, 2)
	require.Equal(t, "bob", week[0].UserID)
	require.Equal(t, 1, week[0].Rank)
	require.Equal(t, int64(10), week[1].Points)
}

func TestStoreTrackingAndSocial(t *testing.T) {
	ctx := context.Background()
	pool := startPostgres(t)
	store := NewStore(pool)
	for _, id := range []string{"alice", "bob"} {
		_, err := store.UpsertUser(ctx, model.Identity{ID: id})
		require.NoError(t, err)
	}
	today := model.Day(time.Now())

	first, err := store.UpsertWater(ctx, model.WaterIntake{UserID: "alice", Date: today, Glasses: 2})
	require.NoError(t, err)
	second, err := store.UpsertWater(ctx, model.WaterIntake{UserID: "alice", Date: today, Glasses: 6})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	_, err = store.GetWater(ctx, "bob", today)
	require.ErrorIs(t, err, repository.ErrNotFound)

	goal, err := store.CreateDailyGoal(ctx, model.DailyGoal{UserID: "alice", GoalType: "steps", TargetValue: 8000, PointsValue: 10, Date: today})
	require.NoError(t, err)
	_, err = store.UpdateDailyGoal(ctx, "bob", goal.ID, 8000, true)
	require.ErrorIs(t, err, repository.ErrNotFound)

	req, err := store.CreateFriendship(ctx, model.Friendship{UserID: "alice", FriendID: "bob"})
	require.NoError(t, err)
	_, err = store.CreateFriendship(ctx, model.Friendship{UserID: "bob", FriendID: "alice"})
	require.ErrorIs(t, err, repository.ErrConflict)
	_, err = store.AcceptFriendship(ctx, "bob", req.ID)
	require.NoError(t, err)
	friends, err := store.ListFriends(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, friends, 1)
	require.Equal(t, "bob", friends[0].ID)

	_, err = pool.Exec(ctx, `INSERT INTO achievements (user_id, title) VALUES ('alice', 'First Steps')`)
	require.NoError(t, err)
	achievements, err := store.ListAchievements(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, achievements, 1)

	plan, err := store.CreateWorkoutPlan(ctx, model.WorkoutPlan{UserID: "alice", Title: "Base", Plan: []byte(`{"monday":"rest"}`), DaysPerWeek: 3})
	require.NoError(t, err)
	require.JSONEq(t, `{"monday":"rest"}`, string(plan.Plan))
}
