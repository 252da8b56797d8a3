package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/fitquest/internal/domain/model"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func seedUser(t *testing.T, s *MemoryStore, id string) {
	t.Helper()
	if _, err := s.UpsertUser(context.Background(), model.Identity{ID: id, FirstName: id}); err != nil {
		t.Fatalf("seed %s: %v", id, err)
	}
}

func TestMemoryStore_RecordWorkoutAccruesPoints(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedUser(t, s, "alice")

	cal := 200
	w, u, err := s.RecordWorkout(ctx, model.Workout{UserID: "alice", ExerciseType: "run", Duration: 30, Intensity: "moderate", CaloriesBurned: &cal, PointsEarned: 18})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.ID == 0 || w.Date.IsZero() || w.CreatedAt.IsZero() {
		t.Errorf("expected id and timestamps to be assigned, got %+v", w)
	}
	if u.TotalPoints != 18 {
		t.Errorf("expected total 18, got %d", u.TotalPoints)
	}
	if u.CurrentStreak != 1 || u.LongestStreak != 1 {
		t.Errorf("expected streak 1/1, got %d/%d", u.CurrentStreak, u.LongestStreak)
	}

	totals, err := s.WorkoutTotals(ctx, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if totals.Count != 1 || totals.Calories != 200 || totals.Minutes != 30 {
		t.Errorf("unexpected totals %+v", totals)
	}
}

func TestMemoryStore_UnknownUserWritesNothing(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, _, err := s.RecordWorkout(ctx, model.Workout{UserID: "ghost", Duration: 10, PointsEarned: 5})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	totals, _ := s.WorkoutTotals(ctx, "ghost")
	if totals.Count != 0 {
		t.Errorf("expected no workouts, got %d", totals.Count)
	}
	if _, err := s.GetUser(ctx, "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestMemoryStore_ZeroTotals(t *testing.T) {
	s := NewMemoryStore()
	seedUser(t, s, "bob")

	totals, err := s.WorkoutTotals(context.Background(), "bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if totals != (model.WorkoutTotals{}) {
		t.Errorf("expected zero totals, got %+v", totals)
	}
}

func TestMemoryStore_ConcurrentRecordingsNeverLoseIncrements(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedUser(t, s, "alice")

	const goroutines, perGoroutine = 20, 50
	var wg sync.WaitGroup
	errs := make(chan error, goroutines*perGoroutine)
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				if _, _, err := s.RecordWorkout(ctx, model.Workout{UserID: "alice", Duration: 10, PointsEarned: 3}); err != nil {
					errs <- err
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("unexpected error: %v", err)
	}

	u, _ := s.GetUser(ctx, "alice")
	if want := int64(goroutines * perGoroutine * 3); u.TotalPoints != want {
		t.Errorf("expected total %d, got %d", want, u.TotalPoints)
	}
	totals, _ := s.WorkoutTotals(ctx, "alice")
	if totals.Count != goroutines*perGoroutine {
		t.Errorf("expected %d workouts, got %d", goroutines*perGoroutine, totals.Count)
	}
}

func TestMemoryStore_StreakAcrossDays(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedUser(t, s, "alice")

	day := func(d int) time.Time { return time.Date(2025, time.April, d, 12, 0, 0, 0, time.UTC) }
	steps := []struct {
		on               int
		current, longest int
	}{
		{1, 1, 1},
		{1, 1, 1},
		{2, 2, 2},
		{3, 3, 3},
		{7, 1, 3},
		{8, 2, 3},
	}
	for i, step := range steps {
		_, u, err := s.RecordWorkout(ctx, model.Workout{UserID: "alice", Duration: 20, PointsEarned: 10, Date: day(step.on)})
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if u.CurrentStreak != step.current || u.LongestStreak != step.longest {
			t.Errorf("step %d: expected %d/%d, got %d/%d", i, step.current, step.longest, u.CurrentStreak, u.LongestStreak)
		}
	}
}

func TestMemoryStore_LeaderboardOrdering(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for i := 0; i < 12; i++ {
		id := fmt.Sprintf("user%02d", i)
		seedUser(t, s, id)
		if _, _, err := s.RecordWorkout(ctx, model.Workout{UserID: id, Duration: 10, PointsEarned: int64(i % 4)}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	first, err := s.Leaderboard(ctx, nil, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != 10 {
		t.Fatalf("expected 10 entries, got %d", len(first))
	}
	for i := 1; i < len(first); i++ {
		prev, cur := first[i-1], first[i]
		if prev.Points < cur.Points || (prev.Points == cur.Points && prev.UserID > cur.UserID) {
			t.Errorf("entries %d and %d out of order: %+v %+v", i-1, i, prev, cur)
		}
		if cur.Rank != i+1 {
			t.Errorf("expected rank %d, got %d", i+1, cur.Rank)
		}
	}
	if first[0].UserID != "user03" {
		t.Errorf("expected user03 first, got %s", first[0].UserID)
	}

	second, _ := s.Leaderboard(ctx, nil, 10)
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("leaderboard not idempotent at %d: %+v vs %+v", i, first[i], second[i])
		}
	}

	if _, err := s.Leaderboard(ctx, nil, 0); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}
}

func TestMemoryStore_LeaderboardWindow(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedUser(t, s, "old")
	seedUser(t, s, "new")
	seedUser(t, s, "idle")

	since := time.Date(2025, time.May, 5, 0, 0, 0, 0, time.UTC)
	mustRecord := func(id string, pts int64, at time.Time) {
		if _, _, err := s.RecordWorkout(ctx, model.Workout{UserID: id, Duration: 10, PointsEarned: pts, Date: at}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	mustRecord("old", 100, since.Add(-time.Hour))
	mustRecord("old", 5, since)
	mustRecord("new", 20, since.Add(48*time.Hour))

	board, err := s.Leaderboard(ctx, &since, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(board) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(board), board)
	}
	if board[0].UserID != "new" || board[0].Points != 20 {
		t.Errorf("expected new with 20 first, got %+v", board[0])
	}
	if board[1].UserID != "old" || board[1].Points != 5 || board[1].TotalPoints != 105 {
		t.Errorf("expected old with 5 of 105, got %+v", board[1])
	}
}

func TestMemoryStore_ListWorkoutsAndRange(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedUser(t, s, "alice")
	base := time.Date(2025, time.June, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if _, _, err := s.RecordWorkout(ctx, model.Workout{UserID: "alice", Duration: 10, PointsEarned: 5, Date: base.AddDate(0, 0, i)}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	recent, err := s.ListWorkouts(ctx, "alice", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recent) != 2 || !recent[0].Date.After(recent[1].Date) {
		t.Errorf("expected two newest first, got %+v", recent)
	}

	ranged, _ := s.WorkoutsInRange(ctx, "alice", base.AddDate(0, 0, 1), base.AddDate(0, 0, 3))
	if len(ranged) != 3 {
		t.Errorf("expected 3 workouts in the inclusive range, got %d", len(ranged))
	}
}

func TestMemoryStore_WaterUpsert(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	day := time.Date(2025, time.July, 1, 15, 0, 0, 0, time.UTC)

	if _, err := s.GetWater(ctx, "alice", day); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	first, _ := s.UpsertWater(ctx, model.WaterIntake{UserID: "alice", Date: day, Glasses: 3})
	second, _ := s.UpsertWater(ctx, model.WaterIntake{UserID: "alice", Date: day.Add(2 * time.Hour), Glasses: 5})
	if first.ID != second.ID {
		t.Errorf("expected the same row, got ids %d and %d", first.ID, second.ID)
	}
	got, err := s.GetWater(ctx, "alice", day)
	if err != nil || got.Glasses != 5 {
		t.Errorf("expected 5 glasses, got %+v (%v)", got, err)
	}
}

func TestMemoryStore_DailyGoalOwnership(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	day := time.Date(2025, time.July, 2, 0, 0, 0, 0, time.UTC)

	g, _ := s.CreateDailyGoal(ctx, model.DailyGoal{UserID: "alice", GoalType: "steps", TargetValue: 10000, Date: day})
	if _, err := s.UpdateDailyGoal(ctx, "mallory", g.ID, 10000, true); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for another user, got %v", err)
	}
	updated, err := s.UpdateDailyGoal(ctx, "alice", g.ID, 10000, true)
	if err != nil || !updated.Completed || updated.CurrentValue != 10000 {
		t.Errorf("unexpected update result %+v (%v)", updated, err)
	}
	goals, _ := s.ListDailyGoals(ctx, "alice", day.Add(5*time.Hour))
	if len(goals) != 1 {
		t.Errorf("expected 1 goal for the day, got %d", len(goals))
	}
}

func TestMemoryStore_Friendships(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(WithClock(fixedClock(time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC))))
	seedUser(t, s, "alice")
	seedUser(t, s, "bob")

	req, err := s.CreateFriendship(ctx, model.Friendship{UserID: "alice", FriendID: "bob"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Status != model.FriendshipPending {
		t.Errorf("expected pending, got %s", req.Status)
	}
	if _, err := s.CreateFriendship(ctx, model.Friendship{UserID: "bob", FriendID: "alice"}); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict for the reverse pair, got %v", err)
	}

	pending, _ := s.ListFriendRequests(ctx, "bob")
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending request, got %d", len(pending))
	}
	if _, err := s.AcceptFriendship(ctx, "alice", req.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected the requester to be unable to accept, got %v", err)
	}
	if _, err := s.AcceptFriendship(ctx, "bob", req.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	for _, who := range []struct{ me, other string }{{"alice", "bob"}, {"bob", "alice"}} {
		friends, _ := s.ListFriends(ctx, who.me)
		if len(friends) != 1 || friends[0].ID != who.other {
			t.Errorf("expected %s to see %s, got %+v", who.me, who.other, friends)
		}
	}
}

func TestMemoryStore_NewestFirstListings(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemoryStore(
		WithClock(func() time.Time { clock = clock.Add(time.Minute); return clock }),
		WithAchievements(
			model.Achievement{UserID: "alice", Title: "First Steps", UnlockedAt: clock},
			model.Achievement{UserID: "alice", Title: "Week Warrior", UnlockedAt: clock.Add(time.Hour)},
		),
	)

	for i := 0; i < 3; i++ {
		if _, err := s.AddChatMessage(ctx, model.ChatMessage{UserID: "alice", Message: fmt.Sprint(i)}); err != nil {
			t.Fatalf("chat: %v", err)
		}
	}
	chats, _ := s.ListChatMessages(ctx, "alice", 2)
	if len(chats) != 2 || chats[0].Message != "2" {
		t.Errorf("expected the two newest messages, got %+v", chats)
	}

	achievements, _ := s.ListAchievements(ctx, "alice")
	if len(achievements) != 2 || achievements[0].Title != "Week Warrior" {
		t.Errorf("expected newest achievement first, got %+v", achievements)
	}

	if _, err := s.CreateChallenge(ctx, model.Challenge{CreatorID: "bob", ParticipantID: "alice", Title: "Plank-off"}); err != nil {
		t.Fatalf("challenge: %v", err)
	}
	challenges, _ := s.ListChallenges(ctx, "alice")
	if len(challenges) != 1 {
		t.Errorf("expected the participant to see the challenge, got %d", len(challenges))
	}

	plans, _ := s.ListWorkoutPlans(ctx, "alice")
	if plans == nil || len(plans) != 0 {
		t.Errorf("expected an empty, non-nil list, got %#v", plans)
	}
}
