package repository

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/okian/fitquest/internal/domain/model"
	"github.com/okian/fitquest/internal/domain/scoring"
	"github.com/okian/fitquest/internal/domain/types"
)

// MemoryStore is a mutex-guarded Store used when no database is configured.
// A single lock serialises writes, so per-user totals never lose increments.
type MemoryStore struct {
	mu     sync.RWMutex
	now    func() time.Time
	nextID int64

	users        map[string]*model.User
	workouts     []model.Workout
	nutrition    []model.NutritionEntry
	water        map[waterKey]model.WaterIntake
	goals        []model.DailyGoal
	friendships  []model.Friendship
	challenges   []model.Challenge
	achievements []model.Achievement
	plans        []model.WorkoutPlan
	chats        []model.ChatMessage
}

type waterKey struct {
	userID string
	day    int64
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		now:   time.Now,
		users: make(map[string]*model.User),
		water: make(map[waterKey]model.WaterIntake),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// id must be called with s.mu held.
func (s *MemoryStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *MemoryStore) Ping(context.Context) error { return nil }
func (s *MemoryStore) Close() error               { return nil }

// Users

func (s *MemoryStore) UpsertUser(_ context.Context, id model.Identity) (model.User, error) {
	defer Observe("upsert_user", time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	u, ok := s.users[id.ID]
	if !ok {
		u = &model.User{ID: id.ID, CreatedAt: now}
		s.users[id.ID] = u
	}
	if id.Email != "" {
		u.Email = id.Email
	}
	if id.FirstName != "" {
		u.FirstName = id.FirstName
	}
	if id.LastName != "" {
		u.LastName = id.LastName
	}
	if id.ProfileImageURL != "" {
		u.ProfileImageURL = id.ProfileImageURL
	}
	u.UpdatedAt = now
	return *u, nil
}

func (s *MemoryStore) GetUser(_ context.Context, userID string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return model.User{}, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	return *u, nil
}

func (s *MemoryStore) UpdateProfile(_ context.Context, userID string, p model.ProfileUpdate) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return model.User{}, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	p.Apply(u)
	u.UpdatedAt = s.now().UTC()
	return *u, nil
}

// Workouts

func (s *MemoryStore) RecordWorkout(_ context.Context, w model.Workout) (model.Workout, model.User, error) {
	defer Observe("record_workout", time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[w.UserID]
	if !ok {
		return model.Workout{}, model.User{}, fmt.Errorf("%w: %s", ErrUserNotFound, w.UserID)
	}

	now := s.now().UTC()
	if w.Date.IsZero() {
		w.Date = now
	}
	w.ID = s.id()
	w.CreatedAt = now

	streak := scoring.Streak{
		Current:       u.CurrentStreak,
		Longest:       u.LongestStreak,
		LastWorkoutOn: u.LastWorkoutOn,
	}.Advance(w.Date)

	u.TotalPoints += w.PointsEarned
	u.CurrentStreak = streak.Current
	u.LongestStreak = streak.Longest
	u.LastWorkoutOn = streak.LastWorkoutOn
	u.UpdatedAt = now

	s.workouts = append(s.workouts, w)
	return w, *u, nil
}

func (s *MemoryStore) ListWorkouts(_ context.Context, userID string, limit int) ([]model.Workout, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := filter(s.workouts, func(w model.Workout) bool { return w.UserID == userID })
	sortNewest(out, func(w model.Workout) (time.Time, int64) { return w.Date, w.ID })
	return truncate(out, limit), nil
}

func (s *MemoryStore) WorkoutsInRange(_ context.Context, userID string, start, end time.Time) ([]model.Workout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := filter(s.workouts, func(w model.Workout) bool {
		return w.UserID == userID && !w.Date.Before(start) && !w.Date.After(end)
	})
	sortNewest(out, func(w model.Workout) (time.Time, int64) { return w.Date, w.ID })
	return out, nil
}

func (s *MemoryStore) WorkoutTotals(_ context.Context, userID string) (model.WorkoutTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var t model.WorkoutTotals
	for _, w := range s.workouts {
		if w.UserID != userID {
			continue
		}
		t.Count++
		t.Minutes += int64(w.Duration)
		if w.CaloriesBurned != nil {
			t.Calories += int64(*w.CaloriesBurned)
		}
	}
	return t, nil
}

func (s *MemoryStore) Leaderboard(_ context.Context, since *time.Time, limit int) ([]types.Entry, error) {
	defer Observe("leaderboard", time.Now())
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]types.Entry, 0, len(s.users))
	if since == nil {
		for _, u := range s.users {
			entries = append(entries, entryFor(u, u.TotalPoints))
		}
	} else {
		window := make(map[string]int64)
		for _, w := range s.workouts {
			if !w.Date.Before(*since) {
				window[w.UserID] += w.PointsEarned
			}
		}
		for id, points := range window {
			if u, ok := s.users[id]; ok {
				entries = append(entries, entryFor(u, points))
			}
		}
	}

	slices.SortFunc(entries, func(a, b types.Entry) int {
		if c := cmp.Compare(b.Points, a.Points); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})
	return types.Rank(truncate(entries, limit)), nil
}

func entryFor(u *model.User, points int64) types.Entry {
	return types.Entry{
		UserID:          u.ID,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		ProfileImageURL: u.ProfileImageURL,
		Points:          points,
		TotalPoints:     u.TotalPoints,
	}
}

// Nutrition, water and goals

func (s *MemoryStore) AddNutrition(_ context.Context, e model.NutritionEntry) (model.NutritionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = s.id()
	e.CreatedAt = s.now().UTC()
	e.Date = model.Day(e.Date)
	s.nutrition = append(s.nutrition, e)
	return e, nil
}

func (s *MemoryStore) ListNutrition(_ context.Context, userID string, day *time.Time) ([]model.NutritionEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := filter(s.nutrition, func(e model.NutritionEntry) bool {
		return e.UserID == userID && (day == nil || e.Date.Equal(model.Day(*day)))
	})
	sortNewest(out, func(e model.NutritionEntry) (time.Time, int64) { return e.CreatedAt, e.ID })
	return out, nil
}

func (s *MemoryStore) UpsertWater(_ context.Context, w model.WaterIntake) (model.WaterIntake, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w.Date = model.Day(w.Date)
	key := waterKey{userID: w.UserID, day: w.Date.Unix()}
	if prev, ok := s.water[key]; ok {
		w.ID = prev.ID
	} else {
		w.ID = s.id()
	}
	s.water[key] = w
	return w, nil
}

func (s *MemoryStore) GetWater(_ context.Context, userID string, day time.Time) (model.WaterIntake, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.water[waterKey{userID: userID, day: model.Day(day).Unix()}]
	if !ok {
		return model.WaterIntake{}, ErrNotFound
	}
	return w, nil
}

func (s *MemoryStore) CreateDailyGoal(_ context.Context, g model.DailyGoal) (model.DailyGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g.ID = s.id()
	g.CreatedAt = s.now().UTC()
	g.Date = model.Day(g.Date)
	s.goals = append(s.goals, g)
	return g, nil
}

func (s *MemoryStore) ListDailyGoals(_ context.Context, userID string, day time.Time) ([]model.DailyGoal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d := model.Day(day)
	return filter(s.goals, func(g model.DailyGoal) bool {
		return g.UserID == userID && g.Date.Equal(d)
	}), nil
}

func (s *MemoryStore) UpdateDailyGoal(_ context.Context, userID string, goalID int64, current int, completed bool) (model.DailyGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.goals {
		g := &s.goals[i]
		if g.ID == goalID && g.UserID == userID {
			g.CurrentValue = current
			g.Completed = completed
			return *g, nil
		}
	}
	return model.DailyGoal{}, fmt.Errorf("%w: daily goal %d", ErrNotFound, goalID)
}

// Friends, challenges and achievements

func (s *MemoryStore) CreateFriendship(_ context.Context, f model.Friendship) (model.Friendship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.friendships {
		if linked(existing, f.UserID, f.FriendID) {
			return model.Friendship{}, fmt.Errorf("%w: friendship %d", ErrConflict, existing.ID)
		}
	}
	f.ID = s.id()
	f.CreatedAt = s.now().UTC()
	if f.Status == "" {
		f.Status = model.FriendshipPending
	}
	s.friendships = append(s.friendships, f)
	return f, nil
}

func linked(f model.Friendship, a, b string) bool {
	return (f.UserID == a && f.FriendID == b) || (f.UserID == b && f.FriendID == a)
}

func (s *MemoryStore) AcceptFriendship(_ context.Context, addresseeID string, friendshipID int64) (model.Friendship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.friendships {
		f := &s.friendships[i]
		if f.ID == friendshipID && f.FriendID == addresseeID && f.Status == model.FriendshipPending {
			f.Status = model.FriendshipAccepted
			return *f, nil
		}
	}
	return model.Friendship{}, fmt.Errorf("%w: friend request %d", ErrNotFound, friendshipID)
}

func (s *MemoryStore) ListFriends(_ context.Context, userID string) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.User, 0)
	for _, f := range s.friendships {
		if f.Status != model.FriendshipAccepted {
			continue
		}
		var other string
		switch userID {
		case f.UserID:
			other = f.FriendID
		case f.FriendID:
			other = f.UserID
		default:
			continue
		}
		if u, ok := s.users[other]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListFriendRequests(_ context.Context, userID string) ([]model.Friendship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := filter(s.friendships, func(f model.Friendship) bool {
		return f.FriendID == userID && f.Status == model.FriendshipPending
	})
	sortNewest(out, func(f model.Friendship) (time.Time, int64) { return f.CreatedAt, f.ID })
	return out, nil
}

func (s *MemoryStore) CreateChallenge(_ context.Context, c model.Challenge) (model.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = s.id()
	c.CreatedAt = s.now().UTC()
	s.challenges = append(s.challenges, c)
	return c, nil
}

func (s *MemoryStore) ListChallenges(_ context.Context, userID string) ([]model.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := filter(s.challenges, func(c model.Challenge) bool {
		return c.CreatorID == userID || (c.ParticipantID != "" && c.ParticipantID == userID)
	})
	sortNewest(out, func(c model.Challenge) (time.Time, int64) { return c.CreatedAt, c.ID })
	return out, nil
}

func (s *MemoryStore) ListAchievements(_ context.Context, userID string) ([]model.Achievement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := filter(s.achievements, func(a model.Achievement) bool { return a.UserID == userID })
	sortNewest(out, func(a model.Achievement) (time.Time, int64) { return a.UnlockedAt, a.ID })
	return out, nil
}

// Plans and chat

func (s *MemoryStore) CreateWorkoutPlan(_ context.Context, p model.WorkoutPlan) (model.WorkoutPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = s.id()
	p.CreatedAt = s.now().UTC()
	s.plans = append(s.plans, p)
	return p, nil
}

func (s *MemoryStore) ListWorkoutPlans(_ context.Context, userID string) ([]model.WorkoutPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := filter(s.plans, func(p model.WorkoutPlan) bool { return p.UserID == userID })
	sortNewest(out, func(p model.WorkoutPlan) (time.Time, int64) { return p.CreatedAt, p.ID })
	return out, nil
}

func (s *MemoryStore) AddChatMessage(_ context.Context, m model.ChatMessage) (model.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.ID = s.id()
	m.CreatedAt = s.now().UTC()
	s.chats = append(s.chats, m)
	return m, nil
}

func (s *MemoryStore) ListChatMessages(_ context.Context, userID string, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := filter(s.chats, func(m model.ChatMessage) bool { return m.UserID == userID })
	sortNewest(out, func(m model.ChatMessage) (time.Time, int64) { return m.CreatedAt, m.ID })
	return truncate(out, limit), nil
}

// helpers

// filter returns a new, never nil, slice of the items matching keep.
func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0)
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// sortNewest orders by time descending, then id descending.
func sortNewest[T any](items []T, key func(T) (time.Time, int64)) {
	slices.SortStableFunc(items, func(a, b T) int {
		at, aid := key(a)
		bt, bid := key(b)
		if c := bt.Compare(at); c != 0 {
			return c
		}
		return cmp.Compare(bid, aid)
	})
}

func truncate[T any](items []T, limit int) []T {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
