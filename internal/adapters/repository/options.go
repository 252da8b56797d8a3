package repository

import (
	"time"

	"github.com/okian/fitquest/internal/domain/model"
)

// Option configures a MemoryStore.
type Option func(*MemoryStore)

// WithClock overrides the time source used for created/updated stamps.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithAchievements preloads unlocked achievements.
func WithAchievements(items ...model.Achievement) Option {
	return func(s *MemoryStore) {
		for _, a := range items {
			s.nextID++
			a.ID = s.nextID
			s.achievements = append(s.achievements, a)
		}
	}
}
