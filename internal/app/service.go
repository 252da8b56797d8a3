// Package service implements the fitness operations behind the HTTP API:
// workout scoring, stats and leaderboards, tracking, social features and
// the AI coach.
package service

import (
	"context"
	"time"

	"github.com/okian/fitquest/internal/adapters/cache"
	eventqueue "github.com/okian/fitquest/internal/adapters/mq/queue"
	"github.com/okian/fitquest/internal/adapters/repository"
	"github.com/okian/fitquest/internal/domain/dedupe"
	"github.com/okian/fitquest/pkg/logger"
)

const (
	defaultWorkoutsLimit = 10
	defaultMaxWorkouts   = 100
	defaultChatLimit     = 50
	defaultGoalPoints    = 10
)

// Coach generates free-text replies for a prompt.
type Coach interface {
	Available() bool
	Generate(ctx context.Context, kind, prompt string) (string, error)
}

// Service implements the API dependencies.
type Service struct {
	store   repository.Store
	cache   cache.LeaderboardCache
	events  eventqueue.Queue
	deduper dedupe.Deduper
	coach   Coach

	maxWorkouts int
	now         func() time.Time
	logger      logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithCache sets the leaderboard cache. The default never hits.
func WithCache(c cache.LeaderboardCache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithEventQueue sets the queue that receives workout.recorded events.
// Without one no events are emitted.
func WithEventQueue(q eventqueue.Queue) Option {
	return func(s *Service) { s.events = q }
}

// WithDeduper sets the idempotency-key tracker.
func WithDeduper(d dedupe.Deduper) Option {
	return func(s *Service) {
		if d != nil {
			s.deduper = d
		}
	}
}

// WithCoach sets the AI coach.
func WithCoach(c Coach) Option {
	return func(s *Service) { s.coach = c }
}

// WithMaxWorkoutsLimit caps the limit accepted by ListWorkouts.
func WithMaxWorkoutsLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxWorkouts = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service on top of store.
func New(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store:       store,
		cache:       cache.Nop{},
		deduper:     dedupe.NewInMemoryDeduper(),
		maxWorkouts: defaultMaxWorkouts,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Ping checks the store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Stats returns runtime counters for the health endpoint.
func (s *Service) Stats(ctx context.Context) map[string]any {
	stats := map[string]any{
		"dedupeSize":     s.deduper.Size(),
		"coachAvailable": s.coach != nil && s.coach.Available(),
	}
	if s.events != nil {
		stats["queueLength"] = s.events.Len(ctx)
	}
	return stats
}
