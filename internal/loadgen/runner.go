package loadgen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/fitquest/pkg/logger"
)

const progressInterval = time.Second

// Run failures.
var (
	ErrInvalidConfig = errors.New("invalid load config")
	ErrUnhealthy     = errors.New("service unhealthy")
	ErrMismatch      = errors.New("totals do not match submitted workouts")
)

func (c *Config) validate() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("%w: base url is required", ErrInvalidConfig)
	case c.Users < 1:
		return fmt.Errorf("%w: users must be positive", ErrInvalidConfig)
	case c.Workouts < 1:
		return fmt.Errorf("%w: workouts must be positive", ErrInvalidConfig)
	case c.Replays < 0:
		return fmt.Errorf("%w: replays must not be negative", ErrInvalidConfig)
	case c.Secret == "":
		return fmt.Errorf("%w: jwt secret is required", ErrInvalidConfig)
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	return nil
}

// Run executes a complete load run and returns its statistics. A run whose
// totals disagree with the submitted workouts fails with ErrMismatch.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	log := logger.Get().Named("loadgen")
	stats := &Stats{StartTime: time.Now(), Users: cfg.Users}

	log.Info(ctx, "starting load run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("users", cfg.Users),
		logger.Int("workouts", cfg.Workouts),
		logger.Int("replays", cfg.Replays),
		logger.Int("workers", cfg.Workers))

	c := newClient(cfg.BaseURL, cfg.Timeout)

	// Step 1: Check service health
	if err := checkHealth(ctx, c); err != nil {
		return stats, err
	}

	// Step 2: Generate users and workouts
	users, err := generateUsers(cfg)
	if err != nil {
		return stats, fmt.Errorf("user generation failed: %w", err)
	}
	subs, err := generateWorkouts(cfg)
	if err != nil {
		return stats, fmt.Errorf("workout generation failed: %w", err)
	}

	// Step 3: Submit concurrently
	accepted := submitAll(ctx, log, cfg, c, users, subs, stats)

	// Step 4: Verify stats and leaderboard
	verifyErr := verify(ctx, log, c, users, subs, accepted, stats)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	logFinalStats(ctx, log, stats)
	return stats, verifyErr
}

func checkHealth(ctx context.Context, c *client) error {
	resp, err := c.do(ctx, http.MethodGet, "/healthz", "", nil, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	defer closeBody(resp)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

// submitAll posts every submission through cfg.Workers goroutines and
// returns which of them were accepted.
func submitAll(ctx context.Context, log logger.Logger, cfg *Config, c *client, users []User, subs []Submission, stats *Stats) []bool {
	accepted := make([]bool, len(subs))
	jobs := make(chan int, cfg.Workers*2)

	var (
		wg         sync.WaitGroup
		lastReport atomic.Int64
	)
	for range cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				s := &subs[i]
				switch c.submit(ctx, users[s.User].Token, s) {
				case Accepted:
					accepted[i] = true
					atomic.AddInt64(&stats.Accepted, 1)
				case Duplicate:
					atomic.AddInt64(&stats.Duplicates, 1)
				case Failed:
					atomic.AddInt64(&stats.Failed, 1)
				}
				n := atomic.AddInt64(&stats.Submitted, 1)

				now := time.Now().UnixNano()
				if last := lastReport.Load(); cfg.Verbose && now-last >= int64(progressInterval) && lastReport.CompareAndSwap(last, now) {
					log.Info(ctx, "progress",
						logger.Int64("submitted", n),
						logger.Int("total", len(subs)))
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range subs {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()

	wg.Wait()
	return accepted
}

func logFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("users", stats.Users),
		logger.Int64("submitted", stats.Submitted),
		logger.Int64("accepted", stats.Accepted),
		logger.Int64("duplicates", stats.Duplicates),
		logger.Int64("failed", stats.Failed),
		logger.Int("verified", stats.Verified),
		logger.Duration("duration", stats.Duration),
		logger.Float64("workoutsPerSecond", perSecond))
}
