// Package cache holds computed leaderboards between workouts.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/okian/fitquest/internal/domain/types"
)

// LeaderboardCache stores one computed leaderboard per period.
//
// Every Invalidate starts a new generation. A board computed after reading
// Generation is stored by Set only while that generation is still current,
// so a read racing a recorded workout never writes stale entries back.
type LeaderboardCache interface {
	// Get reports ok=false on a miss.
	Get(ctx context.Context, period types.Period) (entries []types.Entry, ok bool, err error)
	Generation(ctx context.Context) (uint64, error)
	// Set is a no-op when gen is no longer the current generation.
	Set(ctx context.Context, period types.Period, gen uint64, entries []types.Entry) error
	// Invalidate drops every period. Called after each recorded workout.
	Invalidate(ctx context.Context) error
	Close() error
}

var periods = []types.Period{types.PeriodWeek, types.PeriodMonth, types.PeriodAll} //nolint:gochecknoglobals // fixed key set

// Nop never hits.
type Nop struct{}

func (Nop) Get(context.Context, types.Period) ([]types.Entry, bool, error) { return nil, false, nil }
func (Nop) Generation(context.Context) (uint64, error)                     { return 0, nil }
func (Nop) Set(context.Context, types.Period, uint64, []types.Entry) error { return nil }
func (Nop) Invalidate(context.Context) error                               { return nil }
func (Nop) Close() error                                                   { return nil }

type memoryItem struct {
	entries []types.Entry
	expires time.Time
}

// Memory is an in-process LeaderboardCache with a TTL.
type Memory struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	gen   uint64
	items map[types.Period]memoryItem
}

// NewMemory creates an in-process cache. A non-positive ttl disables expiry.
func NewMemory(ttl time.Duration, opts ...MemoryOption) *Memory {
	m := &Memory{ttl: ttl, now: time.Now, items: make(map[types.Period]memoryItem)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MemoryOption configures a Memory cache.
type MemoryOption func(*Memory)

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

func (m *Memory) Get(_ context.Context, period types.Period) ([]types.Entry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	it, ok := m.items[period]
	if !ok {
		return nil, false, nil
	}
	if m.ttl > 0 && !m.now().Before(it.expires) {
		delete(m.items, period)
		return nil, false, nil
	}
	return append([]types.Entry(nil), it.entries...), true, nil
}

func (m *Memory) Generation(context.Context) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen, nil
}

func (m *Memory) Set(_ context.Context, period types.Period, gen uint64, entries []types.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.gen {
		return nil
	}
	m.items[period] = memoryItem{
		entries: append([]types.Entry(nil), entries...),
		expires: m.now().Add(m.ttl),
	}
	return nil
}

func (m *Memory) Invalidate(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	clear(m.items)
	return nil
}

func (m *Memory) Close() error { return nil }
