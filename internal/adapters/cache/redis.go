package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/fitquest/internal/domain/types"
)

const (
	keyPrefix = "fitquest:leaderboard:"
	genKey    = keyPrefix + "gen"
)

// Redis is a LeaderboardCache shared by every instance pointing at the
// same server.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

// Connect dials addr and pings it.
func Connect(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}
	return rdb, nil
}

// NewRedis wraps a connected client.
func NewRedis(rdb *redis.Client, ttl time.Duration) *Redis {
	return &Redis{rdb: rdb, ttl: ttl}
}

func key(period types.Period) string { return keyPrefix + string(period) }

func (c *Redis) Get(ctx context.Context, period types.Period) ([]types.Entry, bool, error) {
	raw, err := c.rdb.Get(ctx, key(period)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: get %s: %w", ErrCache, period, err)
	}
	var entries []types.Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false, fmt.Errorf("%w: decode %s: %w", ErrCache, period, err)
	}
	return entries, true, nil
}

// Generation reads the invalidation counter; an unset counter is 0.
func (c *Redis) Generation(ctx context.Context) (uint64, error) {
	gen, err := c.rdb.Get(ctx, genKey).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: generation: %w", ErrCache, err)
	}
	return gen, nil
}

// Set writes under WATCH on the generation key, so an Invalidate landing
// between the check and the write aborts it.
func (c *Redis) Set(ctx context.Context, period types.Period, gen uint64, entries []types.Entry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrCache, period, err)
	}
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Uint64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key(period), raw, c.ttl)
			return nil
		})
		return err
	}, genKey)
	if err != nil && !errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("%w: set %s: %w", ErrCache, period, err)
	}
	return nil
}

func (c *Redis) Invalidate(ctx context.Context) error {
	keys := make([]string, 0, len(periods))
	for _, p := range periods {
		keys = append(keys, key(p))
	}
	_, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, genKey)
		p.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: invalidate: %w", ErrCache, err)
	}
	return nil
}

func (c *Redis) Close() error { return c.rdb.Close() }
