//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/okian/fitquest/internal/adapters/cache"
	"github.com/okian/fitquest/internal/domain/types"
)

func TestRedisCache(t *testing.T) {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	rdb, err := cache.Connect(ctx, endpoint, 0)
	require.NoError(t, err)
	c := cache.NewRedis(rdb, time.Minute)
	t.Cleanup(func() { _ = c.Close() })

	_, ok, err := c.Get(ctx, types.PeriodWeek)
	require.NoError(t, err)
	require.False(t, ok)

	entries := []types.Entry{{Rank: 1, UserID: "alice", FirstName: "Alice", Points: 12, TotalPoints: 30}}
	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, types.PeriodWeek, gen, entries))

	got, ok, err := c.Get(ctx, types.PeriodWeek)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, entries, got)

	require.NoError(t, c.Invalidate(ctx))
	_, ok, err = c.Get(ctx, types.PeriodWeek)
	require.NoError(t, err)
	require.False(t, ok)

	// A board computed before the invalidation stays out of the cache.
	require.NoError(t, c.Set(ctx, types.PeriodWeek, gen, entries))
	_, ok, err = c.Get(ctx, types.PeriodWeek)
	require.NoError(t, err)
	require.False(t, ok)

	next, err := c.Generation(ctx)
	require.NoError(t, err)
	require.Equal(t, gen+1, next)
	require.NoError(t, c.Set(ctx, types.PeriodWeek, next, entries))
	_, ok, err = c.Get(ctx, types.PeriodWeek)
	require.NoError(t, err)
	require.True(t, ok)
}
