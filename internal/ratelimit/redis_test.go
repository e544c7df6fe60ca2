package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("redis container test skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(container)
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() {
		_ = client.Close()
	})
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestRedis_Allow(t *testing.T) {
	client := newRedisClient(t)
	limiter := NewRedis(client, 300*time.Millisecond, 5)
	ctx := t.Context()

	for i := range 5 {
		allowed, err := limiter.Allow(ctx, "client-a")
		require.NoError(t, err)
		assert.True(t, allowed, "request %d", i+1)
	}
	allowed, err := limiter.Allow(ctx, "client-a")
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = limiter.Allow(ctx, "client-b")
	require.NoError(t, err)
	assert.True(t, allowed)

	assert.Eventually(t, func() bool {
		ok, allowErr := limiter.Allow(ctx, "client-a")
		return allowErr == nil && ok
	}, 2*time.Second, 50*time.Millisecond)
}

func TestRedis_AllowConcurrent(t *testing.T) {
	client := newRedisClient(t)
	limiter := NewRedis(client, time.Minute, 5)
	ctx := t.Context()

	const workers = 50
	var (
		wg      sync.WaitGroup
		allowed atomic.Int32
	)
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			if ok, err := limiter.Allow(ctx, "same"); err == nil && ok {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), allowed.Load())
}
