package testutil

import (
	"context"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go/modules/redis"
)

const redisImage = "redis:7-alpine"

// RedisContainer is a throwaway Redis with a connected client.
type RedisContainer struct {
	Container *redis.RedisContainer
	Client    *goredis.Client
}

// NewRedisContainer starts Redis and pings it. Call Cleanup when done.
func NewRedisContainer(ctx context.Context, t *testing.T) *RedisContainer {
	t.Helper()

	c, err := redis.Run(ctx, redisImage)
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	rc := &RedisContainer{Container: c}

	uri, err := c.ConnectionString(ctx)
	if err != nil {
		rc.Cleanup(t)
		t.Fatalf("failed to get redis connection string: %v", err)
	}
	opts, err := goredis.ParseURL(uri)
	if err != nil {
		rc.Cleanup(t)
		t.Fatalf("failed to parse redis url %q: %v", uri, err)
	}

	rc.Client = goredis.NewClient(opts)
	if err := rc.Client.Ping(ctx).Err(); err != nil {
		rc.Cleanup(t)
		t.Fatalf("failed to ping redis: %v", err)
	}
	return rc
}

// Cleanup closes the client and terminates the container.
func (rc *RedisContainer) Cleanup(t *testing.T) {
	t.Helper()
	if rc.Client != nil {
		_ = rc.Client.Close()
	}
	if rc.Container != nil {
		terminate(t, "redis", rc.Container)
	}
}
