package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf/internal/config"
)

func unreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestRedisCache_ErrorsWhenUnreachable(t *testing.T) {
	client := unreachableClient()
	defer client.Close()

	c := NewRedisCache(client, time.Minute)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "k")
	require.Error(t, err)
	assert.False(t, ok)

	assert.Error(t, c.Set(ctx, "k", []byte("v")))
}

func TestNewRedisClient_PingFails(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := NewRedisClient(ctx, config.RedisConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
