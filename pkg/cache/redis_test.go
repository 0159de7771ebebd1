package cache

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRedisClient(t *testing.T) *RedisClient {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client, err := NewRedisClient(&Config{Addr: addr})
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func TestRedisClient_GetMiss(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	client.Client.Del(ctx, "cache-test:missing")

	_, err := client.Get(ctx, "cache-test:missing")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisClient_DelPattern(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	client.DelPattern(ctx, "cache-test:*")

	for i := 0; i < 450; i++ {
		require.NoError(t, client.Set(ctx, fmt.Sprintf("cache-test:list:%d", i), []byte("x"), time.Minute))
	}
	require.NoError(t, client.Set(ctx, "cache-test:item:1", []byte("x"), time.Minute))

	n, err := client.DelPattern(ctx, "cache-test:list:*")
	require.NoError(t, err)
	assert.Equal(t, 450, n)

	_, err = client.Get(ctx, "cache-test:item:1")
	assert.NoError(t, err)
	client.Del(ctx, "cache-test:item:1")
}
