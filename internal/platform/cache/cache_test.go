package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/yungbote/coursekeeper-backend/internal/platform/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("github.com/patrickmn/go-cache.(*janitor).Run"),
	)
}

func exercise(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "lookup:a:2012")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "lookup:a:2012", []byte("x"), 0))
	require.NoError(t, c.Set(ctx, "lookup:a:2013", []byte("y"), time.Minute))
	require.NoError(t, c.Set(ctx, "lookup:b:2012", []byte("z"), time.Minute))

	got, ok, err := c.Get(ctx, "lookup:a:2012")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("x"), got)

	n, err := c.DeletePrefix(ctx, "lookup:a:")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, ok, err = c.Get(ctx, "lookup:a:2013")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = c.Get(ctx, "lookup:b:2012")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryCache(t *testing.T) {
	c := NewMemory(logger.Nop(), Config{TTL: time.Minute})
	t.Cleanup(func() { _ = c.Close() })
	exercise(t, c)
}

func TestMemoryCacheExpires(t *testing.T) {
	c := NewMemory(logger.Nop(), Config{TTL: time.Minute})
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", []byte("v"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)
	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis cache tests")
	}
	c, err := NewRedis(logger.Nop(), Config{RedisAddr: addr, RedisPrefix: "coursekeeper-test:", TTL: time.Minute})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	_, _ = c.DeletePrefix(context.Background(), "")
	exercise(t, c)
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	_, err := New(logger.Nop(), Config{Backend: "memcached"})
	require.Error(t, err)
}

func TestNewRedisRequiresAddr(t *testing.T) {
	_, err := New(logger.Nop(), Config{Backend: BackendRedis})
	require.Error(t, err)
}

func TestConfigShared(t *testing.T) {
	assert.False(t, Config{}.Shared())
	assert.False(t, Config{Backend: BackendMemory}.Shared())
	assert.True(t, Config{Backend: BackendRedis}.Shared())
}
