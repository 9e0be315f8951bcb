package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-erp-api/internal/infrastructure/cache"
)

// redisForTest conecta a TEST_REDIS_URL; sin variable el test se omite.
func redisForTest(t *testing.T) *redis.Client {
	t.Helper()
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL no definido")
	}
	rdb, err := cache.NewRedis(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestKey(t *testing.T) {
	assert.Equal(t, "portal:pricelist:abc", cache.Key("abc"))
}

func TestNewRedis_URLInvalida(t *testing.T) {
	_, err := cache.NewRedis(context.Background(), "http://no-es-redis")
	require.Error(t, err)
}

func TestPriceCache_SetGetInvalidate(t *testing.T) {
	rdb := redisForTest(t)
	c := cache.NewPriceCache(rdb, time.Minute)
	ctx := context.Background()
	id := "test-" + time.Now().Format("150405.000000")

	_, ok, err := c.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, id, []byte(`{"id":"x"}`)))
	raw, ok, err := c.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"id":"x"}`, string(raw))

	ttl, err := rdb.TTL(ctx, cache.Key(id)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, c.Invalidate(ctx, id))
	_, ok, err = c.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocker_SerializaPorClave(t *testing.T) {
	rdb := redisForTest(t)
	l := cache.NewLocker(rdb, nil)
	key := "payment:test-" + time.Now().Format("150405.000000")

	release, err := l.Acquire(context.Background(), key, 5*time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	_, err = l.Acquire(ctx, key, 5*time.Second)
	assert.Error(t, err, "la clave está tomada")

	release()
	release2, err := l.Acquire(context.Background(), key, 5*time.Second)
	require.NoError(t, err)
	release2()
}
