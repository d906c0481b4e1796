package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"write-space.backend/internal/domain/entities"
	"write-space.backend/pkg/redis"
)

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	redis.SetClient(client)
	t.Cleanup(func() {
		_ = client.Close()
		redis.SetClient(nil)
	})
	return mr
}

func TestTagCache_RoundTrip(t *testing.T) {
	mr := setupMiniredis(t)
	c := NewTagCache(time.Minute)
	ctx := context.Background()

	_, ok := c.Get(ctx)
	assert.False(t, ok)

	tags := []entities.TagCount{{Name: "go", Count: 3}, {Name: "web", Count: 1}}
	c.Set(ctx, tags)

	got, ok := c.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, tags, got)
	assert.Equal(t, time.Minute, mr.TTL(KeyTagCounts))

	mr.FastForward(2 * time.Minute)
	_, ok = c.Get(ctx)
	assert.False(t, ok)
}

func TestTagCache_DefaultTTL(t *testing.T) {
	mr := setupMiniredis(t)
	NewTagCache(0).Set(context.Background(), []entities.TagCount{})
	assert.Equal(t, DefaultTagsTTL, mr.TTL(KeyTagCounts))
}

func TestTagCache_CorruptEntryIsMiss(t *testing.T) {
	mr := setupMiniredis(t)
	require.NoError(t, mr.Set(KeyTagCounts, "{not json"))

	_, ok := NewTagCache(time.Minute).Get(context.Background())
	assert.False(t, ok)
}

func TestTagCache_RedisErrorsDegrade(t *testing.T) {
	setupMiniredis(t)
	origGet, origSet := redisGet, redisSet
	t.Cleanup(func() { redisGet, redisSet = origGet, origSet })
	redisGet = func(context.Context, string) (string, error) { return "", errors.New("conn reset") }
	redisSet = func(context.Context, string, interface{}, time.Duration) error { return errors.New("conn reset") }

	c := NewTagCache(time.Minute)
	c.Set(context.Background(), []entities.TagCount{{Name: "go", Count: 1}})
	_, ok := c.Get(context.Background())
	assert.False(t, ok)
}

func TestTagCache_NoClient(t *testing.T) {
	redis.SetClient(nil)
	c := NewTagCache(time.Minute)
	c.Set(context.Background(), []entities.TagCount{{Name: "go", Count: 1}})
	_, ok := c.Get(context.Background())
	assert.False(t, ok)
}
