package cache

import (
	"context"
	"route-sequencer-service/internal/ports"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*RedisSequenceCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewRedisSequenceCache(rdb, ttl), mr
}

func TestRedisSequenceCacheRoundTrip(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "seq:abc")
	require.NoError(t, err)
	assert.False(t, ok)

	entry := ports.CachedSequence{
		OrderIDs:          []string{"b", "a"},
		ConstructedMeters: 1200.5,
		RefinedMeters:     1100.25,
		Swaps:             2,
	}
	require.NoError(t, c.Put(ctx, "seq:abc", entry))

	got, ok, err := c.Get(ctx, "seq:abc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, entry, got)

	assert.Equal(t, time.Minute, mr.TTL("seq:abc"))

	mr.FastForward(2 * time.Minute)
	_, ok, err = c.Get(ctx, "seq:abc")
	require.NoError(t, err)
	assert.False(t, ok, "entry should expire with the TTL")
}

func TestRedisSequenceCacheRejectsBadInput(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	_, _, err := c.Get(ctx, " ")
	assert.Error(t, err)
	assert.Error(t, c.Put(ctx, "", ports.CachedSequence{}))

	require.NoError(t, mr.Set("seq:corrupt", "{not json"))
	_, ok, err := c.Get(ctx, "seq:corrupt")
	assert.Error(t, err)
	assert.False(t, ok)

	var empty RedisSequenceCache
	_, _, err = empty.Get(ctx, "seq:x")
	assert.Error(t, err)
	assert.NoError(t, empty.Close())
}

func TestRedisSequenceCacheServerDown(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, ok, err := c.Get(ctx, "seq:abc")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestNewRedisSequenceCacheFromURL(t *testing.T) {
	mr := miniredis.RunT(t)

	c, err := NewRedisSequenceCacheFromURL(context.Background(), "redis://"+mr.Addr()+"/0", time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	_, err = NewRedisSequenceCacheFromURL(context.Background(), "not a url", time.Minute)
	assert.Error(t, err)
}
