package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"route-sequencer-service/internal/platform/obs"
	"route-sequencer-service/internal/ports"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// RedisSequenceCache stores sequencing results in Redis as JSON with a TTL.
// Keys are expected to be digests of the full sequencing input.
type RedisSequenceCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSequenceCache(rdb *redis.Client, ttl time.Duration) *RedisSequenceCache {
	return &RedisSequenceCache{rdb: rdb, ttl: ttl}
}

// NewRedisSequenceCacheFromURL parses a redis:// URL and verifies the connection.
func NewRedisSequenceCacheFromURL(ctx context.Context, url string, ttl time.Duration) (*RedisSequenceCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("sequence cache: parse redis url: %w", err)
	}

	rdb := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("sequence cache: ping redis: %w", err)
	}

	return NewRedisSequenceCache(rdb, ttl), nil
}

// Fetch a cached sequence. A missing key is reported with ok=false and no error.
func (c *RedisSequenceCache) Get(ctx context.Context, key string) (_ ports.CachedSequence, _ bool, err error) {
	defer obs.Time(ctx, "sequence.cache.Get")(&err)

	if c.rdb == nil {
		return ports.CachedSequence{}, false, errors.New("sequence cache: redis client is nil")
	}
	if strings.TrimSpace(key) == "" {
		return ports.CachedSequence{}, false, errors.New("get sequence cache: key must not be empty")
	}

	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ports.CachedSequence{}, false, nil
	}
	if err != nil {
		return ports.CachedSequence{}, false, fmt.Errorf("get sequence cache: %w", err)
	}

	var entry ports.CachedSequence
	if err := json.Unmarshal(data, &entry); err != nil {
		return ports.CachedSequence{}, false, fmt.Errorf("get sequence cache: decode %q: %w", key, err)
	}

	return entry, true, nil
}

// Store a sequence under key, replacing any previous value.
func (c *RedisSequenceCache) Put(ctx context.Context, key string, entry ports.CachedSequence) error {
	if c.rdb == nil {
		return errors.New("sequence cache: redis client is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("insert sequence cache: key must not be empty")
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("insert sequence cache: encode: %w", err)
	}

	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("insert sequence cache key=%q: %w", key, err)
	}

	return nil
}

func (c *RedisSequenceCache) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
