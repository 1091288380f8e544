package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces every key written by RedisStore.
const DefaultRedisPrefix = "ovhcli:"

// RedisStore handles caching operations with a Redis backend.
// Redis expires entries on its own; the stored expiration is still checked
// on read so a clock skew never serves a stale value.
type RedisStore struct {
	redis  *redis.Client
	prefix string
	now    Clock
}

// NewRedisStore creates a new store with Redis backend.
func NewRedisStore(redisClient *redis.Client) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{
		redis:  redisClient,
		prefix: DefaultRedisPrefix,
		now:    time.Now,
	}
}

// WithClock replaces the time source used for expiration.
func (s *RedisStore) WithClock(now Clock) *RedisStore {
	s.now = now
	return s
}

// GetItem implements Store.
func (s *RedisStore) GetItem(ctx context.Context, key string) (*Entry, error) {
	entry := &Entry{Key: key, now: s.now}

	data, err := s.redis.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			CacheMisses.Inc()
			return entry, nil
		}
		CacheErrors.WithLabelValues("get").Inc()
		return entry, fmt.Errorf("redis get: %w", err)
	}

	var stored Entry
	if err := json.Unmarshal(data, &stored); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		return entry, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	entry.Value = stored.Value
	entry.Expires = stored.Expires
	entry.hit = true

	if !entry.IsHit() {
		if entry.IsExpired() {
			_ = s.DeleteItem(ctx, key)
		}
		entry.hit = false
		CacheMisses.Inc()
		return entry, nil
	}

	CacheHits.WithLabelValues("redis").Inc()
	return entry, nil
}

// Save implements Store. The Redis TTL is derived from the entry's Expires field.
func (s *RedisStore) Save(ctx context.Context, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	ttl := entry.TTL()
	if ttl <= 0 {
		// Already expired, don't cache
		return nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := s.redis.Set(ctx, s.prefix+entry.Key, data, ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	entry.hit = true
	CacheSize.WithLabelValues("redis").Add(float64(len(data)))
	return nil
}

// DeleteItem implements Store.
func (s *RedisStore) DeleteItem(ctx context.Context, key string) error {
	if err := s.redis.Del(ctx, s.prefix+key).Err(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Clear implements Store. Only keys under the store prefix are removed.
func (s *RedisStore) Clear(ctx context.Context) error {
	iter := s.redis.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		CacheErrors.WithLabelValues("clear").Inc()
		return fmt.Errorf("redis scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}

	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		CacheErrors.WithLabelValues("clear").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	CacheSize.WithLabelValues("redis").Set(0)
	return nil
}
