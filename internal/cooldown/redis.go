package cooldown

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the timestamp as epoch milliseconds so every instance behind
// the load balancer shares one cooldown per client.
type RedisStore struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisStore sets a housekeeping TTL on every key; ttl <= 0 keeps keys forever.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if client == nil {
		panic("cooldown: redis client cannot be nil")
	}
	return &RedisStore{redis: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, key string) (time.Time, bool, error) {
	raw, err := s.redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("cooldown: redis get: %w", err)
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("cooldown: malformed timestamp %q: %w", raw, err)
	}
	return time.UnixMilli(ms), true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, at time.Time) error {
	ttl := s.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err := s.redis.Set(ctx, key, strconv.FormatInt(at.UnixMilli(), 10), ttl).Err(); err != nil {
		return fmt.Errorf("cooldown: redis set: %w", err)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
