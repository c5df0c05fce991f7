package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps counters in Redis using GET, SET EX, INCRBY and EXPIRE.
type RedisStore struct {
	Client redis.UniversalClient
}

// NewRedisStore connects to the Redis instance described by url
// (redis://[user:pass@]host:port/db) and verifies it with a PING.
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &RedisStore{Client: client}, nil
}

// GetInt implements Store.
func (s *RedisStore) GetInt(ctx context.Context, key string) (int64, bool, error) {
	v, err := s.Client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// SetInt implements Store.
func (s *RedisStore) SetInt(ctx context.Context, key string, value int64, ttl time.Duration) error {
	return s.Client.Set(ctx, key, value, ttl).Err()
}

// Incr implements Store.
func (s *RedisStore) Incr(ctx context.Context, key string, delta int64) (int64, error) {
	return s.Client.IncrBy(ctx, key, delta).Result()
}

// Expire implements Store.
func (s *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return s.Client.Expire(ctx, key, ttl).Err()
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error { return s.Client.Close() }
