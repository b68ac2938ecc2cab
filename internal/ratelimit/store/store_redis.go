package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tapcard/internal/ratelimit/models"
	"tapcard/pkg/platform/sentinel"
)

// RedisStore implements fixed-window counting on Redis so limits hold across
// all instances sharing the same Redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedis creates a counter store backed by the given Redis client.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Allow counts one request against the key's current window and reports
// whether it fits under the limit. INCR and EXPIRE run in one pipeline so
// the window starts with the first request that touches the key.
func (s *RedisStore) Allow(ctx context.Context, key string, limit int, windowSize time.Duration) (*models.Result, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, windowSize)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("rate limit check: %v: %w", err, sentinel.ErrUnavailable)
	}

	count := int(incr.Val())
	remaining := ttl.Val()
	if remaining < 0 {
		remaining = windowSize
	}

	result := &models.Result{
		Limit:   limit,
		ResetAt: time.Now().Add(remaining),
	}
	if count <= limit {
		result.Allowed = true
		result.Remaining = limit - count
	}
	return result, nil
}
