package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitStore implements usecase.RateLimitStore as a fixed-window
// counter. The first hit in a window creates the key and arms its expiry;
// the count resets when the window key expires.
type RateLimitStore struct {
	client *redis.Client
	prefix string
}

// NewRateLimitStore creates a new RateLimitStore.
func NewRateLimitStore(client *redis.Client) *RateLimitStore {
	return &RateLimitStore{
		client: client,
		prefix: "ratelimit:",
	}
}

// Hit increments the counter for key's current window and returns the new
// count.
func (s *RateLimitStore) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	bucket := s.prefix + key

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, bucket)
	pipe.ExpireNX(ctx, bucket, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}

	return incr.Val(), nil
}
