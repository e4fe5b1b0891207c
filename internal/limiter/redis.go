package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis counts attempts per fixed window so several front-end instances share one budget.
type Redis struct {
	client *redis.Client
	prefix string
	limit  int64
	window time.Duration
}

var _ Limiter = (*Redis)(nil)

func NewRedis(client *redis.Client, prefix string, limit int, window time.Duration) *Redis {
	return &Redis{client: client, prefix: prefix, limit: int64(limit), window: window}
}

// Allow fails open when Redis is unreachable and returns the error for logging.
// The window starts with the first attempt; EXPIRE NX keeps later attempts
// from pushing it out. Needs Redis 7.
func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	pipe := r.client.Pipeline()
	incr := pipe.Incr(ctx, r.prefix+key)
	pipe.ExpireNX(ctx, r.prefix+key, r.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, fmt.Errorf("[limiter Redis.Allow] %w", err)
	}
	return incr.Val() <= r.limit, nil
}
