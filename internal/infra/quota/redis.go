// Package quota keeps a per-principal daily analysis counter in Redis.
package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter allows Limit analyses per principal per UTC day.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	now    func() time.Time
}

func NewRedisLimiter(client *redis.Client, limit int) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, now: time.Now}
}

func (r *RedisLimiter) key(principal string) string {
	return fmt.Sprintf("quota:%s:%s", r.now().UTC().Format("20060102"), principal)
}

// Consume counts one analysis and reports whether it is within the limit.
// A non-positive limit disables the check.
func (r *RedisLimiter) Consume(ctx context.Context, principal string) (bool, error) {
	if r.limit <= 0 {
		return true, nil
	}
	key := r.key(principal)
	used, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("quota incr %s: %w", key, err)
	}
	if used == 1 {
		// first hit of the day owns the expiry
		if err := r.client.Expire(ctx, key, 25*time.Hour).Err(); err != nil {
			return false, fmt.Errorf("quota expire %s: %w", key, err)
		}
	}
	return used <= int64(r.limit), nil
}

// Ping is used by the health checker.
func (r *RedisLimiter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
