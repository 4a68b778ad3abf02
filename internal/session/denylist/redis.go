package denylist

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "sessiond:denylist:"

// Redis is a Denylist backed by a Redis instance, shared across
// replicas. Entries carry a TTL so the set never outgrows the number
// of tokens that could still be alive.
type Redis struct {
	client *redis.Client
}

func NewRedis(addr, password string, db int) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

func (r *Redis) Add(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, keyPrefix+jti, "1", ttl).Err()
}

func (r *Redis) Contains(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, keyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Ping verifies the Redis connection.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
