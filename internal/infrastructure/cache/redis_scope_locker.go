package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/restobo/backend/internal/application/recalc"
	"github.com/restobo/backend/internal/infrastructure/config"
)

// RedisScopeLocker implements the recalculation ScopeLocker using Redis.
// SETNX with a TTL gives an atomic, self-expiring lock that is shared across
// instances, so at most one recalculation runs at a time even in a
// multi-replica deployment.
type RedisScopeLocker struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisScopeLocker creates a scope locker with its own Redis client
func NewRedisScopeLocker(cfg config.RedisConfig) (*RedisScopeLocker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisScopeLocker{
		client:    client,
		keyPrefix: "lock:",
	}, nil
}

// NewRedisScopeLockerWithClient creates a scope locker with an existing
// Redis client. Useful for testing or when sharing a client.
func NewRedisScopeLockerWithClient(client *redis.Client, keyPrefix string) *RedisScopeLocker {
	if keyPrefix == "" {
		keyPrefix = "lock:"
	}
	return &RedisScopeLocker{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Acquire tries to take the lock. Returns false without error when another
// holder already has it.
func (l *RedisScopeLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	acquired, err := l.client.SetNX(ctx, l.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock %q: %w", key, err)
	}
	return acquired, nil
}

// Release frees the lock. Releasing a lock that already expired is not an
// error.
func (l *RedisScopeLocker) Release(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, l.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release lock %q: %w", key, err)
	}
	return nil
}

// Close closes the Redis client
func (l *RedisScopeLocker) Close() error {
	return l.client.Close()
}

// Ensure RedisScopeLocker implements ScopeLocker
var _ recalc.ScopeLocker = (*RedisScopeLocker)(nil)
