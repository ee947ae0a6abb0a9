package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the device profile in Redis so several processes on the
// same machine can share one guest cart. The Store contract is synchronous,
// so each call runs under its own short deadline.
type RedisStore struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{
		client:  client,
		prefix:  prefix,
		timeout: 2 * time.Second,
	}
}

func (r *RedisStore) Read(key string) ([]byte, error) {
	ctx, cancel := r.opContext()
	defer cancel()

	data, err := r.client.Get(ctx, r.storeKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

func (r *RedisStore) Write(key string, value []byte) error {
	ctx, cancel := r.opContext()
	defer cancel()

	// No TTL: guest state lives until cleared, like browser local storage.
	if err := r.client.Set(ctx, r.storeKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Remove(key string) error {
	ctx, cancel := r.opContext()
	defer cancel()

	if err := r.client.Del(ctx, r.storeKey(key)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r *RedisStore) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), r.timeout)
}

func (r *RedisStore) storeKey(key string) string {
	return fmt.Sprintf("%s:%s", r.prefix, key)
}
