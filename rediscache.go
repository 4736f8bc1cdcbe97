package videocourse

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps cache tiers in Redis strings under prefix:table:key
type RedisStore struct {
	client *redis.Client
	prefix string
}

// ConnectRedis establishes a connection to Redis
func ConnectRedis(ctx context.Context, addr, prefix string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if prefix == "" {
		prefix = "videocourse"
	}

	return &RedisStore{client: client, prefix: prefix}, nil
}

func (r *RedisStore) key(table Table, key string) string {
	return fmt.Sprintf("%s:%s:%s", r.prefix, table, key)
}

// Get retrieves the value stored under key
func (r *RedisStore) Get(ctx context.Context, table Table, key string) ([]byte, bool, error) {
	value, err := r.client.Get(ctx, r.key(table, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("error reading %s entry: %w", table, err)
	}
	return value, true, nil
}

// Put overwrites the value stored under key
func (r *RedisStore) Put(ctx context.Context, table Table, key string, value []byte) error {
	if err := r.client.Set(ctx, r.key(table, key), value, 0).Err(); err != nil {
		return fmt.Errorf("error writing %s entry: %w", table, err)
	}
	return nil
}

// Delete removes the value stored under key
func (r *RedisStore) Delete(ctx context.Context, table Table, key string) error {
	if err := r.client.Del(ctx, r.key(table, key)).Err(); err != nil {
		return fmt.Errorf("error deleting %s entry: %w", table, err)
	}
	return nil
}

// Close closes the Redis connection
func (r *RedisStore) Close() error {
	return r.client.Close()
}
