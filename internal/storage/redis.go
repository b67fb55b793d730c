package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisProvider stores entries in redis so a session can follow the user
// between machines sharing the same instance.
type RedisProvider struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisProvider(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisProvider {
	return &RedisProvider{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (r *RedisProvider) key(key string) string {
	return r.prefix + key
}

func (r *RedisProvider) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

func (r *RedisProvider) Set(ctx context.Context, key string, value string) error {
	logrus.WithFields(logrus.Fields{
		"key": r.key(key),
		"ttl": r.ttl,
	}).Debugln("Writing storage entry to redis")

	if err := r.client.Set(ctx, r.key(key), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisProvider) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
