package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrNotFound      = errors.New("key not found")
	ErrInvalidConfig = errors.New("invalid storage configuration")
)

// Provider is a durable string key-value store.
type Provider interface {
	// Get returns ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	// Remove is idempotent: removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}

type Driver string

const (
	DriverMemory Driver = "memory"
	DriverFile   Driver = "file"
	DriverRedis  Driver = "redis"
)

type providerConfig struct {
	path        string
	name        string
	redisClient redis.UniversalClient
	redisPrefix string
	redisTTL    time.Duration
}

type Option func(*providerConfig)

// WithPath sets the directory the file driver writes to.
func WithPath(path string) Option {
	return func(c *providerConfig) { c.path = path }
}

// WithName sets the file name (without extension) for the file driver.
func WithName(name string) Option {
	return func(c *providerConfig) { c.name = name }
}

func WithRedisClient(client redis.UniversalClient) Option {
	return func(c *providerConfig) { c.redisClient = client }
}

func WithRedisPrefix(prefix string) Option {
	return func(c *providerConfig) { c.redisPrefix = prefix }
}

// WithRedisTTL expires entries after ttl. Zero keeps them forever.
func WithRedisTTL(ttl time.Duration) Option {
	return func(c *providerConfig) { c.redisTTL = ttl }
}

// NewProvider creates a Provider for the given driver.
func NewProvider(driver Driver, opts ...Option) (Provider, error) {
	config := &providerConfig{
		name:        "storage",
		redisPrefix: "reader:",
	}
	for _, opt := range opts {
		opt(config)
	}

	switch driver {
	case DriverMemory:
		return NewMemoryProvider(), nil

	case DriverFile:
		if len(config.path) == 0 {
			return nil, fmt.Errorf("%w: file driver requires a path", ErrInvalidConfig)
		}
		return NewFileProvider(config.path, config.name)

	case DriverRedis:
		if config.redisClient == nil {
			return nil, fmt.Errorf("%w: redis driver requires a client", ErrInvalidConfig)
		}
		return NewRedisProvider(config.redisClient, config.redisPrefix, config.redisTTL), nil

	default:
		return nil, fmt.Errorf("%w: unknown driver %q", ErrInvalidConfig, driver)
	}
}
