package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisProvider(t *testing.T, ttl time.Duration) (*RedisProvider, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisProvider(client, "test:", ttl), mr
}

func providersUnderTest(t *testing.T) map[string]Provider {
	t.Helper()

	file, err := NewFileProvider(t.TempDir(), "storage")
	require.NoError(t, err)

	redisProvider, _ := newRedisProvider(t, 0)

	return map[string]Provider{
		"memory": NewMemoryProvider(),
		"file":   file,
		"redis":  redisProvider,
	}
}

func TestProviders_GetSetRemove(t *testing.T) {
	ctx := context.Background()

	for name, provider := range providersUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			_, err := provider.Get(ctx, "persist:root")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, provider.Set(ctx, "persist:root", `{"auth":{}}`))

			value, err := provider.Get(ctx, "persist:root")
			require.NoError(t, err)
			assert.Equal(t, `{"auth":{}}`, value)

			require.NoError(t, provider.Set(ctx, "persist:root", "v2"))
			value, err = provider.Get(ctx, "persist:root")
			require.NoError(t, err)
			assert.Equal(t, "v2", value)

			require.NoError(t, provider.Remove(ctx, "persist:root"))
			_, err = provider.Get(ctx, "persist:root")
			assert.ErrorIs(t, err, ErrNotFound)

			// Removing twice is fine
			assert.NoError(t, provider.Remove(ctx, "persist:root"))
		})
	}
}

func TestFileProvider_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := NewFileProvider(dir, "session")
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "persist:root", "value"))

	second, err := NewFileProvider(dir, "session")
	require.NoError(t, err)

	value, err := second.Get(ctx, "persist:root")
	require.NoError(t, err)
	assert.Equal(t, "value", value)

	info, err := os.Stat(filepath.Join(dir, "session.yaml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileProvider_CorruptFileReinitialises(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "session.yaml"), []byte("{not: [yaml"), 0600))

	provider, err := NewFileProvider(dir, "session")
	require.NoError(t, err)

	_, err = provider.Get(ctx, "persist:root")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, provider.Set(ctx, "persist:root", "fresh"))
	value, err := provider.Get(ctx, "persist:root")
	require.NoError(t, err)
	assert.Equal(t, "fresh", value)
}

func TestRedisProvider_PrefixAndTTL(t *testing.T) {
	ctx := context.Background()
	provider, mr := newRedisProvider(t, time.Minute)

	require.NoError(t, provider.Set(ctx, "persist:root", "value"))

	assert.True(t, mr.Exists("test:persist:root"))
	assert.Equal(t, time.Minute, mr.TTL("test:persist:root"))

	mr.FastForward(2 * time.Minute)

	_, err := provider.Get(ctx, "persist:root")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name    string
		driver  Driver
		opts    []Option
		wantErr bool
	}{
		{name: "memory", driver: DriverMemory},
		{name: "file", driver: DriverFile, opts: []Option{WithPath(t.TempDir())}},
		{name: "file without path", driver: DriverFile, wantErr: true},
		{name: "redis without client", driver: DriverRedis, wantErr: true},
		{name: "unknown driver", driver: Driver("sqlite"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewProvider(tt.driver, tt.opts...)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, provider)
		})
	}
}
