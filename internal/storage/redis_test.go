package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *RedisStore {
	t.Helper()
	addr := os.Getenv("TALLY_TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	s, err := NewRedisStore(RedisConfig{
		Addr:        addr,
		KeyPrefix:   "tally:test:" + time.Now().Format("150405.000000") + ":",
		DialTimeout: 2 * time.Second,
	})
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRedisStore(t *testing.T) {
	s := setupTestRedis(t)
	runStoreTests(t, s)
}

func TestRedisStore_PrefixIsolation(t *testing.T) {
	s := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "users", []byte(`{}`)))
	raw, err := s.client.Do(ctx, s.client.B().Get().Key(s.prefix+"users").Build()).ToString()
	require.NoError(t, err)
	assert.Equal(t, `{}`, raw)
	require.NoError(t, s.Remove(ctx, "users"))
}
