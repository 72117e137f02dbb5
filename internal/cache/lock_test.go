package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestLockManager_AcquireExclusive(t *testing.T) {
	_, rdb := newTestRedis(t)
	locks := NewLockManager(rdb, time.Minute)
	ctx := context.Background()

	ok, err := locks.Acquire(ctx, 1, "2025-11-15", "10:00", "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = locks.Acquire(ctx, 1, "2025-11-15", "10:00", "u2")
	require.NoError(t, err)
	assert.False(t, ok, "second owner must not steal a held lock")

	// A different slot key is an independent lock.
	ok, err = locks.Acquire(ctx, 1, "2025-11-15", "11:00", "u2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLockManager_TTLExpiry(t *testing.T) {
	mr, rdb := newTestRedis(t)
	locks := NewLockManager(rdb, 30*time.Second)
	ctx := context.Background()

	ok, err := locks.Acquire(ctx, 1, "2025-11-15", "10:00", "u1")
	require.NoError(t, err)
	require.True(t, ok)

	// Crash-holder scenario: never released, becomes acquirable after TTL.
	mr.FastForward(31 * time.Second)

	ok, err = locks.Acquire(ctx, 1, "2025-11-15", "10:00", "u2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLockManager_ReleaseIsOwnerConditional(t *testing.T) {
	mr, rdb := newTestRedis(t)
	locks := NewLockManager(rdb, time.Minute)
	ctx := context.Background()

	ok, err := locks.Acquire(ctx, 1, "2025-11-15", "10:00", "u1")
	require.NoError(t, err)
	require.True(t, ok)

	// Simulates expiry-and-reacquire: u2 now holds the lock, so u1's late
	// release must not delete it.
	mr.Set(lockKey(1, "2025-11-15", "10:00"), "u2")

	require.NoError(t, locks.Release(ctx, 1, "2025-11-15", "10:00", "u1"))
	got, err := rdb.Get(ctx, lockKey(1, "2025-11-15", "10:00")).Result()
	require.NoError(t, err)
	assert.Equal(t, "u2", got)

	require.NoError(t, locks.Release(ctx, 1, "2025-11-15", "10:00", "u2"))
	err = rdb.Get(ctx, lockKey(1, "2025-11-15", "10:00")).Err()
	assert.ErrorIs(t, err, redis.Nil)
}

func TestLockManager_ReleaseMissingLockIsNoop(t *testing.T) {
	_, rdb := newTestRedis(t)
	locks := NewLockManager(rdb, time.Minute)

	assert.NoError(t, locks.Release(context.Background(), 1, "2025-11-15", "10:00", "u1"))
}
