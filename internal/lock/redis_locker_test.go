package lock

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
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

func TestRedisLocker_AcquireRelease(t *testing.T) {
	mr, rdb := newTestRedis(t)
	l := NewRedisLocker(rdb, RedisLockerConfig{Wait: 100 * time.Millisecond, Retry: 5 * time.Millisecond})
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("placevisit:lock:user-1"))

	_, err = l.Lock(ctx, "user-1")
	require.ErrorIs(t, err, ErrLockTimeout)

	unlock()
	assert.False(t, mr.Exists("placevisit:lock:user-1"))

	unlock2, err := l.Lock(ctx, "user-1")
	require.NoError(t, err)
	unlock2()
}

func TestRedisLocker_DoesNotReleaseForeignToken(t *testing.T) {
	mr, rdb := newTestRedis(t)
	l := NewRedisLocker(rdb, RedisLockerConfig{TTL: time.Second})
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "user-2")
	require.NoError(t, err)

	// Lease expires and another replica takes the lock.
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set("placevisit:lock:user-2", "other-replica"))

	unlock()
	got, err := mr.Get("placevisit:lock:user-2")
	require.NoError(t, err)
	assert.Equal(t, "other-replica", got)
}

func TestRedisLocker_ContextCancel(t *testing.T) {
	_, rdb := newTestRedis(t)
	l := NewRedisLocker(rdb, RedisLockerConfig{Wait: time.Minute, Retry: 5 * time.Millisecond})

	unlock, err := l.Lock(context.Background(), "user-3")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "user-3")
	require.Error(t, err)
}

func TestRedisLocker_RenewsLeaseWhileHeld(t *testing.T) {
	mr, rdb := newTestRedis(t)
	l := NewRedisLocker(rdb, RedisLockerConfig{TTL: 300 * time.Millisecond})

	unlock, err := l.Lock(context.Background(), "user-4")
	require.NoError(t, err)
	defer unlock()

	// Simulate a unit of work that has used up most of the lease.
	mr.SetTTL("placevisit:lock:user-4", 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		return mr.TTL("placevisit:lock:user-4") == 300*time.Millisecond
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRedisLocker_WarnsWhenLeaseLost(t *testing.T) {
	mr, rdb := newTestRedis(t)
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	l := NewRedisLocker(rdb, RedisLockerConfig{TTL: time.Minute, Logger: &logger})

	unlock, err := l.Lock(context.Background(), "user-5")
	require.NoError(t, err)

	mr.Del("placevisit:lock:user-5")
	unlock()

	assert.Contains(t, buf.String(), "redis lock lease expired before release")
	assert.Contains(t, buf.String(), "placevisit:lock:user-5")
}
