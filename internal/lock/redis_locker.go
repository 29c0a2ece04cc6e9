package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrLockTimeout is returned when a Redis lock could not be acquired in time
var ErrLockTimeout = errors.New("lock wait timed out")

// releaseScript deletes the key only if it still holds our token, so an
// expired lock taken over by another replica is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// extendScript renews the lease only while the key still holds our token
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// RedisLocker serialises callers per key across replicas with SET NX PX.
// The lease is renewed every TTL/3 while held.
type RedisLocker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
	log    zerolog.Logger
}

// RedisLockerConfig configures a RedisLocker
type RedisLockerConfig struct {
	Prefix string          // key prefix, default "placevisit:lock:"
	TTL    time.Duration   // lock lease, default 30s
	Wait   time.Duration   // maximum wait, default 10s
	Retry  time.Duration   // poll interval, default 25ms
	Logger *zerolog.Logger // default: global logger with component=lock
}

// NewRedisLocker creates a Redis-backed per-key lock
func NewRedisLocker(client *redis.Client, cfg RedisLockerConfig) *RedisLocker {
	if cfg.Prefix == "" {
		cfg.Prefix = "placevisit:lock:"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	if cfg.Wait <= 0 {
		cfg.Wait = 10 * time.Second
	}
	if cfg.Retry <= 0 {
		cfg.Retry = 25 * time.Millisecond
	}
	logger := log.Logger.With().Str("component", "lock").Logger()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	return &RedisLocker{client: client, prefix: cfg.Prefix, ttl: cfg.TTL, wait: cfg.Wait, retry: cfg.Retry, log: logger}
}

// Lock polls until the key is acquired, ctx is done or the wait elapses
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := l.prefix + key
	token := uuid.NewString()
	deadline := time.NewTimer(l.wait)
	defer deadline.Stop()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", redisKey, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, redisKey)
		case <-time.After(l.retry):
		}
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go l.keepAlive(redisKey, token, stop, done)

	return func() {
		close(stop)
		<-done

		// Release even if the caller's context is already cancelled.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		released, err := releaseScript.Run(releaseCtx, l.client, []string{redisKey}, token).Int()
		switch {
		case err != nil:
			l.log.Warn().Err(err).Str("key", redisKey).Msg("failed to release redis lock")
		case released == 0:
			l.log.Warn().Str("key", redisKey).Dur("ttl", l.ttl).Msg("redis lock lease expired before release")
		}
	}, nil
}

// keepAlive extends the lease until stop is closed or the lease is lost
func (l *RedisLocker) keepAlive(redisKey, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(l.ttl / 3)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		ctx, cancel := context.WithTimeout(context.Background(), l.ttl/3)
		extended, err := extendScript.Run(ctx, l.client, []string{redisKey}, token, l.ttl.Milliseconds()).Int()
		cancel()
		if err != nil {
			l.log.Warn().Err(err).Str("key", redisKey).Msg("failed to extend redis lock")
			continue
		}
		if extended == 0 {
			l.log.Warn().Str("key", redisKey).Msg("redis lock lease lost while held")
			return
		}
	}
}
