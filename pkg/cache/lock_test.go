package cache

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gocomet/carpool/pkg/logger"
)

// redisForTest connects to REDIS_TEST_ADDR or skips
func redisForTest(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisLocker_Exclusive(t *testing.T) {
	client := redisForTest(t)
	l := NewRedisLocker(client, LockConfig{Prefix: "test:" + uuid.NewString() + ":", TTL: 5 * time.Second}, nil)

	var inside, overlaps int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), "ride:1")
			if !assert.NoError(t, err) {
				return
			}
			if atomic.AddInt32(&inside, 1) > 1 {
				atomic.AddInt32(&overlaps, 1)
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()

	assert.Zero(t, overlaps)
}

func TestRedisLocker_TryLockHeld(t *testing.T) {
	client := redisForTest(t)
	l := NewRedisLocker(client, LockConfig{Prefix: "test:" + uuid.NewString() + ":"}, nil)

	unlock, err := l.TryLock(context.Background(), "ride:2")
	require.NoError(t, err)

	_, err = l.TryLock(context.Background(), "ride:2")
	assert.ErrorIs(t, err, ErrLockHeld)

	unlock()
	unlock2, err := l.TryLock(context.Background(), "ride:2")
	require.NoError(t, err)
	unlock2()
}

func TestNewRedisLocker_Defaults(t *testing.T) {
	l := NewRedisLocker(nil, LockConfig{}, nil)

	assert.Equal(t, "lock:", l.config.Prefix)
	assert.Equal(t, 10*time.Second, l.config.TTL)
	assert.Equal(t, 10*time.Millisecond, l.config.RetryDelay)
}

// flakyReleaseClient grants every lock and fails every release script
type flakyReleaseClient struct {
	redis.Cmdable
	releaseErr error
}

func (c flakyReleaseClient) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	return redis.NewBoolResult(true, nil)
}

func (c flakyReleaseClient) EvalSha(ctx context.Context, sha1 string, keys []string, args ...interface{}) *redis.Cmd {
	return redis.NewCmdResult(nil, c.releaseErr)
}

func (c flakyReleaseClient) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	return redis.NewCmdResult(nil, c.releaseErr)
}

func TestRedisLocker_LogsFailedRelease(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	releaseErr := errors.New("connection reset by peer")
	l := NewRedisLocker(flakyReleaseClient{releaseErr: releaseErr}, LockConfig{TTL: time.Second}, &logger.Logger{Logger: zap.New(core)})

	unlock, err := l.TryLock(context.Background(), "ride:3")
	require.NoError(t, err)
	unlock()

	entries := logs.FilterMessage("Failed to release lock").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "lock:ride:3", fields["key"])
	assert.Equal(t, releaseErr.Error(), fields["error"])
}
