package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/gocomet/carpool/pkg/logger"
)

// ErrLockHeld is returned by TryLock when another holder owns the key
var ErrLockHeld = errors.New("lock is held by another process")

// releaseScript deletes the key only if it still carries our token, so an
// expired lock taken over by another process is never released by us
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// LockConfig tunes the distributed lock
type LockConfig struct {
	Prefix     string
	TTL        time.Duration
	RetryDelay time.Duration
}

// RedisLocker is a SET NX PX mutex shared by every instance pointing at the
// same Redis. A holder that dies releases its keys after TTL.
type RedisLocker struct {
	client redis.Cmdable
	config LockConfig
	logger *logger.Logger
}

// NewRedisLocker creates a distributed locker
func NewRedisLocker(client redis.Cmdable, cfg LockConfig, log *logger.Logger) *RedisLocker {
	if cfg.Prefix == "" {
		cfg.Prefix = "lock:"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Second
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 10 * time.Millisecond
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &RedisLocker{client: client, config: cfg, logger: log}
}

// Lock retries until the key is acquired or ctx is done
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	for {
		unlock, err := l.TryLock(ctx, key)
		if err == nil {
			return unlock, nil
		}
		if !errors.Is(err, ErrLockHeld) {
			return nil, err
		}

		timer := time.NewTimer(l.config.RetryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// TryLock makes one acquisition attempt
func (l *RedisLocker) TryLock(ctx context.Context, key string) (func(), error) {
	fullKey := l.config.Prefix + key
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, fullKey, token, l.config.TTL).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", fullKey, err)
	}
	if !ok {
		return nil, ErrLockHeld
	}

	return func() {
		// the caller context may already be cancelled
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{fullKey}, token).Err(); err != nil {
			// the key stays held until TTL expiry
			l.logger.Warn("Failed to release lock",
				logger.String("key", fullKey),
				logger.Duration("ttl", l.config.TTL),
				logger.Err(err),
			)
		}
	}, nil
}
