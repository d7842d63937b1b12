package lock

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

// RedisLocker implements Locker on top of redsync. Each acquisition is a
// single attempt (tries=1); retrying is the caller's responsibility, which
// keeps the retry policy in one place.
type RedisLocker struct {
	redsync *redsync.Redsync
	expiry  time.Duration
	logger  *slog.Logger
}

// NewRedisLocker builds a locker backed by the given Redis client. Expiry
// bounds how long a crashed holder can keep a lock before it self-releases.
func NewRedisLocker(client redis.UniversalClient, expiry time.Duration, logger *slog.Logger) *RedisLocker {
	return &RedisLocker{
		redsync: redsync.New(goredis.NewPool(client)),
		expiry:  expiry,
		logger:  logger,
	}
}

func (l *RedisLocker) TryAcquire(ctx context.Context, name string) (Handle, bool, error) {
	mutex := l.redsync.NewMutex(
		name,
		redsync.WithExpiry(l.expiry),
		redsync.WithTries(1),
	)

	if err := mutex.LockContext(ctx); err != nil {
		if isContention(err) {
			l.logger.Debug("lock already held", "lock_name", name)
			return nil, false, nil
		}

		l.logger.Error("lock acquisition failed", "lock_name", name, "error", err)

		return nil, false, err
	}

	return &redisHandle{mutex: mutex, name: name, logger: l.logger}, true, nil
}

// isContention distinguishes "someone else holds the lock" from real
// failures. redsync reports contention either as ErrFailed or as a taken
// error depending on the code path.
func isContention(err error) bool {
	var taken *redsync.ErrTaken
	if errors.As(err, &taken) {
		return true
	}

	return errors.Is(err, redsync.ErrFailed) ||
		strings.Contains(err.Error(), "lock already taken")
}

type redisHandle struct {
	mutex  *redsync.Mutex
	name   string
	logger *slog.Logger
	once   sync.Once
}

func (h *redisHandle) Release(ctx context.Context) {
	h.once.Do(func() {
		if ok, err := h.mutex.UnlockContext(ctx); !ok || err != nil {
			h.logger.Error("failed to release lock", "lock_name", h.name, "unlock_ok", ok, "error", err)
		}
	})
}
