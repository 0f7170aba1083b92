package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/lodgeworks/booking-saga/internal/pkg/errs"
)

// unlockScript deletes the lock key only if it still holds this owner's
// token, so a lease that outlived its caller can't be released by someone
// else's later acquisition of the same key.
const unlockScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

// RedisLock collapses contention on a (room, first_date) key before the
// guarded decrement runs. It is not required for correctness — the
// guarded decrement is — only for throughput under contention.
type RedisLock struct {
	client *redis.Client
	wait   time.Duration
	lease  time.Duration
}

func NewRedisLock(client *redis.Client, wait, lease time.Duration) *RedisLock {
	return &RedisLock{client: client, wait: wait, lease: lease}
}

// Handle represents a held lock; Release must be called with the same
// handle that Acquire returned.
type Handle struct {
	key   string
	token string
}

// Acquire retries SET NX PX until it succeeds or the wait budget is spent.
func (l *RedisLock) Acquire(ctx context.Context, key string) (*Handle, error) {
	token := uuid.New().String()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.lease).Result()
		if err != nil {
			return nil, errs.Wrap(err, "distributed lock acquire failed")
		}
		if ok {
			return &Handle{key: key, token: token}, nil
		}
		if time.Now().After(deadline) {
			return nil, errs.ErrLockNotAcquired
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func (l *RedisLock) Release(ctx context.Context, h *Handle) error {
	if h == nil {
		return nil
	}
	return l.client.Eval(ctx, unlockScript, []string{h.key}, h.token).Err()
}

// Adapter type-erases Handle to `any` so RedisLock satisfies interfaces
// (like inventoryservice.Locker) that can't import this package's concrete
// Handle type without a cycle.
type Adapter struct {
	lock *RedisLock
}

func NewAdapter(l *RedisLock) *Adapter {
	return &Adapter{lock: l}
}

func (a *Adapter) Acquire(ctx context.Context, key string) (any, error) {
	return a.lock.Acquire(ctx, key)
}

func (a *Adapter) Release(ctx context.Context, h any) error {
	handle, _ := h.(*Handle)
	return a.lock.Release(ctx, handle)
}
