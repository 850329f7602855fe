// internal/storage/lock.go
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrLockUnavailable = errors.New("lock unavailable")

// Locker serializes work on a key across service instances. release must be
// called once the guarded work is done.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// LocalLocker serializes work on a key within one process. It is the
// default when no Redis is configured.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]*localSlot
}

type localSlot struct {
	held chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[string]*localSlot)}
}

func (l *LocalLocker) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[key]
	if !ok {
		slot = &localSlot{held: make(chan struct{}, 1)}
		l.slots[key] = slot
	}
	slot.refs++
	l.mu.Unlock()

	select {
	case slot.held <- struct{}{}:
	case <-ctx.Done():
		l.unref(key, slot)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-slot.held
			l.unref(key, slot)
		})
	}, nil
}

func (l *LocalLocker) unref(key string, slot *localSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, key)
	}
}

// pending is the number of keys with a holder or waiter.
func (l *LocalLocker) pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}

// Deletes the key only while it still holds our token.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

// RedisLocker takes a SETNX lock with a TTL so a crashed holder cannot block forever.
type RedisLocker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
}

type RedisLockerOption func(*RedisLocker)

// WithLockWait bounds how long Acquire polls a held lock.
func WithLockWait(wait, retry time.Duration) RedisLockerOption {
	return func(l *RedisLocker) {
		l.wait = wait
		l.retry = retry
	}
}

func NewRedisLocker(client *redis.Client, prefix string, ttl time.Duration, opts ...RedisLockerOption) *RedisLocker {
	l := &RedisLocker{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		wait:   2 * time.Second,
		retry:  50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	fullKey := l.prefix + key
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, fullKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", fullKey, err)
		}
		if ok {
			return func() {
				// The caller's context may already be done; release on a fresh one.
				releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				_ = l.client.Eval(releaseCtx, releaseScript, []string{fullKey}, token).Err()
			}, nil
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrLockUnavailable, fullKey)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}
}
