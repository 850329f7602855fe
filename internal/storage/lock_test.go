// internal/storage/lock_test.go
package storage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredisLocker(t *testing.T, opts ...RedisLockerOption) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisLocker(client, "lock:applicant:", 5*time.Second, opts...), mr
}

func TestRedisLocker_AcquireRelease(t *testing.T) {
	locker, mr := newMiniredisLocker(t)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "peter|lansley|2020-02-11|peter@x")
	require.NoError(t, err)
	assert.True(t, mr.Exists("lock:applicant:peter|lansley|2020-02-11|peter@x"))

	release()
	assert.False(t, mr.Exists("lock:applicant:peter|lansley|2020-02-11|peter@x"))
}

func TestRedisLocker_ContendedLockTimesOut(t *testing.T) {
	locker, _ := newMiniredisLocker(t, WithLockWait(30*time.Millisecond, 5*time.Millisecond))
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "k")
	require.NoError(t, err)
	defer release()

	_, err = locker.Acquire(ctx, "k")
	assert.ErrorIs(t, err, ErrLockUnavailable)
}

func TestRedisLocker_WaitsForRelease(t *testing.T) {
	locker, _ := newMiniredisLocker(t, WithLockWait(2*time.Second, 5*time.Millisecond))
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "k")
	require.NoError(t, err)

	go func() {
		time.Sleep(20 * time.Millisecond)
		release()
	}()

	second, err := locker.Acquire(ctx, "k")
	require.NoError(t, err)
	second()
}

func TestRedisLocker_ExpiredHolderDoesNotBlock(t *testing.T) {
	locker, mr := newMiniredisLocker(t, WithLockWait(0, time.Millisecond))
	ctx := context.Background()

	stale, err := locker.Acquire(ctx, "k")
	require.NoError(t, err)

	mr.FastForward(6 * time.Second)

	fresh, err := locker.Acquire(ctx, "k")
	require.NoError(t, err)

	// The stale holder must not delete the new holder's lock.
	stale()
	assert.True(t, mr.Exists("lock:applicant:k"))
	fresh()
	assert.False(t, mr.Exists("lock:applicant:k"))
}

func TestRedisLocker_CancelledContext(t *testing.T) {
	locker, _ := newMiniredisLocker(t, WithLockWait(time.Second, 10*time.Millisecond))

	release, err := locker.Acquire(context.Background(), "k")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = locker.Acquire(ctx, "k")
	assert.Error(t, err)
}

func TestRedisLocker_RedisError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.Regexp().ExpectSetNX("lock:applicant:k", `.+`, 5*time.Second).SetErr(errors.New("connection refused"))

	locker := NewRedisLocker(client, "lock:applicant:", 5*time.Second)
	_, err := locker.Acquire(context.Background(), "k")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrLockUnavailable)
	assert.Contains(t, err.Error(), "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocalLocker_SerializesSameKey(t *testing.T) {
	locker := NewLocalLocker()
	ctx := context.Background()

	var (
		mu      sync.Mutex
		inside  int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Acquire(ctx, "k")
			if !assert.NoError(t, err) {
				return
			}
			defer release()

			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Equal(t, 0, locker.pending())
}

func TestLocalLocker_IndependentKeys(t *testing.T) {
	locker := NewLocalLocker()
	ctx := context.Background()

	releaseA, err := locker.Acquire(ctx, "a")
	require.NoError(t, err)
	releaseB, err := locker.Acquire(ctx, "b")
	require.NoError(t, err)

	releaseA()
	releaseA()
	releaseB()
	assert.Equal(t, 0, locker.pending())
}

func TestLocalLocker_ContextCancelledWhileWaiting(t *testing.T) {
	locker := NewLocalLocker()

	release, err := locker.Acquire(context.Background(), "k")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locker.Acquire(ctx, "k")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, locker.pending())
}
