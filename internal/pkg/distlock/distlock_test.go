package distlock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisLock_SingleHolder(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)

	first := NewRedisLock(client, "campaign-run:c1", time.Minute)
	second := NewRedisLock(client, "campaign-run:c1", time.Minute)

	ok, err := first.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists("lock:campaign-run:c1"))

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, second.Release(ctx), ErrNotHeld)
	require.NoError(t, first.Release(ctx))
	assert.False(t, mr.Exists("lock:campaign-run:c1"))

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLock_ExpiresAndExtends(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)

	l := NewRedisLock(client, "k", 10*time.Second)
	ok, err := l.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, l.Extend(ctx, time.Minute))
	assert.Equal(t, time.Minute, mr.TTL(l.Key()))

	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, l.Extend(ctx, time.Minute), ErrNotHeld)
	assert.ErrorIs(t, l.Release(ctx), ErrNotHeld)
}

func TestKeepAlive_RenewsLease(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)

	l := NewRedisLock(client, "campaign-run:c1", 300*time.Millisecond)
	ok, err := l.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	stop := KeepAlive(ctx, l, func(err error) { t.Errorf("lease lost: %v", err) })
	defer stop()

	// 1s of lease time passes in total, far beyond the 300ms TTL
	for i := 0; i < 5; i++ {
		time.Sleep(150 * time.Millisecond)
		mr.FastForward(200 * time.Millisecond)
		require.True(t, mr.Exists(l.Key()), "lease expired after %d steps", i+1)
	}

	stop()
	require.NoError(t, l.Release(ctx))
}

func TestKeepAlive_ReportsLostLease(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)

	l := NewRedisLock(client, "campaign-run:c1", 150*time.Millisecond)
	ok, err := l.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	mr.Set(l.Key(), "someone-else")

	lost := make(chan error, 1)
	stop := KeepAlive(ctx, l, func(err error) { lost <- err })
	defer stop()

	select {
	case err := <-lost:
		assert.ErrorIs(t, err, ErrNotHeld)
	case <-time.After(2 * time.Second):
		t.Fatal("lost lease was not reported")
	}
	v, _ := mr.Get(l.Key())
	assert.Equal(t, "someone-else", v)
}

func TestKeepAlive_NonExpiringLockIsNoop(t *testing.T) {
	l := NewLocalProvider().Lock("k")
	stop := KeepAlive(context.Background(), l, func(error) { t.Error("unexpected loss") })
	stop()
}

func TestRedisLock_BackendDown(t *testing.T) {
	mr, client := newRedis(t)
	mr.Close()
	_, err := NewRedisLock(client, "k", time.Second).Acquire(context.Background())
	assert.Error(t, err)
}

func TestPGAdvisoryLock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	l := NewPGAdvisoryLock(db, "campaign-run:c1")
	mock.ExpectQuery(`SELECT pg_try_advisory_lock\(\$1\)`).
		WithArgs(l.lockID).
		WillReturnRows(sqlmock.NewRows([]string{"pg_try_advisory_lock"}).AddRow(true))
	mock.ExpectExec(`SELECT pg_advisory_unlock\(\$1\)`).
		WithArgs(l.lockID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := l.Acquire(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, l.Release(context.Background()))
	assert.ErrorIs(t, l.Release(context.Background()), ErrNotHeld)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGAdvisoryLock_Busy(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	l := NewPGAdvisoryLock(db, "campaign-run:c1")
	mock.ExpectQuery(`SELECT pg_try_advisory_lock`).
		WillReturnRows(sqlmock.NewRows([]string{"pg_try_advisory_lock"}).AddRow(false))

	ok, err := l.Acquire(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, l.Release(context.Background()), ErrNotHeld)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdvisoryIDDeterministic(t *testing.T) {
	assert.Equal(t, advisoryID("campaign-run:a"), advisoryID("campaign-run:a"))
	assert.NotEqual(t, advisoryID("campaign-run:a"), advisoryID("campaign-run:b"))
}

func TestLocalProvider_OneWinner(t *testing.T) {
	p := NewLocalProvider()
	ctx := context.Background()

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := p.Lock("campaign-run:c1").Acquire(ctx)
			assert.NoError(t, err)
			if ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins)

	other := p.Lock("campaign-run:c2")
	ok, _ := other.Acquire(ctx)
	assert.True(t, ok, "distinct keys do not contend")
	require.NoError(t, other.Release(ctx))
	assert.ErrorIs(t, other.Release(ctx), ErrNotHeld)
}

func TestNewProviderSelection(t *testing.T) {
	_, client := newRedis(t)
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, "redis", NewProvider(client, db, time.Minute).Backend())
	assert.Equal(t, "postgres", NewProvider(nil, db, time.Minute).Backend())
	assert.Equal(t, "local", NewProvider(nil, nil, time.Minute).Backend())
}
