// Package distlock provides single-holder locks keyed by name, backed by
// Redis, PostgreSQL advisory locks or process memory.
package distlock

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotHeld is returned when releasing a lock this instance does not hold.
var ErrNotHeld = errors.New("lock not held")

// DistLock is the interface for distributed locking.
// A DistLock instance represents one attempt to hold one key and must not be
// shared across goroutines; create a new instance per holder.
type DistLock interface {
	// Acquire tries to acquire the lock without blocking. Returns true if successful.
	Acquire(ctx context.Context) (bool, error)
	// Release releases the lock if we still own it.
	Release(ctx context.Context) error
}

// Provider hands out lock instances for named keys.
type Provider interface {
	Lock(key string) DistLock
	Backend() string
}

// NewProvider picks the best available backend.
// Redis is preferred for cross-host locking, then PostgreSQL advisory locks,
// then an in-process lock table for single-instance deployments.
func NewProvider(redisClient *redis.Client, db *sql.DB, ttl time.Duration) Provider {
	switch {
	case redisClient != nil:
		return &RedisProvider{client: redisClient, ttl: ttl}
	case db != nil:
		return &PGProvider{db: db}
	default:
		return NewLocalProvider()
	}
}

// RedisProvider creates RedisLock instances sharing one client.
type RedisProvider struct {
	client *redis.Client
	ttl    time.Duration
}

func (p *RedisProvider) Lock(key string) DistLock { return NewRedisLock(p.client, key, p.ttl) }
func (p *RedisProvider) Backend() string          { return "redis" }

// =============================================================================
// PostgreSQL Advisory Lock
// =============================================================================
// pg_try_advisory_lock is session scoped, so the lock pins one pooled
// connection from Acquire until Release. The lock is released by the server
// if that connection drops.

// PGProvider creates PGAdvisoryLock instances over a shared pool.
type PGProvider struct {
	db *sql.DB
}

func (p *PGProvider) Lock(key string) DistLock { return NewPGAdvisoryLock(p.db, key) }
func (p *PGProvider) Backend() string          { return "postgres" }

// PGAdvisoryLock implements DistLock using PostgreSQL advisory locks.
type PGAdvisoryLock struct {
	db     *sql.DB
	lockID int64
	conn   *sql.Conn
}

// NewPGAdvisoryLock creates a PG advisory lock with a deterministic lock ID
// derived from the given key string.
func NewPGAdvisoryLock(db *sql.DB, key string) *PGAdvisoryLock {
	return &PGAdvisoryLock{
		db:     db,
		lockID: advisoryID(key),
	}
}

func advisoryID(key string) int64 {
	h := fnv.New64a()
	h.Write([]byte(key))
	return int64(h.Sum64())
}

// Acquire tries to acquire the advisory lock on a dedicated connection.
func (l *PGAdvisoryLock) Acquire(ctx context.Context) (bool, error) {
	if l.conn != nil {
		return false, fmt.Errorf("advisory lock %d: already acquired by this instance", l.lockID)
	}
	conn, err := l.db.Conn(ctx)
	if err != nil {
		return false, fmt.Errorf("advisory lock %d: get conn: %w", l.lockID, err)
	}

	var acquired bool
	if err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", l.lockID).Scan(&acquired); err != nil {
		conn.Close()
		return false, fmt.Errorf("advisory lock %d: %w", l.lockID, err)
	}
	if !acquired {
		conn.Close()
		return false, nil
	}
	l.conn = conn
	return true, nil
}

// Release unlocks on the same connection that acquired the lock and returns
// it to the pool.
func (l *PGAdvisoryLock) Release(ctx context.Context) error {
	if l.conn == nil {
		return ErrNotHeld
	}
	conn := l.conn
	l.conn = nil
	defer conn.Close()
	if _, err := conn.ExecContext(ctx, "SELECT pg_advisory_unlock($1)", l.lockID); err != nil {
		return fmt.Errorf("advisory unlock %d: %w", l.lockID, err)
	}
	return nil
}

// =============================================================================
// In-process lock table
// =============================================================================

// LocalProvider holds locks in process memory. Only correct when a single
// instance serves a given key.
type LocalProvider struct {
	mu   sync.Mutex
	held map[string]*localLock
}

// NewLocalProvider creates an empty in-process lock table.
func NewLocalProvider() *LocalProvider {
	return &LocalProvider{held: make(map[string]*localLock)}
}

func (p *LocalProvider) Lock(key string) DistLock { return &localLock{table: p, key: key} }
func (p *LocalProvider) Backend() string          { return "local" }

type localLock struct {
	table *LocalProvider
	key   string
}

func (l *localLock) Acquire(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	l.table.mu.Lock()
	defer l.table.mu.Unlock()
	if _, busy := l.table.held[l.key]; busy {
		return false, nil
	}
	l.table.held[l.key] = l
	return true, nil
}

func (l *localLock) Release(ctx context.Context) error {
	l.table.mu.Lock()
	defer l.table.mu.Unlock()
	if l.table.held[l.key] != l {
		return ErrNotHeld
	}
	delete(l.table.held, l.key)
	return nil
}
