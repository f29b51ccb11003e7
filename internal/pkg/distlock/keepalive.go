package distlock

import (
	"context"
	"errors"
	"time"

	"github.com/ignite/propensity-engine/internal/pkg/logger"
)

// Lease is a DistLock that expires unless its holder extends it.
type Lease interface {
	DistLock
	TTL() time.Duration
	Extend(ctx context.Context, ttl time.Duration) error
}

// KeepAlive extends l every third of its TTL until the returned stop func is
// called. If the lease turns out to be held by someone else, lost is called
// once and renewal stops. Locks that do not expire get a no-op stop func.
func KeepAlive(ctx context.Context, l DistLock, lost func(error)) (stop func()) {
	lease, ok := l.(Lease)
	if !ok || lease.TTL() <= 0 {
		return func() {}
	}
	interval := lease.TTL() / 3
	if interval <= 0 {
		interval = lease.TTL()
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				err := lease.Extend(ctx, lease.TTL())
				switch {
				case err == nil:
				case errors.Is(err, ErrNotHeld):
					lost(err)
					return
				case ctx.Err() == nil:
					// transient; the next tick retries while the lease is still live
					logger.Warn("lock extend failed", "error", err)
				}
			}
		}
	}()
	return func() {
		cancel()
		<-done
	}
}
