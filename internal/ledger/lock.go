package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 25 * time.Millisecond

// withLock runs fn while holding the data directory lock. Each call opens
// its own lock handle so concurrent operations in one process contend
// exactly like separate processes do.
func (s *Store) withLock(ctx context.Context, exclusive bool, fn func() error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	lock := flock.New(s.lockPath)
	var (
		ok  bool
		err error
	)
	if exclusive {
		ok, err = lock.TryLockContext(lockCtx, lockRetryDelay)
	} else {
		ok, err = lock.TryRLockContext(lockCtx, lockRetryDelay)
	}
	if err != nil || !ok {
		if err == nil {
			err = lockCtx.Err()
		}
		return fmt.Errorf("%w: %s: %v", ErrLocked, s.lockPath, err)
	}
	defer func() {
		_ = lock.Unlock()
	}()
	return fn()
}
