// Package lock grants mutually-exclusive, try-once ownership over a named
// resource. One name exists per account, so every caller that touches the
// same account contends for the same lock.
package lock

import (
	"context"
	"strconv"
)

const accountLockPrefix = "account_lock_"

// Handle represents an acquired lock. Release is idempotent and never fails
// from the caller's perspective; by the time a lock is released the guarded
// mutation has already committed or aborted, so release failures are only
// logged by the implementation.
type Handle interface {
	Release(ctx context.Context)
}

// Locker attempts a single, non-blocking acquisition of a named lock.
// The second return value reports whether the lock was acquired; false with a
// nil error means another holder owns it. A non-nil error is an
// infrastructure failure, not contention.
type Locker interface {
	TryAcquire(ctx context.Context, name string) (Handle, bool, error)
}

// AccountLockName derives the lock name for an account number. The mapping is
// deterministic so that two callers referencing the same account always
// contend for the same name.
func AccountLockName(accountNumber int64) string {
	return accountLockPrefix + strconv.FormatInt(accountNumber, 10)
}
