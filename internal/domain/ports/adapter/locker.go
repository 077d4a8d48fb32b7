package adapter

import (
	"context"
	"time"
)

// Locker is a best-effort distributed mutex. The withdrawal service holds a
// per-user lock across its balance-check-and-insert sequence so concurrent
// requests from the same user are serialized before they even reach the
// database transaction.
type Locker interface {
	// TryLock acquires key for ttl and returns an unlock token, or
	// domain.ErrLockUnavailable after bounded retries.
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)

	// Unlock releases key only if token still owns it.
	Unlock(ctx context.Context, key, token string) error
}
