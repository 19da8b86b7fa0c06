package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Key prefixes
const (
	KeyPrefixLock       = "lock:"
	KeyPrefixOAuthState = "oauth:state:"
)

// Locker is a best-effort mutual exclusion built on a Store
type Locker struct {
	store Store
}

// NewLocker creates a locker over store
func NewLocker(store Store) *Locker {
	return &Locker{store: store}
}

// TryLock acquires name for ttl. It returns ok=false when someone else holds it.
// The returned release func is safe to call more than once.
func (l *Locker) TryLock(ctx context.Context, name string, ttl time.Duration) (release func(), ok bool, err error) {
	key := KeyPrefixLock + name
	token := uuid.NewString()

	ok, err = l.store.SetNX(ctx, key, token, ttl)
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire lock %s: %w", name, err)
	}
	if !ok {
		return nil, false, nil
	}

	released := false
	return func() {
		if released {
			return
		}
		released = true
		// release with a fresh context, the caller's may already be cancelled
		rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, _ = l.store.CompareAndDelete(rctx, key, token)
	}, true, nil
}
