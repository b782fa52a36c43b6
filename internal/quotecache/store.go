// Package quotecache is the short-lived, shared store of current venue quotes.
//
// Every Store is fail-open: when the backend is unreachable, reads report "absent"
// and writes are no-ops. Callers treat absence as a normal outcome.
package quotecache

import (
	"context"
	"time"
)

// Store is the key-value capability the quote cache is built on.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Del(ctx context.Context, keys ...string)
	// InvalidatePattern deletes every key matching a glob pattern and returns how many went.
	InvalidatePattern(ctx context.Context, pattern string) int
	// Incr increments a counter, setting ttl when the counter is created.
	Incr(ctx context.Context, key string, ttl time.Duration) int64
	Ping(ctx context.Context) error
	Close() error
}
