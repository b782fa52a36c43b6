// Package fanout runs one independent, time-bounded call per key and joins the results.
package fanout

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one keyed call. Err is context.DeadlineExceeded when the
// call did not finish inside its timeout.
type Result[T any] struct {
	Key   string
	Value T
	Err   error
}

// Each calls fn once per key concurrently. Every call gets its own timeout, and the
// join never waits longer than that timeout for a call that ignores its context.
// Results come back in key order, so callers see a deterministic sequence.
func Each[T any](ctx context.Context, keys []string, timeout time.Duration, fn func(ctx context.Context, key string) (T, error)) []Result[T] {
	results := make([]Result[T], len(keys))

	var g errgroup.Group
	for i, key := range keys {
		results[i].Key = key
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			type outcome struct {
				v   T
				err error
			}
			done := make(chan outcome, 1)
			go func() {
				v, err := fn(callCtx, key)
				done <- outcome{v, err}
			}()

			select {
			case o := <-done:
				results[i].Value, results[i].Err = o.v, o.err
			case <-callCtx.Done():
				results[i].Err = callCtx.Err()
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}
