// Package cache provides a small string-keyed loader cache: LRU storage plus singleflight
// so that concurrent misses for one key share a single load.
package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// LoaderCache caches values produced by a load callback. Failed loads are not cached.
type LoaderCache[V any] struct {
	lru   *lru.Cache[string, V]
	group singleflight.Group
}

// LoadFunc produces the value for key on a cache miss.
type LoadFunc[V any] func(ctx context.Context, key string) (V, error)

// NewLoaderCache creates a loader cache holding at most maxEntries values.
func NewLoaderCache[V any](maxEntries int) (*LoaderCache[V], error) {
	store, err := lru.New[string, V](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}

	return &LoaderCache[V]{lru: store}, nil
}

// Get returns the value for key. The bool is false only for the caller whose load produced the
// value; cache hits and callers that joined an in-flight load report true. It is false whenever
// an error is returned.
//
// On a miss, load runs once per key no matter how many callers are waiting. The load is detached
// from the caller's cancellation, so one cancelled caller does not fail the others; each caller
// still stops waiting when its own ctx is done.
func (c *LoaderCache[V]) Get(ctx context.Context, key string, load LoadFunc[V]) (V, bool, error) {
	if v, ok := c.lru.Get(key); ok {
		return v, true, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	ran := false

	ch := c.group.DoChan(key, func() (any, error) {
		ran = true

		loaded, loadErr := load(loadCtx, key)
		if loadErr != nil {
			return nil, loadErr
		}

		c.lru.Add(key, loaded)

		return loaded, nil
	})

	var zero V

	select {
	case <-ctx.Done():
		return zero, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, false, res.Err
		}

		return res.Val.(V), !ran, nil
	}
}

// Invalidate drops the cached value for key.
func (c *LoaderCache[V]) Invalidate(key string) {
	c.lru.Remove(key)
}

// Len returns the number of cached values.
func (c *LoaderCache[V]) Len() int {
	return c.lru.Len()
}
