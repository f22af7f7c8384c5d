package cachemanager

import (
	"context"
	"time"
)

// ReadThroughCache serves values from a CacheManager and loads misses with fn.
// Errors from fn are never cached.
type ReadThroughCache[K comparable, V any, I any] struct {
	cache           CacheManager[K, V]
	fn              func(ctx context.Context, input I) (V, error)
	shouldSkipCache bool
	sliding         bool
}

func NewReadThroughCache[K comparable, V any, I any](
	cache CacheManager[K, V],
	fn func(ctx context.Context, input I) (V, error),
	shouldSkipCache bool,
) *ReadThroughCache[K, V, I] {
	return &ReadThroughCache[K, V, I]{
		cache:           cache,
		fn:              fn,
		shouldSkipCache: shouldSkipCache,
	}
}

// WithSlidingExpiration makes every hit extend the entry's TTL, so entries
// expire only after going unused for ttl.
func (r *ReadThroughCache[K, V, I]) WithSlidingExpiration() *ReadThroughCache[K, V, I] {
	r.sliding = true
	return r
}

// Get returns the cached value for key or loads it from input.
func (r *ReadThroughCache[K, V, I]) Get(ctx context.Context, key K, input I, ttl time.Duration) (V, error) {
	value, _, err := r.Lookup(ctx, key, input, ttl)
	return value, err
}

// Lookup is Get that also reports whether the value came from the cache.
func (r *ReadThroughCache[K, V, I]) Lookup(ctx context.Context, key K, input I, ttl time.Duration) (V, bool, error) {
	if r.shouldSkipCache {
		value, err := r.fn(ctx, input)
		return value, false, err
	}

	if value, ok := r.cached(ctx, key, ttl); ok {
		return value, true, nil
	}

	value, err := r.fn(ctx, input)
	if err != nil {
		return value, false, err
	}

	r.cache.Set(ctx, key, value, ttl)

	return value, false, nil
}

func (r *ReadThroughCache[K, V, I]) cached(ctx context.Context, key K, ttl time.Duration) (V, bool) {
	if r.sliding {
		return r.cache.GetWithRefresh(ctx, key, ttl)
	}
	return r.cache.Get(ctx, key)
}

// Invalidate drops every cached value.
func (r *ReadThroughCache[K, V, I]) Invalidate(ctx context.Context) error {
	if r.shouldSkipCache {
		return nil
	}
	return r.cache.Flush(ctx)
}
