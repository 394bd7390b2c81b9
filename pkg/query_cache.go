// Package pkg provides reusable building blocks for triage, such as the server query cache.
package pkg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// Key identifies a cached server resource, e.g. "mutants/5" or "mutants/detail/7".
type Key string

// NewKey joins segments into a Key.
func NewKey(segments ...any) Key {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		parts = append(parts, fmt.Sprint(s))
	}

	return Key(strings.Join(parts, "/"))
}

// HasPrefix reports whether k equals prefix or lies below it.
func (k Key) HasPrefix(prefix Key) bool {
	return k == prefix || strings.HasPrefix(string(k), string(prefix)+"/")
}

// Snapshot is a point-in-time view of one cache entry.
type Snapshot struct {
	Value     any
	Found     bool
	UpdatedAt time.Time
	Stale     bool
	Fetching  bool
	Err       error
}

// CacheOptions configures a QueryCache.
type CacheOptions struct {
	// StaleTime is how long a fetched value is served without refetching.
	// Default: 5 minutes
	StaleTime time.Duration

	// Retry is the number of extra attempts after a failed read.
	// Default: 1
	Retry int

	// RetryDelay is the pause between attempts.
	// Default: 1 second
	RetryDelay time.Duration

	// RetryIf decides which failures are retried.
	// Default: errors that report Temporary() == true
	RetryIf func(error) bool
}

// DefaultCacheOptions returns the defaults used by NewQueryCache.
func DefaultCacheOptions() CacheOptions {
	return CacheOptions{
		StaleTime:  5 * time.Minute,
		Retry:      1,
		RetryDelay: time.Second,
		RetryIf:    isTemporary,
	}
}

// CacheOption is a functional option for configuring QueryCache.
type CacheOption func(*CacheOptions)

// WithStaleTime sets how long fetched values stay fresh.
func WithStaleTime(d time.Duration) CacheOption {
	return func(o *CacheOptions) {
		if d >= 0 {
			o.StaleTime = d
		}
	}
}

// WithRetry sets the number of extra attempts for failed reads.
func WithRetry(n int) CacheOption {
	return func(o *CacheOptions) {
		if n >= 0 {
			o.Retry = n
		}
	}
}

// WithRetryDelay sets the pause between attempts.
func WithRetryDelay(d time.Duration) CacheOption {
	return func(o *CacheOptions) {
		if d >= 0 {
			o.RetryDelay = d
		}
	}
}

// WithRetryIf sets the predicate deciding which failures are retried.
func WithRetryIf(fn func(error) bool) CacheOption {
	return func(o *CacheOptions) {
		if fn != nil {
			o.RetryIf = fn
		}
	}
}

func isTemporary(err error) bool {
	var temporary interface{ Temporary() bool }
	if errors.As(err, &temporary) {
		return temporary.Temporary()
	}

	return false
}

type cacheEntry struct {
	value       any
	hasValue    bool
	updatedAt   time.Time
	invalidated bool
	generation  uint64
	fetching    int
	err         error
}

// QueryCache stores server reads keyed by resource, deduplicates concurrent
// fetches of the same key and tracks freshness.
//
// Safe for concurrent use.
type QueryCache struct {
	mu      sync.RWMutex
	entries map[Key]*cacheEntry
	flight  singleflight.Group
	options CacheOptions
	now     func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
}

// NewQueryCache creates an empty QueryCache.
func NewQueryCache(opts ...CacheOption) *QueryCache {
	options := DefaultCacheOptions()
	for _, opt := range opts {
		opt(&options)
	}

	return &QueryCache{
		entries: make(map[Key]*cacheEntry),
		options: options,
		now:     time.Now,
	}
}

// CacheStats reports hit and miss counters.
type CacheStats struct {
	Hits    int64
	Misses  int64
	Entries int
}

// Stats returns the current counters.
func (c *QueryCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return CacheStats{Hits: c.hits.Load(), Misses: c.misses.Load(), Entries: len(c.entries)}
}

// Lookup returns the entry for key without fetching.
func (c *QueryCache) Lookup(key Key) Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		return Snapshot{Stale: true}
	}

	return Snapshot{
		Value:     e.value,
		Found:     e.hasValue,
		UpdatedAt: e.updatedAt,
		Stale:     c.isStale(e),
		Fetching:  e.fetching > 0,
		Err:       e.err,
	}
}

func (c *QueryCache) isStale(e *cacheEntry) bool {
	return !e.hasValue || e.invalidated || c.now().Sub(e.updatedAt) >= c.options.StaleTime
}

// Fetch returns the cached value for key when it is fresh and otherwise calls fn.
// Concurrent calls for the same key share one call of fn. Failed calls are retried
// according to the cache options. The shared call is not canceled with ctx so that
// a late result still fills the cache; the caller stops waiting when ctx is done.
func Fetch[T any](ctx context.Context, c *QueryCache, key Key, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	if v, ok := c.fresh(key); ok {
		if typed, ok := v.(T); ok {
			c.hits.Add(1)
			slog.Debug("cache hit", "key", key)

			return typed, nil
		}
	}

	c.misses.Add(1)
	slog.Debug("cache miss", "key", key)

	shared := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(string(key), func() (any, error) {
		generation := c.beginFetch(key)
		v, err := retry(shared, c.options, fn)
		c.finishFetch(key, generation, v, err)

		return v, err
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}

		typed, _ := res.Val.(T)

		return typed, nil
	}
}

func retry[T any](ctx context.Context, options CacheOptions, fn func(context.Context) (T, error)) (T, error) {
	var (
		v   T
		err error
	)

	for attempt := 0; attempt <= options.Retry; attempt++ {
		v, err = fn(ctx)
		if err == nil {
			return v, nil
		}

		if attempt == options.Retry || !options.RetryIf(err) {
			break
		}

		slog.Debug("retrying fetch", "attempt", attempt+1, "error", err)

		select {
		case <-ctx.Done():
			return v, ctx.Err()
		case <-time.After(options.RetryDelay):
		}
	}

	return v, err
}

func (c *QueryCache) fresh(key Key) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || c.isStale(e) {
		return nil, false
	}

	return e.value, true
}

func (c *QueryCache) entry(key Key) *cacheEntry {
	e, ok := c.entries[key]
	if !ok {
		e = &cacheEntry{}
		c.entries[key] = e
	}

	return e
}

func (c *QueryCache) beginFetch(key Key) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entry(key)
	e.fetching++

	return e.generation
}

func (c *QueryCache) finishFetch(key Key, generation uint64, v any, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entry(key)
	if e.fetching > 0 {
		e.fetching--
	}

	if err != nil {
		e.err = err
		return
	}

	if e.generation != generation {
		// Superseded while in flight. Keep a newer write; otherwise keep the
		// value for display but leave it stale.
		if e.hasValue && !e.invalidated {
			slog.Debug("dropping superseded fetch", "key", key)
			return
		}

		e.value = v
		e.hasValue = true
		e.updatedAt = c.now()
		e.invalidated = true
		e.err = nil

		return
	}

	e.value = v
	e.hasValue = true
	e.updatedAt = c.now()
	e.invalidated = false
	e.err = nil
}

// Invalidate marks the given keys stale. Cached values are kept for display.
// A fetch already in flight is detached, so the next read calls the server again.
func (c *QueryCache) Invalidate(keys ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		c.flight.Forget(string(key))

		if e, ok := c.entries[key]; ok {
			e.invalidated = true
			e.generation++
			slog.Debug("cache invalidated", "key", key)
		}
	}
}

// InvalidatePrefix marks every key at or below prefix stale.
func (c *QueryCache) InvalidatePrefix(prefix Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, e := range c.entries {
		if key.HasPrefix(prefix) {
			c.flight.Forget(string(key))
			e.invalidated = true
			e.generation++
		}
	}

	slog.Debug("cache invalidated", "prefix", prefix)
}

// SetData stores v as the fresh value of key, superseding any previous value
// and any fetch still in flight.
func (c *QueryCache) SetData(key Key, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.flight.Forget(string(key))

	e := c.entry(key)
	e.value = v
	e.hasValue = true
	e.updatedAt = c.now()
	e.invalidated = false
	e.generation++
	e.err = nil
}

// Update replaces the cached value of key with fn applied to it. Freshness is unchanged.
// It reports whether a value was present.
func (c *QueryCache) Update(key Key, fn func(any) any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || !e.hasValue {
		return false
	}

	e.value = fn(e.value)

	return true
}

// UpdateData is the typed form of Update. Values of another type are left alone.
func UpdateData[T any](c *QueryCache, key Key, fn func(T) T) bool {
	updated := false

	c.Update(key, func(v any) any {
		typed, ok := v.(T)
		if !ok {
			return v
		}

		updated = true

		return fn(typed)
	})

	return updated
}

// Peek returns the cached value of key regardless of freshness.
func Peek[T any](c *QueryCache, key Key) (T, bool) {
	snap := c.Lookup(key)

	typed, ok := snap.Value.(T)
	if !snap.Found || !ok {
		var zero T
		return zero, false
	}

	return typed, true
}

// Clear drops every entry.
func (c *QueryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[Key]*cacheEntry)
}
