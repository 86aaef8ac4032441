// Package cache provides the short-lived client-side memo caches used for content reads
package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a fetched blog list stays fresh
const DefaultTTL = 5 * time.Minute

// Stats holds cache statistics
type Stats struct {
	Hits   int64
	Misses int64
}

// Slot is a single unkeyed cache entry with a fixed TTL.
// A value is served while now - fetchedAt < ttl; otherwise it is treated as absent.
type Slot[T any] struct {
	mu        sync.RWMutex
	value     T
	fetchedAt time.Time
	valid     bool

	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	hits   int64
	misses int64
}

// NewSlot creates an empty slot. ttl <= 0 uses DefaultTTL.
func NewSlot[T any](ttl time.Duration, now func() time.Time) *Slot[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Slot[T]{ttl: ttl, now: now}
}

// Peek returns the cached value when still fresh
func (s *Slot[T]) Peek() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.valid || s.now().Sub(s.fetchedAt) >= s.ttl {
		var zero T
		return zero, false
	}
	return s.value, true
}

// Get returns the fresh cached value or calls fetch. Concurrent misses share one fetch.
// A failed fetch leaves the slot untouched.
func (s *Slot[T]) Get(ctx context.Context, fetch func(context.Context) (T, error)) (T, error) {
	if v, ok := s.Peek(); ok {
		atomic.AddInt64(&s.hits, 1)
		return v, nil
	}
	atomic.AddInt64(&s.misses, 1)

	res, err, _ := s.group.Do("slot", func() (any, error) {
		if v, ok := s.Peek(); ok {
			return v, nil
		}
		v, err := fetch(ctx)
		if err != nil {
			return v, err
		}
		s.Set(v)
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}

// Set stores v as fetched now
func (s *Slot[T]) Set(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = v
	s.fetchedAt = s.now()
	s.valid = true
}

// Invalidate drops the cached value
func (s *Slot[T]) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	s.value = zero
	s.valid = false
}

// Stats returns hit/miss counters
func (s *Slot[T]) Stats() Stats {
	return Stats{Hits: atomic.LoadInt64(&s.hits), Misses: atomic.LoadInt64(&s.misses)}
}
