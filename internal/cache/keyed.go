package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type keyedEntry[T any] struct {
	value     T
	fetchedAt time.Time
}

// Keyed is a TTL memo keyed by string, used for per-slug content reads
type Keyed[T any] struct {
	mu      sync.RWMutex
	entries map[string]*keyedEntry[T]
	ttl     time.Duration
	now     func() time.Time
	group   singleflight.Group
}

// NewKeyed creates an empty keyed cache. ttl <= 0 uses DefaultTTL.
func NewKeyed[T any](ttl time.Duration, now func() time.Time) *Keyed[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Keyed[T]{
		entries: make(map[string]*keyedEntry[T]),
		ttl:     ttl,
		now:     now,
	}
}

// Peek returns the fresh value for key
func (k *Keyed[T]) Peek(key string) (T, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	e, ok := k.entries[key]
	if !ok || k.now().Sub(e.fetchedAt) >= k.ttl {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Get returns the fresh value for key or fetches it
func (k *Keyed[T]) Get(ctx context.Context, key string, fetch func(context.Context) (T, error)) (T, error) {
	if v, ok := k.Peek(key); ok {
		return v, nil
	}

	res, err, _ := k.group.Do(key, func() (any, error) {
		v, err := fetch(ctx)
		if err != nil {
			return v, err
		}
		k.mu.Lock()
		k.entries[key] = &keyedEntry[T]{value: v, fetchedAt: k.now()}
		k.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}

// Prune removes expired entries
func (k *Keyed[T]) Prune() {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	for key, e := range k.entries {
		if now.Sub(e.fetchedAt) >= k.ttl {
			delete(k.entries, key)
		}
	}
}

// Len returns the number of stored entries, expired ones included
func (k *Keyed[T]) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.entries)
}

// Clear drops every entry
func (k *Keyed[T]) Clear() {
	k.mu.Lock()
	defer k.mu.Unlock()
	clear(k.entries)
}
