// Package cache provides the caller-side memoization for engine results.
// Projection and cycle computations are pure, so callers own the cache
// and key it by the query inputs; the engine itself never caches.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Memo is an LRU cache with per-entry TTL and size-bound eviction.
type Memo[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	order   *list.List

	stopJanitor chan struct{}
	janitorOnce sync.Once
}

type entry[T any] struct {
	key       string
	value     T
	expiresAt time.Time
}

// NewMemo creates a memoization cache holding at most maxSize entries,
// each valid for ttl.
func NewMemo[T any](maxSize int, ttl time.Duration) *Memo[T] {
	return &Memo[T]{
		maxSize:     maxSize,
		ttl:         ttl,
		items:       make(map[string]*list.Element),
		order:       list.New(),
		stopJanitor: make(chan struct{}),
	}
}

// Get returns the cached value for key if present and not expired.
func (m *Memo[T]) Get(key string) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero T
	elem, ok := m.items[key]
	if !ok {
		return zero, false
	}
	e := elem.Value.(*entry[T])
	if time.Now().After(e.expiresAt) {
		m.remove(elem)
		return zero, false
	}
	m.order.MoveToFront(elem)
	return e.value, true
}

// Set stores value under key, evicting the least recently used entry
// when the cache is full.
func (m *Memo[T]) Set(key string, value T) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := &entry[T]{key: key, value: value, expiresAt: time.Now().Add(m.ttl)}
	if elem, ok := m.items[key]; ok {
		elem.Value = e
		m.order.MoveToFront(elem)
		return
	}

	m.items[key] = m.order.PushFront(e)
	if m.order.Len() > m.maxSize {
		if oldest := m.order.Back(); oldest != nil {
			m.remove(oldest)
		}
	}
}

// Invalidate drops the entry for key, if any. Called after writes that
// change what a cached computation would return.
func (m *Memo[T]) Invalidate(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if elem, ok := m.items[key]; ok {
		m.remove(elem)
	}
}

// Len returns the number of cached entries, expired ones included.
func (m *Memo[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// CleanExpired removes expired entries and reports how many were dropped.
func (m *Memo[T]) CleanExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	var stale []*list.Element
	for elem := m.order.Front(); elem != nil; elem = elem.Next() {
		if now.After(elem.Value.(*entry[T]).expiresAt) {
			stale = append(stale, elem)
		}
	}
	for _, elem := range stale {
		m.remove(elem)
	}
	return len(stale)
}

// StartJanitor launches a background loop that periodically drops
// expired entries. Safe to call once; stop it with StopJanitor.
func (m *Memo[T]) StartJanitor(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.CleanExpired()
			case <-m.stopJanitor:
				return
			}
		}
	}()
}

// StopJanitor terminates the cleanup loop.
func (m *Memo[T]) StopJanitor() {
	m.janitorOnce.Do(func() {
		close(m.stopJanitor)
	})
}

// must be called with the lock held
func (m *Memo[T]) remove(elem *list.Element) {
	e := elem.Value.(*entry[T])
	delete(m.items, e.key)
	m.order.Remove(elem)
}
