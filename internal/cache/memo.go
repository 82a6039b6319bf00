package cache

import (
	"sync"
	"time"
)

// Memo is a thread-safe map whose entries expire individually after ttl.
type Memo[K comparable, V any] struct {
	mu   sync.RWMutex
	data map[K]memoEntry[V]
	ttl  time.Duration
	now  func() time.Time
}

type memoEntry[V any] struct {
	value   V
	expires time.Time
}

// NewMemo creates an empty Memo.
func NewMemo[K comparable, V any](ttl time.Duration) *Memo[K, V] {
	return &Memo[K, V]{
		data: make(map[K]memoEntry[V]),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Get returns the value for key if it has not expired.
func (m *Memo[K, V]) Get(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.data[key]
	if !ok || !m.now().Before(e.expires) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key and restarts its ttl.
func (m *Memo[K, V]) Set(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = memoEntry[V]{value: value, expires: m.now().Add(m.ttl)}
}

// GetOrLoad returns the cached value for key, calling load on a miss. Values
// are only cached when load succeeds.
func (m *Memo[K, V]) GetOrLoad(key K, load func() (V, error)) (V, error) {
	if v, ok := m.Get(key); ok {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	m.Set(key, v)
	return v, nil
}

// Prune drops expired entries and returns how many are left.
func (m *Memo[K, V]) Prune() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, e := range m.data {
		if !now.Before(e.expires) {
			delete(m.data, k)
		}
	}
	return len(m.data)
}

// Invalidate drops every entry.
func (m *Memo[K, V]) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[K]memoEntry[V])
}

// Len returns the number of entries, expired or not.
func (m *Memo[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
