package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type item[V any] struct {
	value V
	// Zero means no expiry.
	expires time.Time
}

func (it item[V]) live(now time.Time) bool {
	return it.expires.IsZero() || now.Before(it.expires)
}

// Memory is a Cache kept in process. Expired entries are dropped when
// they are next touched; there is no background sweep, so a Memory needs
// no Close to avoid leaking goroutines.
//
// The tiered backend keeps its list of available locales here. Tests use
// it as the shared tier in place of Redis.
type Memory[V any] struct {
	mu         sync.Mutex
	items      map[string]item[V]
	defaultTTL time.Duration
	closed     bool
}

// NewMemory returns an empty in-process cache.
func NewMemory[V any](opts ...MemoryOption) *Memory[V] {
	o := defaultMemoryOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Memory[V]{
		items:      make(map[string]item[V]),
		defaultTTL: o.defaultTTL,
	}
}

func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	it, ok := m.items[key]
	if !ok || !it.live(time.Now()) {
		delete(m.items, key)
		var zero V
		return zero, ErrNotFound
	}
	return it.value, nil
}

func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	if ttl == 0 {
		ttl = m.defaultTTL
	}
	it := item[V]{value: value}
	if ttl > 0 {
		it.expires = time.Now().Add(ttl)
	}
	m.items[key] = it
	return nil
}

func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	delete(m.items, key)
	return nil
}

// DeleteByPrefix removes every key that starts with prefix.
func (m *Memory[V]) DeleteByPrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	for key := range m.items {
		if strings.HasPrefix(key, prefix) {
			delete(m.items, key)
		}
	}
	return nil
}

func (m *Memory[V]) Has(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	it, ok := m.items[key]
	if ok && !it.live(time.Now()) {
		delete(m.items, key)
		return false, nil
	}
	return ok, nil
}

func (m *Memory[V]) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	clear(m.items)
	return nil
}

// Len returns the number of live entries.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	n := 0
	for _, it := range m.items {
		if it.live(now) {
			n++
		}
	}
	return n
}

// Close marks the cache closed; later writes fail with ErrClosed.
// Reads keep working. Close is idempotent.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

var _ Cache[any] = (*Memory[any])(nil)
