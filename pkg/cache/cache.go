package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache is a generic key-value cache with TTL support.
//
// TTL semantics for Set:
//   - Positive duration: item expires after this duration
//   - Zero: use the cache's configured default TTL
//   - Negative: item never expires
type Cache[V any] interface {
	// Get retrieves a value by key.
	// Returns ErrNotFound if the key does not exist or has expired.
	Get(ctx context.Context, key string) (V, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value V, ttl time.Duration) error

	// Delete removes a key from the cache.
	Delete(ctx context.Context, key string) error

	// DeleteByPrefix removes every key starting with prefix.
	DeleteByPrefix(ctx context.Context, prefix string) error

	// Has checks whether a key exists and has not expired.
	Has(ctx context.Context, key string) (bool, error)

	// Clear removes all entries from the cache.
	Clear(ctx context.Context) error

	// Close releases resources (stops background goroutines, etc.).
	Close() error
}

// Marshaler serializes and deserializes cache values for storage backends
// that require byte representation (e.g., Redis).
type Marshaler[V any] interface {
	Marshal(v V) ([]byte, error)
	Unmarshal(data []byte) (V, error)
}

type jsonMarshaler[V any] struct{}

func (jsonMarshaler[V]) Marshal(v V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrMarshal, err)
	}
	return data, nil
}

func (jsonMarshaler[V]) Unmarshal(data []byte) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrUnmarshal, err)
	}
	return v, nil
}

var sfGroup singleflight.Group

type getOrSetResult[V any] struct {
	val V
	ttl time.Duration
}

// Outcome describes how Fetch obtained its value.
type Outcome struct {
	// GetErr is a backend failure on read (never ErrNotFound).
	GetErr error
	// SetErr is a backend failure while storing the computed value.
	SetErr error
	// Hit is true when the value came from the cache.
	Hit bool
	// Shared is true when the value was computed by a concurrent caller.
	Shared bool
}

// Fetch retrieves a value from the cache, or calls fn to compute it on a miss.
// Concurrent misses for the same key on the same cache are collapsed into a
// single fn call, and only that call writes the value back.
//
// Backend faults never fail Fetch: a read error is treated as a miss and a
// write error is dropped. Both are reported in the Outcome so callers can
// log them. Only fn errors are returned, and their values are not cached.
func Fetch[V any](ctx context.Context, c Cache[V], key string, fn func(ctx context.Context) (V, time.Duration, error)) (V, Outcome, error) {
	var out Outcome

	v, err := c.Get(ctx, key)
	switch {
	case err == nil:
		out.Hit = true
		return v, out, nil
	case !errors.Is(err, ErrNotFound):
		out.GetErr = err
	}

	// fn runs on the calling goroutine of the flight leader only.
	leader := false
	res, err, _ := sfGroup.Do(flightKey(c, key), func() (any, error) {
		leader = true
		val, ttl, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return getOrSetResult[V]{val: val, ttl: ttl}, nil
	})
	out.Shared = !leader
	if err != nil {
		var zero V
		return zero, out, err
	}

	r := res.(getOrSetResult[V])
	if leader {
		out.SetErr = c.Set(ctx, key, r.val, r.ttl)
	}

	return r.val, out, nil
}

// GetOrSet retrieves a value from the cache, or calls fn to compute it on a miss.
// It is Fetch without the Outcome.
//
// The callback returns the value, a TTL for caching, and an error.
// If fn returns an error, the value is not cached and the error is returned.
func GetOrSet[V any](ctx context.Context, c Cache[V], key string, fn func(ctx context.Context) (V, time.Duration, error)) (V, error) {
	v, _, err := Fetch(ctx, c, key, fn)
	return v, err
}

// flightKey scopes singleflight keys to one cache instance so caches with
// different value types never join each other's flights.
func flightKey(c any, key string) string {
	return fmt.Sprintf("%T@%p|%s", c, c, key)
}
