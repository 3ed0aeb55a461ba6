// Package scope provides the request-scoped memo used by fallback lookups.
//
// A Scope lives for one inbound request or operation. It is never
// authoritative: values stored in it are hints that save repeated store
// round-trips within the same request and are dropped with the request.
//
//	s := scope.New()
//	ctx := scope.WithScope(ctx, s)
//	res, err := router.Translate(ctx, "en", "dynamic.key")
//
// For HTTP servers, [Middleware] installs a fresh scope per request.
package scope

import (
	"context"
	"net/http"
	"sync"
)

// Scope is a key-value memo bound to one request.
type Scope interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// Map is a Scope safe for concurrent use by the goroutines serving one request.
type Map struct {
	values map[string]any
	mu     sync.RWMutex
}

// New returns an empty Map.
func New() *Map {
	return &Map{values: make(map[string]any)}
}

func (m *Map) Get(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *Map) Set(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// Len returns the number of memoized entries.
func (m *Map) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}

type scopeKey struct{}

// WithScope returns a copy of ctx carrying s.
func WithScope(ctx context.Context, s Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// FromContext returns the scope carried by ctx, or nil.
func FromContext(ctx context.Context) Scope {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(scopeKey{}).(Scope)
	return s
}

// Middleware attaches a new scope to every request passing through next.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithScope(r.Context(), New())))
	})
}

var _ Scope = (*Map)(nil)
