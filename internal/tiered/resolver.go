package tiered

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrymomot/onair/pkg/scope"
	"github.com/dmitrymomot/onair/pkg/tree"
)

// Result is the outcome of a lookup. Found is false for a missing key.
type Result struct {
	Value any
	Found bool
	Tier  tree.Tier
}

// ResolveOption configures a single lookup.
type ResolveOption func(*resolveOptions)

type resolveOptions struct {
	def    any
	hasDef bool
	scope  scope.Scope
}

// WithDefault returns v when the key is missing from the loaded tree.
// A default skips the per-key store query. A nil v is ignored.
func WithDefault(v any) ResolveOption {
	return func(o *resolveOptions) {
		if v != nil {
			o.def = v
			o.hasDef = true
		}
	}
}

// WithScope memoizes fallback answers in s for the rest of the request.
func WithScope(s scope.Scope) ResolveOption {
	return func(o *resolveOptions) {
		o.scope = s
	}
}

// memo is a fallback answer kept in the request scope. Missing keys are
// memoized too.
type memo struct {
	value any
	found bool
}

// Resolve looks up a dotted key in a locale.
//
// The key is answered from the in-memory tree when present. Otherwise the
// caller's default is returned, or, with fallback enabled, the store is
// asked for the single key and the answer is memoized in the request scope.
// A failed load skips the store query: the key is reported missing, or the
// default is returned. Load and fallback failures are only returned as
// errors when the cache was built WithRaiseOnLoadError.
func (c *Cache) Resolve(ctx context.Context, locale, key string, opts ...ResolveOption) (Result, error) {
	path, err := tree.ParsePath(key)
	if err != nil {
		return Result{}, errors.Join(ErrInvalidKeyPath, err)
	}

	var o resolveOptions
	for _, opt := range opts {
		opt(&o)
	}

	if err := c.EnsureLoaded(ctx, locale); err != nil {
		if c.raise || !errors.Is(err, ErrLoadFailed) {
			return Result{}, err
		}
		c.log.WarnContext(ctx, "translation lookup without loaded locale",
			"locale", locale,
			"key", key,
			"error", err,
		)
		if o.hasDef {
			c.metrics.lookup(tree.TierDefault, true)
			return Result{Value: o.def, Found: true, Tier: tree.TierDefault}, nil
		}
		c.metrics.lookup(tree.TierNone, false)
		return Result{}, nil
	}

	if t, ok := c.lookupTree(locale); ok {
		if v, ok := t.Lookup(path); ok && v != nil {
			c.metrics.lookup(tree.TierMemory, true)
			return Result{Value: v, Found: true, Tier: tree.TierMemory}, nil
		}
	}

	return c.missing(ctx, locale, path, o)
}

// missing handles a key absent from memory.
func (c *Cache) missing(ctx context.Context, locale string, path tree.Path, o resolveOptions) (Result, error) {
	if o.hasDef {
		c.metrics.lookup(tree.TierDefault, true)
		return Result{Value: o.def, Found: true, Tier: tree.TierDefault}, nil
	}
	if !c.fallback {
		c.metrics.lookup(tree.TierNone, false)
		return Result{}, nil
	}

	memoKey := locale + ":" + path.String()
	if o.scope != nil {
		if v, ok := o.scope.Get(memoKey); ok {
			if m, ok := v.(memo); ok {
				c.metrics.lookup(tree.TierRequest, m.found)
				return Result{Value: m.value, Found: m.found, Tier: tree.TierRequest}, nil
			}
		}
	}

	v, found, err := c.store.FetchKey(ctx, locale, path.String())
	if err != nil {
		c.metrics.lookup(tree.TierStore, false)
		if c.raise {
			return Result{}, fmt.Errorf("tiered: fallback lookup %s:%s: %w", locale, path, err)
		}
		c.log.WarnContext(ctx, "translation fallback lookup failed",
			"locale", locale,
			"key", path.String(),
			"error", err,
		)
		return Result{}, nil
	}
	if v == nil {
		found = false
	}

	if o.scope != nil {
		o.scope.Set(memoKey, memo{value: v, found: found})
	}

	c.metrics.lookup(tree.TierStore, found)
	if !found {
		return Result{Tier: tree.TierStore}, nil
	}
	return Result{Value: v, Found: true, Tier: tree.TierStore}, nil
}
