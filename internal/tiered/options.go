package tiered

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/onair/pkg/cache"
	"github.com/dmitrymomot/onair/pkg/tree"
)

const (
	defaultSharedTTL   = time.Hour
	defaultLoadTimeout = 10 * time.Second
	defaultLocalesTTL  = 5 * time.Minute
	defaultLocale      = "en"
)

// Option configures a Cache.
type Option func(*Cache)

// WithSharedCache enables the cross-process tier. Whole locale trees are
// stored under "locale:<id>" keys.
func WithSharedCache(c cache.Cache[tree.Tree]) Option {
	return func(tc *Cache) {
		tc.shared = c
	}
}

// WithSharedTTL sets how long locale trees live in the shared cache.
// Non-positive values are ignored.
func WithSharedTTL(ttl time.Duration) Option {
	return func(tc *Cache) {
		if ttl > 0 {
			tc.sharedTTL = ttl
		}
	}
}

// WithFallback toggles per-key store queries for keys missing from the
// loaded tree. Enabled by default.
func WithFallback(enabled bool) Option {
	return func(tc *Cache) {
		tc.fallback = enabled
	}
}

// WithDefaultLocale sets the locale warmed by ReloadAll.
func WithDefaultLocale(locale string) Option {
	return func(tc *Cache) {
		if locale != "" {
			tc.defaultLocale = locale
		}
	}
}

// WithLoadTimeout bounds a single locale load, including the shared cache
// round trip. Non-positive values are ignored.
func WithLoadTimeout(d time.Duration) Option {
	return func(tc *Cache) {
		if d > 0 {
			tc.loadTimeout = d
		}
	}
}

// WithLocalesTTL sets how long the list of available locales is reused
// before the store is asked again. Non-positive values are ignored.
func WithLocalesTTL(ttl time.Duration) Option {
	return func(tc *Cache) {
		if ttl > 0 {
			tc.localesTTL = ttl
		}
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(log *slog.Logger) Option {
	return func(tc *Cache) {
		if log != nil {
			tc.log = log
		}
	}
}

// WithMetrics sets the Prometheus collectors updated by the cache.
func WithMetrics(m *Metrics) Option {
	return func(tc *Cache) {
		tc.metrics = m
	}
}

// WithRaiseOnLoadError makes Resolve return load and fallback errors
// instead of reporting the key as missing.
func WithRaiseOnLoadError(raise bool) Option {
	return func(tc *Cache) {
		tc.raise = raise
	}
}
