package onair

import (
	"io/fs"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/onair/pkg/cache"
	"github.com/dmitrymomot/onair/pkg/invalidation"
	"github.com/dmitrymomot/onair/pkg/scope"
	"github.com/dmitrymomot/onair/pkg/store"
	"github.com/dmitrymomot/onair/pkg/tree"
)

type options struct {
	store    store.Store
	fsys     fs.FS
	shared   cache.Cache[tree.Tree]
	registry prometheus.Registerer
	bus      invalidation.Bus
	log      *slog.Logger

	sharedTTL     time.Duration
	loadTimeout   time.Duration
	defaultLocale string
	fallback      bool
	raise         bool
}

// Option configures a Router.
type Option func(*options)

// WithStore sets the persistent store. Required in database mode.
func WithStore(st store.Store) Option {
	return func(o *options) {
		o.store = st
	}
}

// WithFS sets the directory of locale files. Required in file mode.
func WithFS(fsys fs.FS) Option {
	return func(o *options) {
		o.fsys = fsys
	}
}

// WithSharedCache enables the cross-process cache tier (database mode).
func WithSharedCache(c cache.Cache[tree.Tree]) Option {
	return func(o *options) {
		o.shared = c
	}
}

// WithSharedTTL sets the lifetime of locale trees in the shared cache.
func WithSharedTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.sharedTTL = ttl
	}
}

// WithFallback toggles per-key store queries for keys absent from the
// loaded tree (database mode). Enabled by default.
func WithFallback(enabled bool) Option {
	return func(o *options) {
		o.fallback = enabled
	}
}

// WithDefaultLocale sets the locale warmed after a full reload.
func WithDefaultLocale(locale string) Option {
	return func(o *options) {
		o.defaultLocale = locale
	}
}

// WithLoadTimeout bounds a single locale load.
func WithLoadTimeout(d time.Duration) Option {
	return func(o *options) {
		o.loadTimeout = d
	}
}

// WithRaiseOnLoadError makes Translate return load errors instead of
// reporting keys as missing.
func WithRaiseOnLoadError(raise bool) Option {
	return func(o *options) {
		o.raise = raise
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithMetrics registers lookup and load metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// WithInvalidationBus broadcasts local reloads to peer instances.
// Call Router.Listen to receive theirs.
func WithInvalidationBus(bus invalidation.Bus) Option {
	return func(o *options) {
		o.bus = bus
	}
}

type translateOptions struct {
	def   any
	scope scope.Scope
}

// TranslateOption configures a single Translate call.
type TranslateOption func(*translateOptions)

// WithDefault returns v instead of Missing when the key has no value.
func WithDefault(v any) TranslateOption {
	return func(o *translateOptions) {
		o.def = v
	}
}

// WithScope sets the request scope used to memoize fallback answers.
// Without it the scope stored in the context is used.
func WithScope(s scope.Scope) TranslateOption {
	return func(o *translateOptions) {
		o.scope = s
	}
}

type reloadOptions struct {
	warm bool
}

// ReloadOption configures ReloadAll.
type ReloadOption func(*reloadOptions)

// WithWarm loads the default locale again before ReloadAll returns.
func WithWarm(warm bool) ReloadOption {
	return func(o *reloadOptions) {
		o.warm = warm
	}
}
