package tiered

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/onair/pkg/cache"
	"github.com/dmitrymomot/onair/pkg/logger"
	"github.com/dmitrymomot/onair/pkg/store"
	"github.com/dmitrymomot/onair/pkg/tree"
)

const (
	sharedKeyPrefix = "locale:"
	localesKey      = "locales"
)

// Cache serves translation lookups from per-locale trees held in memory,
// loading each locale at most once per invalidation cycle.
type Cache struct {
	store   store.Store
	shared  cache.Cache[tree.Tree]
	log     *slog.Logger
	metrics *Metrics

	defaultLocale string
	sharedTTL     time.Duration
	loadTimeout   time.Duration
	localesTTL    time.Duration
	fallback      bool
	raise         bool

	// locales caches Store.ListLocales; every invalidation drops it.
	locales cache.Cache[[]string]

	// snapshot is replaced, never mutated. Readers load it without locking.
	snapshot atomic.Pointer[map[string]tree.Tree]

	mu      sync.Mutex
	flights map[string]*flight
	// draining holds the latest invalidated flight of a locale until it
	// finishes. The next load of that locale waits for it, so fetches of
	// one locale never overlap.
	draining map[string]*flight
}

// flight is one in-progress locale load.
type flight struct {
	done chan struct{}
	err  error
	// stale is set under Cache.mu when the locale was invalidated while
	// loading. The result of a stale flight is never installed.
	stale bool
}

// New returns a Cache reading from st.
func New(st store.Store, opts ...Option) *Cache {
	c := &Cache{
		store:         st,
		log:           logger.NewNope(),
		defaultLocale: defaultLocale,
		sharedTTL:     defaultSharedTTL,
		loadTimeout:   defaultLoadTimeout,
		localesTTL:    defaultLocalesTTL,
		fallback:      true,
		flights:       make(map[string]*flight),
		draining:      make(map[string]*flight),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.locales = cache.NewMemory[[]string](cache.WithDefaultTTL(c.localesTTL))

	empty := make(map[string]tree.Tree)
	c.snapshot.Store(&empty)

	return c
}

// DefaultLocale returns the locale warmed by ReloadAll.
func (c *Cache) DefaultLocale() string {
	return c.defaultLocale
}

// State reports the load state of a locale.
func (c *Cache) State(locale string) tree.LoadState {
	if _, ok := c.lookupTree(locale); ok {
		return tree.Loaded
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.lookupTree(locale); ok {
		return tree.Loaded
	}
	if _, ok := c.flights[locale]; ok {
		return tree.Loading
	}
	return tree.NotLoaded
}

// Loaded returns the loaded locales in ascending order.
func (c *Cache) Loaded() []string {
	return slices.Sorted(maps.Keys(*c.snapshot.Load()))
}

// AvailableLocales lists the locales known to the store. The list is kept
// in memory until the next invalidation or for the locales TTL.
func (c *Cache) AvailableLocales(ctx context.Context) ([]string, error) {
	locales, err := cache.GetOrSet(ctx, c.locales, localesKey, func(ctx context.Context) ([]string, time.Duration, error) {
		locales, err := c.store.ListLocales(ctx)
		return locales, c.localesTTL, err
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(locales), nil
}

func (c *Cache) lookupTree(locale string) (tree.Tree, bool) {
	t, ok := (*c.snapshot.Load())[locale]
	return t, ok
}

// install adds a locale to a copy of the snapshot. Callers hold mu.
func (c *Cache) install(locale string, t tree.Tree) {
	next := maps.Clone(*c.snapshot.Load())
	next[locale] = t
	c.snapshot.Store(&next)
	c.metrics.setLoaded(len(next))
}

// remove drops a locale from a copy of the snapshot and detaches its
// flight. Callers hold mu.
func (c *Cache) remove(locale string) {
	if f, ok := c.flights[locale]; ok {
		c.detach(locale, f)
	}

	cur := *c.snapshot.Load()
	if _, ok := cur[locale]; !ok {
		return
	}
	next := maps.Clone(cur)
	delete(next, locale)
	c.snapshot.Store(&next)
	c.metrics.setLoaded(len(next))
}

// reset empties the snapshot and detaches every flight. Callers hold mu.
func (c *Cache) reset() {
	for locale, f := range c.flights {
		c.detach(locale, f)
	}
	empty := make(map[string]tree.Tree)
	c.snapshot.Store(&empty)
	c.metrics.setLoaded(0)
}

// detach marks an in-flight load stale. Callers hold mu.
func (c *Cache) detach(locale string, f *flight) {
	f.stale = true
	delete(c.flights, locale)
	c.draining[locale] = f
}

func sharedKey(locale string) string {
	return sharedKeyPrefix + locale
}
