package tiered

import "context"

// ReloadAll drops every locale from memory and from the shared cache.
// Loads in progress are discarded. With warm set, the default locale is
// loaded again before returning and its load error is returned.
func (c *Cache) ReloadAll(ctx context.Context, warm bool) error {
	// Memory is cleared on both sides of the shared delete: a load started
	// before it may have read the old shared entry.
	c.evictAll()
	if c.shared != nil {
		if err := c.shared.DeleteByPrefix(ctx, sharedKeyPrefix); err != nil {
			c.log.WarnContext(ctx, "shared cache clear failed", "error", err)
		}
	}
	c.evictAll()

	c.metrics.invalidated("all")
	c.log.DebugContext(ctx, "translation cache reloaded")

	if !warm {
		return nil
	}
	return c.EnsureLoaded(ctx, c.defaultLocale)
}

// ReloadLocale drops one locale from memory and from the shared cache,
// then loads it again. Other locales are untouched.
func (c *Cache) ReloadLocale(ctx context.Context, locale string) error {
	c.evict(locale)
	if c.shared != nil {
		if err := c.shared.Delete(ctx, sharedKey(locale)); err != nil {
			c.log.WarnContext(ctx, "shared cache delete failed",
				"locale", locale,
				"error", err,
			)
		}
	}
	c.evict(locale)

	c.metrics.invalidated("locale")
	c.log.DebugContext(ctx, "translation locale reloaded", "locale", locale)

	return c.EnsureLoaded(ctx, locale)
}

// Evict drops one locale from memory only. The next lookup reloads it,
// typically from the shared cache a peer has already refreshed.
func (c *Cache) Evict(ctx context.Context, locale string) {
	c.evict(locale)

	c.metrics.invalidated("locale")
	c.log.DebugContext(ctx, "translation locale evicted", "locale", locale)
}

// EvictAll drops every locale from memory only.
func (c *Cache) EvictAll(ctx context.Context) {
	c.evictAll()

	c.metrics.invalidated("all")
	c.log.DebugContext(ctx, "translation cache evicted")
}

func (c *Cache) evict(locale string) {
	c.mu.Lock()
	c.remove(locale)
	c.mu.Unlock()
	c.forgetLocales()
}

func (c *Cache) evictAll() {
	c.mu.Lock()
	c.reset()
	c.mu.Unlock()
	c.forgetLocales()
}

// forgetLocales drops the cached locale list. A reload may follow a
// locale being added or removed.
func (c *Cache) forgetLocales() {
	_ = c.locales.Delete(context.Background(), localesKey)
}
