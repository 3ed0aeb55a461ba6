package tiered

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrymomot/onair/pkg/cache"
	"github.com/dmitrymomot/onair/pkg/store"
	"github.com/dmitrymomot/onair/pkg/tree"
)

// EnsureLoaded makes sure the locale tree is in memory.
//
// Concurrent callers for the same locale share one load. The load itself is
// detached from ctx: a caller whose ctx ends stops waiting and gets
// ctx.Err(), while the load completes for everyone else. A locale absent
// from the store loads as an empty tree.
func (c *Cache) EnsureLoaded(ctx context.Context, locale string) error {
	for {
		if _, ok := c.lookupTree(locale); ok {
			return nil
		}

		c.mu.Lock()
		if _, ok := c.lookupTree(locale); ok {
			c.mu.Unlock()
			return nil
		}
		f, ok := c.flights[locale]
		if !ok {
			f = &flight{done: make(chan struct{})}
			c.flights[locale] = f
			go c.load(context.WithoutCancel(ctx), locale, f, c.draining[locale])
		}
		c.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.done:
		}

		// A stale flight was invalidated mid-load; start over.
		if f.stale {
			continue
		}
		if f.err != nil {
			return f.err
		}
	}
}

// load fetches the locale for f. prev is the invalidated load of the same
// locale still running, if any; load waits for it so that its shared cache
// writes and clean-up are done before this one reads.
func (c *Cache) load(ctx context.Context, locale string, f, prev *flight) {
	ctx, cancel := context.WithTimeout(ctx, c.loadTimeout)
	defer cancel()

	start := time.Now()
	if prev != nil {
		select {
		case <-prev.done:
		case <-ctx.Done():
		}
	}
	t, source, wrote, err := c.fetch(ctx, locale, f)
	elapsed := time.Since(start)

	c.mu.Lock()
	if c.flights[locale] == f {
		delete(c.flights, locale)
	}
	if c.draining[locale] == f {
		delete(c.draining, locale)
	}
	if err == nil && !f.stale {
		c.install(locale, t)
	}
	stale := f.stale
	c.mu.Unlock()

	switch {
	case err != nil:
		f.err = fmt.Errorf("%w: locale %q: %w", ErrLoadFailed, locale, err)
		c.metrics.observeLoad("error", elapsed)
		c.log.WarnContext(ctx, "translation locale load failed",
			"locale", locale,
			"error", err,
		)
	case stale:
		c.metrics.observeLoad("stale", elapsed)
		// The write may have landed after the invalidation cleared the key.
		if wrote {
			if derr := c.shared.Delete(ctx, sharedKey(locale)); derr != nil {
				c.log.WarnContext(ctx, "shared cache delete failed",
					"locale", locale,
					"error", derr,
				)
			}
		}
		c.log.DebugContext(ctx, "discarded stale locale load", "locale", locale)
	default:
		c.metrics.observeLoad(source.String(), elapsed)
		c.log.DebugContext(ctx, "translation locale loaded",
			"locale", locale,
			"keys", t.Len(),
			"source", source.String(),
			"duration", elapsed,
		)
	}

	close(f.done)
}

// fetch reads the locale tree through the shared cache when one is
// configured and reports which tier produced it. A tree read from the
// store is written back unless f was invalidated meanwhile; wrote reports
// whether that write happened.
//
// The flight table already collapses concurrent loads of a locale, so the
// shared tier is read and written directly rather than through
// cache.Fetch: joining an older, invalidated computation would hand this
// load a tree from before the invalidation.
func (c *Cache) fetch(ctx context.Context, locale string, f *flight) (t tree.Tree, source tree.Tier, wrote bool, err error) {
	if c.shared == nil {
		t, _, err = c.fetchFromStore(ctx, locale)
		return t, tree.TierStore, false, err
	}

	key := sharedKey(locale)
	t, err = c.shared.Get(ctx, key)
	switch {
	case err == nil:
		if t == nil {
			t = tree.Tree{}
		}
		return t, tree.TierShared, false, nil
	case !errors.Is(err, cache.ErrNotFound):
		c.log.WarnContext(ctx, "shared cache read failed",
			"locale", locale,
			"error", err,
		)
	}

	t, ttl, err := c.fetchFromStore(ctx, locale)
	if err != nil {
		return nil, tree.TierNone, false, err
	}

	c.mu.Lock()
	stale := f.stale
	c.mu.Unlock()
	if stale {
		return t, tree.TierStore, false, nil
	}

	if err := c.shared.Set(ctx, key, t, ttl); err != nil {
		c.log.WarnContext(ctx, "shared cache write failed",
			"locale", locale,
			"error", err,
		)
		return t, tree.TierStore, false, nil
	}
	return t, tree.TierStore, true, nil
}

func (c *Cache) fetchFromStore(ctx context.Context, locale string) (tree.Tree, time.Duration, error) {
	t, err := c.store.FetchTree(ctx, locale)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return tree.Tree{}, c.sharedTTL, nil
	case err != nil:
		return nil, 0, err
	case t == nil:
		return tree.Tree{}, c.sharedTTL, nil
	}
	return t, c.sharedTTL, nil
}
