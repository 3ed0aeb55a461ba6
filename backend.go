package onair

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/onair/internal/simple"
	"github.com/dmitrymomot/onair/internal/tiered"
	"github.com/dmitrymomot/onair/pkg/tree"
)

type databaseBackend struct {
	cache *tiered.Cache
}

func (b *databaseBackend) Translate(ctx context.Context, locale, key string, opts ...TranslateOption) (Result, error) {
	o := resolveOptions(ctx, opts)
	res, err := b.cache.Resolve(ctx, locale, key,
		tiered.WithDefault(o.def),
		tiered.WithScope(o.scope),
	)
	if err != nil {
		return Result{}, err
	}
	return Result{Value: res.Value, Found: res.Found, Tier: res.Tier}, nil
}

func (b *databaseBackend) AvailableLocales(ctx context.Context) ([]string, error) {
	return b.cache.AvailableLocales(ctx)
}

func (b *databaseBackend) ReloadAll(ctx context.Context, opts ...ReloadOption) error {
	var o reloadOptions
	for _, opt := range opts {
		opt(&o)
	}
	return b.cache.ReloadAll(ctx, o.warm)
}

func (b *databaseBackend) ReloadLocale(ctx context.Context, locale string) error {
	return b.cache.ReloadLocale(ctx, locale)
}

func (b *databaseBackend) Evict(ctx context.Context, locale string) {
	b.cache.Evict(ctx, locale)
}

func (b *databaseBackend) EvictAll(ctx context.Context) {
	b.cache.EvictAll(ctx)
}

// fileBackend keeps every locale file in memory. Reloads re-read the
// whole directory.
type fileBackend struct {
	files *simple.Backend
	log   *slog.Logger
	raise bool
}

func (b *fileBackend) Translate(ctx context.Context, locale, key string, opts ...TranslateOption) (Result, error) {
	o := resolveOptions(ctx, opts)

	v, found, err := b.files.Translate(ctx, locale, key)
	if errors.Is(err, tree.ErrInvalidPath) {
		return Result{}, errors.Join(ErrInvalidKeyPath, err)
	}
	if err != nil {
		if b.raise {
			return Result{}, errors.Join(ErrLoadFailed, err)
		}
		b.log.WarnContext(ctx, "translation lookup without loaded locale files",
			"locale", locale,
			"key", key,
			"error", err,
		)
	}

	switch {
	case found:
		return Result{Value: v, Found: true, Tier: tree.TierMemory}, nil
	case o.def != nil:
		return Result{Value: o.def, Found: true, Tier: tree.TierDefault}, nil
	}
	return Result{}, nil
}

func (b *fileBackend) AvailableLocales(ctx context.Context) ([]string, error) {
	return b.files.AvailableLocales(ctx)
}

func (b *fileBackend) ReloadAll(ctx context.Context, _ ...ReloadOption) error {
	return b.files.Reload(ctx)
}

func (b *fileBackend) ReloadLocale(ctx context.Context, _ string) error {
	return b.files.Reload(ctx)
}

func (b *fileBackend) Evict(ctx context.Context, _ string) {
	b.EvictAll(ctx)
}

func (b *fileBackend) EvictAll(ctx context.Context) {
	if err := b.files.Reload(ctx); err != nil {
		b.log.WarnContext(ctx, "locale files reload failed", "error", err)
	}
}
