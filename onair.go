package onair

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/onair/internal/simple"
	"github.com/dmitrymomot/onair/internal/tiered"
	"github.com/dmitrymomot/onair/pkg/invalidation"
	"github.com/dmitrymomot/onair/pkg/logger"
	"github.com/dmitrymomot/onair/pkg/scope"
	"github.com/dmitrymomot/onair/pkg/tree"
)

// StorageMode selects where translations live.
type StorageMode string

const (
	ModeDatabase StorageMode = "database"
	ModeFile     StorageMode = "file"
)

// ParseStorageMode validates a configured mode name.
func ParseStorageMode(s string) (StorageMode, error) {
	switch m := StorageMode(s); m {
	case ModeDatabase, ModeFile:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStorageMode, s)
}

func (m StorageMode) String() string {
	return string(m)
}

// Result is a translation lookup outcome. Found is false for Missing,
// which is not an error.
type Result struct {
	Value any
	Found bool
	// Tier names the layer that answered. Informational only.
	Tier tree.Tier
}

// Backend is the translation surface shared by both storage modes.
type Backend interface {
	Translate(ctx context.Context, locale, key string, opts ...TranslateOption) (Result, error)
	AvailableLocales(ctx context.Context) ([]string, error)
	ReloadAll(ctx context.Context, opts ...ReloadOption) error
	ReloadLocale(ctx context.Context, locale string) error
}

// evicter drops local state after a peer reloaded.
type evicter interface {
	Evict(ctx context.Context, locale string)
	EvictAll(ctx context.Context)
}

type backend interface {
	Backend
	evicter
}

// Router dispatches translation calls to the backend chosen at
// construction.
type Router struct {
	mode    StorageMode
	backend backend
	bus     invalidation.Bus
	log     *slog.Logger
	id      string
}

// New returns a Router for mode. Database mode requires WithStore and
// file mode requires WithFS.
func New(mode StorageMode, opts ...Option) (*Router, error) {
	o := &options{
		log:      logger.NewNope(),
		fallback: true,
	}
	for _, opt := range opts {
		opt(o)
	}

	r := &Router{
		mode: mode,
		bus:  o.bus,
		id:   uuid.NewString(),
	}
	r.log = o.log.With(
		slog.String("component", "onair"),
		slog.String("mode", mode.String()),
	)

	switch mode {
	case ModeDatabase:
		if o.store == nil {
			return nil, ErrStoreRequired
		}
		topts := []tiered.Option{
			tiered.WithFallback(o.fallback),
			tiered.WithDefaultLocale(o.defaultLocale),
			tiered.WithSharedTTL(o.sharedTTL),
			tiered.WithLoadTimeout(o.loadTimeout),
			tiered.WithRaiseOnLoadError(o.raise),
			tiered.WithLogger(r.log),
		}
		if o.shared != nil {
			topts = append(topts, tiered.WithSharedCache(o.shared))
		}
		if o.registry != nil {
			topts = append(topts, tiered.WithMetrics(tiered.NewMetrics(o.registry)))
		}
		r.backend = &databaseBackend{cache: tiered.New(o.store, topts...)}
	case ModeFile:
		if o.fsys == nil {
			return nil, ErrFSRequired
		}
		r.backend = &fileBackend{files: simple.New(o.fsys, simple.WithLogger(r.log)), log: r.log, raise: o.raise}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStorageMode, mode)
	}

	return r, nil
}

// Mode returns the storage mode chosen at construction.
func (r *Router) Mode() StorageMode {
	return r.mode
}

// ID identifies this instance on the invalidation bus.
func (r *Router) ID() string {
	return r.id
}

// Translate resolves a dotted key in a locale. A missing key returns a
// Result with Found false and a nil error.
func (r *Router) Translate(ctx context.Context, locale, key string, opts ...TranslateOption) (Result, error) {
	return r.backend.Translate(ctx, locale, key, opts...)
}

// AvailableLocales lists the locales the backend knows about.
func (r *Router) AvailableLocales(ctx context.Context) ([]string, error) {
	return r.backend.AvailableLocales(ctx)
}

// ReloadAll drops every cached locale and tells peers to do the same.
func (r *Router) ReloadAll(ctx context.Context, opts ...ReloadOption) error {
	err := r.backend.ReloadAll(ctx, opts...)
	r.publish(ctx, invalidation.Event{Origin: r.id, All: true})
	return err
}

// ReloadLocale reloads one locale and tells peers to drop it.
func (r *Router) ReloadLocale(ctx context.Context, locale string) error {
	err := r.backend.ReloadLocale(ctx, locale)
	r.publish(ctx, invalidation.Event{Origin: r.id, Locale: locale})
	return err
}

func (r *Router) publish(ctx context.Context, e invalidation.Event) {
	if r.bus == nil {
		return
	}
	if err := r.bus.Publish(ctx, e); err != nil {
		r.log.WarnContext(ctx, "invalidation publish failed",
			"locale", e.Locale,
			"all", e.All,
			"error", err,
		)
	}
}

// Listen applies invalidations published by peers until ctx is done.
// Events from this instance are ignored.
func (r *Router) Listen(ctx context.Context) error {
	if r.bus == nil {
		return ErrNoInvalidationBus
	}
	return r.bus.Subscribe(ctx, r.handleEvent)
}

func (r *Router) handleEvent(ctx context.Context, e invalidation.Event) {
	if e.Origin == r.id {
		return
	}
	r.log.DebugContext(ctx, "peer invalidation received",
		"origin", e.Origin,
		"locale", e.Locale,
		"all", e.All,
	)
	if e.All {
		r.backend.EvictAll(ctx)
		return
	}
	r.backend.Evict(ctx, e.Locale)
}

func resolveOptions(ctx context.Context, opts []TranslateOption) translateOptions {
	var o translateOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.scope == nil {
		o.scope = scope.FromContext(ctx)
	}
	return o
}
