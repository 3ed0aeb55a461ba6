package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrymomot/onair"
	"github.com/dmitrymomot/onair/internal/simple"
	"github.com/dmitrymomot/onair/pkg/cache"
	"github.com/dmitrymomot/onair/pkg/health"
	"github.com/dmitrymomot/onair/pkg/invalidation"
	"github.com/dmitrymomot/onair/pkg/logger"
	"github.com/dmitrymomot/onair/pkg/redis"
	"github.com/dmitrymomot/onair/pkg/store"
	"github.com/dmitrymomot/onair/pkg/tree"
)

// app holds the wired components of one process.
type app struct {
	router   *onair.Router
	checker  *health.Checker
	registry *prometheus.Registry
	log      *slog.Logger
	cfg      Config

	// Run in order on shutdown.
	closers []func(context.Context) error
}

// close runs every closer and flushes the logger last.
func (a *app) close(ctx context.Context) error {
	var errs []error
	for _, fn := range a.closers {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func newApp(ctx context.Context, cfg Config) (_ *app, err error) {
	mode, err := onair.ParseStorageMode(cfg.StorageMode)
	if err != nil {
		return nil, err
	}

	log, flush := logger.New(cfg.Log, logger.RequestIDExtractor())
	log = log.With(slog.String("service", "onair"))

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a := &app{
		checker:  health.NewChecker(health.WithLogger(log)),
		registry: reg,
		log:      log,
		cfg:      cfg,
	}
	defer func() {
		if err != nil {
			_ = a.close(context.Background())
			flush()
		}
	}()

	opts := []onair.Option{
		onair.WithLogger(log),
		onair.WithDefaultLocale(cfg.DefaultLocale),
		onair.WithFallback(cfg.Fallback),
		onair.WithSharedTTL(cfg.SharedTTL),
		onair.WithLoadTimeout(cfg.LoadTimeout),
		onair.WithRaiseOnLoadError(cfg.RaiseOnLoadError),
		onair.WithMetrics(reg),
	}

	switch mode {
	case onair.ModeFile:
		opts = append(opts, onair.WithFS(os.DirFS(cfg.LocalesDir)))
	case onair.ModeDatabase:
		st, err := a.openStore(ctx)
		if err != nil {
			return nil, err
		}
		opts = append(opts, onair.WithStore(st))
	}

	if cfg.Redis.Enabled() {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.checker.Add("redis", redis.Healthcheck(client))
		a.closers = append(a.closers, redis.Shutdown(client))

		shared := cache.NewRedis[tree.Tree](client, nil,
			cache.WithPrefix("onair"),
			cache.WithRedisDefaultTTL(cfg.SharedTTL),
		)
		opts = append(opts,
			onair.WithSharedCache(shared),
			onair.WithInvalidationBus(invalidation.NewRedis(client, cfg.InvalidationChannel, invalidation.WithLogger(log))),
		)
	}

	router, err := onair.New(mode, opts...)
	if err != nil {
		return nil, err
	}
	a.router = router
	a.closers = append(a.closers, func(context.Context) error {
		flush()
		return nil
	})

	return a, nil
}

// openStore returns the Postgres store, or an in-memory store seeded from
// files when a seed directory is configured.
func (a *app) openStore(ctx context.Context) (store.Store, error) {
	if a.cfg.SeedDir != "" {
		trees, err := simple.New(os.DirFS(a.cfg.SeedDir), simple.WithLogger(a.log)).Trees(ctx)
		if err != nil {
			return nil, fmt.Errorf("seed from %s: %w", a.cfg.SeedDir, err)
		}
		a.log.Info("serving seeded in-memory store",
			slog.String("dir", a.cfg.SeedDir),
			slog.Int("locales", len(trees)),
		)
		return store.NewMemory(trees), nil
	}

	pool, err := store.Connect(ctx, a.cfg.Database)
	if err != nil {
		return nil, err
	}
	a.checker.Add("postgres", store.Healthcheck(pool))
	a.closers = append(a.closers, store.Shutdown(pool))

	return store.NewPostgres(pool), nil
}
