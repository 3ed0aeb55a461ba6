// Package onair looks up translations by locale and dotted key.
//
// Translations live either in PostgreSQL (database mode) or in YAML/JSON
// locale files (file mode). The mode is chosen once, when the [Router] is
// built:
//
//	r, err := onair.New(onair.ModeDatabase,
//	    onair.WithStore(store.NewPostgres(pool)),
//	    onair.WithSharedCache(cache.NewRedis[tree.Tree](client, nil)),
//	    onair.WithLogger(log),
//	)
//	if err != nil {
//	    return err
//	}
//
//	res, err := r.Translate(ctx, "en", "user.profile.name", onair.WithDefault("Name"))
//	if err != nil {
//	    return err // invalid key path, or a load error when raising is enabled
//	}
//	if !res.Found {
//	    // missing
//	}
//
// In database mode each locale is loaded whole into memory on first use,
// through a shared Redis cache when one is configured, and at most once
// at a time. Keys absent from the loaded tree are looked up individually
// in the store and memoized for the rest of the request (see
// [github.com/dmitrymomot/onair/pkg/scope]).
//
// # Reloading
//
// [Router.ReloadLocale] and [Router.ReloadAll] drop cached trees so the
// next lookup reads fresh data. With [WithInvalidationBus] the reload is
// announced to other instances, which apply it in [Router.Listen].
// [Router.StartRefresh] runs ReloadAll on a cron schedule.
package onair
