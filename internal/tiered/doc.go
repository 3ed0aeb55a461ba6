// Package tiered implements the database-backed translation backend.
//
// Lookups are answered from four tiers, cheapest first:
//
//   - memory: whole locale trees held in process (copy-on-write snapshot)
//   - request: fallback answers memoized in the request scope
//   - shared: whole locale trees in a cross-process cache (Redis)
//   - store: the persistent store
//
// A locale is loaded on first use through the shared cache and the store,
// and is loaded by one goroutine no matter how many callers ask for it.
// Keys missing from a loaded tree may be answered by a single-key store
// query when fallback is enabled.
//
//	c := tiered.New(st,
//	    tiered.WithSharedCache(cache.NewRedis[tree.Tree](client, nil)),
//	    tiered.WithLogger(log),
//	    tiered.WithMetrics(tiered.NewMetrics(prometheus.DefaultRegisterer)),
//	)
//
//	res, err := c.Resolve(ctx, "en", "user.profile.name", tiered.WithScope(scope.FromContext(ctx)))
package tiered
