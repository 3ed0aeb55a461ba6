// Package cache provides the shared cache tier: a generic Cache interface
// with in-memory and Redis implementations.
//
// The tiered translation backend stores whole locale trees here under
// "locale:<id>" keys so that a cold process can warm its in-memory tier
// without querying the persistent store.
//
// # Interface
//
// The [Cache] interface is generic over value type V:
//
//   - Get(ctx, key) (V, error): retrieve a value
//   - Set(ctx, key, value, ttl) error: store a value with TTL
//   - Delete(ctx, key) error: remove a key
//   - DeleteByPrefix(ctx, prefix) error: remove every key under a prefix
//   - Has(ctx, key) (bool, error): check existence
//   - Clear(ctx) error: remove all entries
//   - Close() error: release resources
//
// TTL semantics for Set:
//   - Positive duration: item expires after this duration
//   - Zero: use the cache's configured default TTL (1 hour by default)
//   - Negative: item never expires
//
// # In-Memory Cache
//
// [NewMemory] keeps entries in process. Expired entries are dropped when
// touched:
//
//	locales := cache.NewMemory[[]string](cache.WithDefaultTTL(5 * time.Minute))
//
// # Redis Cache
//
// [NewRedis] shares entries between processes. It needs a
// [github.com/redis/go-redis/v9.UniversalClient] from
// [github.com/dmitrymomot/onair/pkg/redis]:
//
//	client, err := redis.Connect(ctx, redis.Config{URL: os.Getenv("REDIS_URL")})
//	c := cache.NewRedis[tree.Tree](client, nil, cache.WithPrefix("onair"))
//
//	_ = c.DeleteByPrefix(ctx, "locale:") // drops every cached locale
//
// # Get-or-compute
//
// [Fetch] and [GetOrSet] read through the cache and collapse concurrent
// misses for the same key into one computation. Backend faults degrade to a
// miss and are reported in the [Outcome] returned by Fetch:
//
//	t, out, err := cache.Fetch(ctx, c, "locale:en", func(ctx context.Context) (tree.Tree, time.Duration, error) {
//	    t, err := st.FetchTree(ctx, "en")
//	    return t, time.Hour, err
//	})
//	if out.GetErr != nil {
//	    log.Warn("shared cache read failed", "error", out.GetErr)
//	}
//
// # Error Handling
//
// Sentinel errors:
//
//   - [ErrNotFound]: key does not exist or has expired
//   - [ErrClosed]: operation on a closed cache
//   - [ErrMarshal]: value serialization failed
//   - [ErrUnmarshal]: value deserialization failed
package cache
