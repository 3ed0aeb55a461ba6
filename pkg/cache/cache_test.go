package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/onair/pkg/cache"
	"github.com/dmitrymomot/onair/pkg/tree"
)

// --- Memory ---

func TestMemory_GetSet(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrNotFound for missing locale", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[tree.Tree]()
		defer c.Close()

		_, err := c.Get(context.Background(), "locale:en")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("returns stored tree", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[tree.Tree]()
		defer c.Close()

		ctx := context.Background()
		en := tree.Tree{"a": tree.Tree{"b": "hello"}}
		require.NoError(t, c.Set(ctx, "locale:en", en, time.Minute))

		got, err := c.Get(ctx, "locale:en")
		require.NoError(t, err)
		require.Equal(t, en, got)
	})

	t.Run("expired entry is a miss", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[string]()
		defer c.Close()

		ctx := context.Background()
		require.NoError(t, c.Set(ctx, "key", "value", time.Millisecond))
		time.Sleep(5 * time.Millisecond)

		_, err := c.Get(ctx, "key")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("zero TTL uses default, negative never expires", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[string](cache.WithDefaultTTL(20 * time.Millisecond))
		defer c.Close()

		ctx := context.Background()
		require.NoError(t, c.Set(ctx, "default", "v", 0))
		require.NoError(t, c.Set(ctx, "forever", "v", -1))

		time.Sleep(40 * time.Millisecond)

		_, err := c.Get(ctx, "default")
		require.ErrorIs(t, err, cache.ErrNotFound)

		_, err = c.Get(ctx, "forever")
		require.NoError(t, err)
	})

	t.Run("overwrite replaces value and expiry", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[string]()
		ctx := context.Background()
		require.NoError(t, c.Set(ctx, "locale:en", "old", time.Millisecond))
		require.NoError(t, c.Set(ctx, "locale:en", "new", time.Minute))
		time.Sleep(5 * time.Millisecond)

		got, err := c.Get(ctx, "locale:en")
		require.NoError(t, err)
		require.Equal(t, "new", got)
		require.Equal(t, 1, c.Len())
	})

	t.Run("operations fail after Close", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[string]()
		require.NoError(t, c.Close())
		require.NoError(t, c.Close(), "Close is idempotent")

		ctx := context.Background()
		require.ErrorIs(t, c.Set(ctx, "k", "v", time.Minute), cache.ErrClosed)
		require.ErrorIs(t, c.Delete(ctx, "k"), cache.ErrClosed)
		require.ErrorIs(t, c.DeleteByPrefix(ctx, "k"), cache.ErrClosed)
		require.ErrorIs(t, c.Clear(ctx), cache.ErrClosed)

		_, err := c.Get(ctx, "k")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})
}

func TestMemory_DeleteByPrefix(t *testing.T) {
	t.Parallel()

	t.Run("removes only matching keys", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[string]()
		defer c.Close()

		ctx := context.Background()
		require.NoError(t, c.Set(ctx, "locale:en", "en", time.Minute))
		require.NoError(t, c.Set(ctx, "locale:de", "de", time.Minute))
		require.NoError(t, c.Set(ctx, "locales", "index", time.Minute))
		require.NoError(t, c.Set(ctx, "other", "x", time.Minute))

		require.NoError(t, c.DeleteByPrefix(ctx, "locale:"))

		require.Equal(t, 2, c.Len())
		for _, key := range []string{"locales", "other"} {
			has, err := c.Has(ctx, key)
			require.NoError(t, err)
			require.True(t, has, key)
		}
	})
}

func TestMemory_Len(t *testing.T) {
	t.Parallel()

	c := cache.NewMemory[string]()
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "short", "v", 10*time.Millisecond))
	require.NoError(t, c.Set(ctx, "long", "v", time.Minute))
	require.Equal(t, 2, c.Len())

	require.Eventually(t, func() bool { return c.Len() == 1 }, time.Second, 5*time.Millisecond)
}

// --- Fetch / GetOrSet ---

// failingCache wraps Memory and fails reads and writes with a backend error.
type failingCache struct {
	*cache.Memory[tree.Tree]
	err error
}

func (f *failingCache) Get(context.Context, string) (tree.Tree, error) { return nil, f.err }

func (f *failingCache) Set(context.Context, string, tree.Tree, time.Duration) error { return f.err }

// countingCache counts writes to the wrapped Memory.
type countingCache struct {
	*cache.Memory[tree.Tree]
	sets atomic.Int64
}

func (c *countingCache) Set(ctx context.Context, key string, v tree.Tree, ttl time.Duration) error {
	c.sets.Add(1)
	return c.Memory.Set(ctx, key, v, ttl)
}

func TestFetch(t *testing.T) {
	t.Parallel()

	t.Run("hit does not compute", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[tree.Tree]()
		defer c.Close()

		ctx := context.Background()
		require.NoError(t, c.Set(ctx, "locale:en", tree.Tree{"k": "v"}, time.Minute))

		got, out, err := cache.Fetch(ctx, c, "locale:en", func(context.Context) (tree.Tree, time.Duration, error) {
			t.Fatal("fn must not be called on hit")
			return nil, 0, nil
		})
		require.NoError(t, err)
		require.True(t, out.Hit)
		require.Equal(t, tree.Tree{"k": "v"}, got)
	})

	t.Run("miss computes and caches", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[tree.Tree]()
		defer c.Close()

		ctx := context.Background()
		got, out, err := cache.Fetch(ctx, c, "locale:en", func(context.Context) (tree.Tree, time.Duration, error) {
			return tree.Tree{"k": "v"}, time.Minute, nil
		})
		require.NoError(t, err)
		require.False(t, out.Hit)
		require.NoError(t, out.GetErr)
		require.NoError(t, out.SetErr)
		require.Equal(t, tree.Tree{"k": "v"}, got)

		cached, err := c.Get(ctx, "locale:en")
		require.NoError(t, err)
		require.Equal(t, got, cached)
	})

	t.Run("compute error is returned and not cached", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[tree.Tree]()
		defer c.Close()

		ctx := context.Background()
		boom := errors.New("store down")

		_, _, err := cache.Fetch(ctx, c, "locale:de", func(context.Context) (tree.Tree, time.Duration, error) {
			return nil, 0, boom
		})
		require.ErrorIs(t, err, boom)

		_, err = c.Get(ctx, "locale:de")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("backend faults degrade to compute", func(t *testing.T) {
		t.Parallel()

		backendErr := errors.New("connection refused")
		c := &failingCache{Memory: cache.NewMemory[tree.Tree](), err: backendErr}
		defer c.Close()

		got, out, err := cache.Fetch(context.Background(), cache.Cache[tree.Tree](c), "locale:en",
			func(context.Context) (tree.Tree, time.Duration, error) {
				return tree.Tree{"k": "v"}, time.Minute, nil
			})
		require.NoError(t, err)
		require.Equal(t, tree.Tree{"k": "v"}, got)
		require.ErrorIs(t, out.GetErr, backendErr)
		require.ErrorIs(t, out.SetErr, backendErr)
	})

	t.Run("deduplicates concurrent misses", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[int]()
		defer c.Close()

		ctx := context.Background()
		var calls atomic.Int64
		var wg sync.WaitGroup

		for range 10 {
			wg.Go(func() {
				val, err := cache.GetOrSet(ctx, c, "dedup", func(context.Context) (int, time.Duration, error) {
					calls.Add(1)
					time.Sleep(10 * time.Millisecond)
					return 42, time.Minute, nil
				})
				require.NoError(t, err)
				require.Equal(t, 42, val)
			})
		}

		wg.Wait()
		require.LessOrEqual(t, calls.Load(), int64(2))
	})

	t.Run("only the computing caller writes back", func(t *testing.T) {
		t.Parallel()

		c := &countingCache{Memory: cache.NewMemory[tree.Tree]()}

		ctx := context.Background()
		var calls atomic.Int64
		var shared, hits atomic.Int64
		release := make(chan struct{})
		var wg sync.WaitGroup

		for range 10 {
			wg.Go(func() {
				_, out, err := cache.Fetch(ctx, cache.Cache[tree.Tree](c), "locale:en", func(context.Context) (tree.Tree, time.Duration, error) {
					calls.Add(1)
					<-release
					return tree.Tree{"k": "v"}, time.Minute, nil
				})
				require.NoError(t, err)
				switch {
				case out.Hit:
					hits.Add(1)
				case out.Shared:
					shared.Add(1)
				}
			})
		}

		time.Sleep(20 * time.Millisecond)
		close(release)
		wg.Wait()

		require.Equal(t, calls.Load(), c.sets.Load())
		require.Equal(t, int64(10), calls.Load()+shared.Load()+hits.Load())
	})

	t.Run("different caches never share a flight", func(t *testing.T) {
		t.Parallel()

		a := cache.NewMemory[string]()
		defer a.Close()
		b := cache.NewMemory[int]()
		defer b.Close()

		ctx := context.Background()
		release := make(chan struct{})
		var wg sync.WaitGroup

		wg.Go(func() {
			v, err := cache.GetOrSet(ctx, a, "same", func(context.Context) (string, time.Duration, error) {
				<-release
				return "a", time.Minute, nil
			})
			require.NoError(t, err)
			require.Equal(t, "a", v)
		})

		v, err := cache.GetOrSet(ctx, b, "same", func(context.Context) (int, time.Duration, error) {
			return 7, time.Minute, nil
		})
		require.NoError(t, err)
		require.Equal(t, 7, v)

		close(release)
		wg.Wait()
	})
}
