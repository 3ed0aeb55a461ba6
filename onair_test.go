package onair_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/onair"
	"github.com/dmitrymomot/onair/pkg/cache"
	"github.com/dmitrymomot/onair/pkg/invalidation"
	"github.com/dmitrymomot/onair/pkg/scope"
	"github.com/dmitrymomot/onair/pkg/store"
	"github.com/dmitrymomot/onair/pkg/tree"
)

func TestParseStorageMode(t *testing.T) {
	t.Parallel()

	m, err := onair.ParseStorageMode("database")
	require.NoError(t, err)
	require.Equal(t, onair.ModeDatabase, m)

	m, err = onair.ParseStorageMode("file")
	require.NoError(t, err)
	require.Equal(t, onair.ModeFile, m)

	for _, s := range []string{"", "Database", "redis", "files"} {
		_, err := onair.ParseStorageMode(s)
		require.ErrorIs(t, err, onair.ErrInvalidStorageMode, s)
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := onair.New(onair.ModeDatabase)
	require.ErrorIs(t, err, onair.ErrStoreRequired)

	_, err = onair.New(onair.ModeFile)
	require.ErrorIs(t, err, onair.ErrFSRequired)

	_, err = onair.New("memcached", onair.WithStore(store.NewMemory(nil)))
	require.ErrorIs(t, err, onair.ErrInvalidStorageMode)

	r, err := onair.New(onair.ModeFile, onair.WithFS(fstest.MapFS{}))
	require.NoError(t, err)
	require.Equal(t, onair.ModeFile, r.Mode())
	require.NotEmpty(t, r.ID())
}

func newDatabaseRouter(t *testing.T, st store.Store, opts ...onair.Option) *onair.Router {
	t.Helper()

	r, err := onair.New(onair.ModeDatabase, append([]onair.Option{onair.WithStore(st)}, opts...)...)
	require.NoError(t, err)
	return r
}

func TestRouter_DatabaseMode(t *testing.T) {
	t.Parallel()

	st := store.NewMemory(map[string]tree.Tree{
		"en": {"a": tree.Tree{"b": "hello"}},
		"de": {"a": tree.Tree{"b": "hallo"}},
	})
	r := newDatabaseRouter(t, st)
	ctx := context.Background()

	t.Run("translate", func(t *testing.T) {
		t.Parallel()

		res, err := r.Translate(ctx, "en", "a.b")
		require.NoError(t, err)
		require.Equal(t, onair.Result{Value: "hello", Found: true, Tier: tree.TierMemory}, res)
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()

		res, err := r.Translate(ctx, "de", "a.c")
		require.NoError(t, err)
		require.False(t, res.Found)
	})

	t.Run("default", func(t *testing.T) {
		t.Parallel()

		res, err := r.Translate(ctx, "de", "a.c", onair.WithDefault("x"))
		require.NoError(t, err)
		require.Equal(t, onair.Result{Value: "x", Found: true, Tier: tree.TierDefault}, res)
	})

	t.Run("invalid key", func(t *testing.T) {
		t.Parallel()

		_, err := r.Translate(ctx, "en", "a..b")
		require.ErrorIs(t, err, onair.ErrInvalidKeyPath)
	})

	t.Run("locales", func(t *testing.T) {
		t.Parallel()

		locales, err := r.AvailableLocales(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"de", "en"}, locales)
	})
}

// countingStore counts single-key queries.
type countingStore struct {
	*store.Memory
	mu   sync.Mutex
	keys int
}

func (s *countingStore) FetchKey(ctx context.Context, locale, path string) (any, bool, error) {
	s.mu.Lock()
	s.keys++
	s.mu.Unlock()
	return s.Memory.FetchKey(ctx, locale, path)
}

func TestRouter_ScopeFromContext(t *testing.T) {
	t.Parallel()

	st := &countingStore{Memory: store.NewMemory(map[string]tree.Tree{"en": {}})}
	r := newDatabaseRouter(t, st)

	ctx := scope.WithScope(context.Background(), scope.New())
	ctx2 := scope.WithScope(context.Background(), scope.New())

	for range 3 {
		res, err := r.Translate(ctx, "en", "late.key")
		require.NoError(t, err)
		require.False(t, res.Found)
	}
	_, err := r.Translate(ctx2, "en", "late.key")
	require.NoError(t, err)

	require.Equal(t, 2, st.keys)

	res, err := r.Translate(ctx, "en", "late.key", onair.WithScope(scope.New()))
	require.NoError(t, err)
	require.Equal(t, tree.TierStore, res.Tier)
}

func TestRouter_FileMode(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"en.yml": {Data: []byte("en:\n  a:\n    b: hello\n")},
		"de.yml": {Data: []byte("a:\n  b: hallo\n")},
	}
	r, err := onair.New(onair.ModeFile, onair.WithFS(fsys))
	require.NoError(t, err)
	ctx := context.Background()

	res, err := r.Translate(ctx, "en", "a.b")
	require.NoError(t, err)
	require.Equal(t, "hello", res.Value)

	res, err = r.Translate(ctx, "de", "a.c", onair.WithDefault("d"))
	require.NoError(t, err)
	require.Equal(t, onair.Result{Value: "d", Found: true, Tier: tree.TierDefault}, res)

	_, err = r.Translate(ctx, "en", "")
	require.ErrorIs(t, err, onair.ErrInvalidKeyPath)

	locales, err := r.AvailableLocales(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"de", "en"}, locales)

	fsys["en.yml"] = &fstest.MapFile{Data: []byte("a:\n  b: hi\n")}
	require.NoError(t, r.ReloadLocale(ctx, "en"))

	res, err = r.Translate(ctx, "en", "a.b")
	require.NoError(t, err)
	require.Equal(t, "hi", res.Value)
}

func TestRouter_FileModeLoadError(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{"en.json": {Data: []byte(`{"a":[1]}`)}}

	r, err := onair.New(onair.ModeFile, onair.WithFS(fsys))
	require.NoError(t, err)
	res, err := r.Translate(context.Background(), "en", "a")
	require.NoError(t, err)
	require.False(t, res.Found)

	r, err = onair.New(onair.ModeFile, onair.WithFS(fsys), onair.WithRaiseOnLoadError(true))
	require.NoError(t, err)
	_, err = r.Translate(context.Background(), "en", "a")
	require.ErrorIs(t, err, onair.ErrLoadFailed)
	require.ErrorIs(t, err, tree.ErrMalformed)
}

func TestRouter_PeerInvalidation(t *testing.T) {
	t.Parallel()

	st := store.NewMemory(map[string]tree.Tree{"en": {"k": "v1"}, "de": {"k": "d1"}})
	shared := cache.NewMemory[tree.Tree]()
	defer shared.Close()
	bus := invalidation.NewMemory()

	a := newDatabaseRouter(t, st, onair.WithSharedCache(shared), onair.WithInvalidationBus(bus))
	b := newDatabaseRouter(t, st, onair.WithSharedCache(shared), onair.WithInvalidationBus(bus))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = a.Listen(ctx) }()
	go func() { _ = b.Listen(ctx) }()
	require.Eventually(t, func() bool { return bus.Subscribers() == 2 }, time.Second, time.Millisecond)

	for _, r := range []*onair.Router{a, b} {
		res, err := r.Translate(ctx, "en", "k")
		require.NoError(t, err)
		require.Equal(t, "v1", res.Value)

		res, err = r.Translate(ctx, "de", "k")
		require.NoError(t, err)
		require.Equal(t, "d1", res.Value)
	}

	require.NoError(t, st.Put(ctx, "en", tree.Tree{"k": "v2"}))
	require.NoError(t, st.Put(ctx, "de", tree.Tree{"k": "d2"}))

	// Without invalidation b keeps serving its loaded tree.
	res, err := b.Translate(ctx, "en", "k")
	require.NoError(t, err)
	require.Equal(t, "v1", res.Value)

	require.NoError(t, a.ReloadLocale(ctx, "en"))

	res, err = b.Translate(ctx, "en", "k")
	require.NoError(t, err)
	require.Equal(t, "v2", res.Value)

	require.NoError(t, a.ReloadAll(ctx))

	res, err = b.Translate(ctx, "de", "k")
	require.NoError(t, err)
	require.Equal(t, "d2", res.Value)
}

func TestRouter_Listen(t *testing.T) {
	t.Parallel()

	r := newDatabaseRouter(t, store.NewMemory(nil))
	require.ErrorIs(t, r.Listen(context.Background()), onair.ErrNoInvalidationBus)
}

func TestRouter_ReloadAllWarm(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	st := store.NewMemory(map[string]tree.Tree{"uk": {"k": "v"}, "en": {"k": "v"}})
	r := newDatabaseRouter(t, st, onair.WithDefaultLocale("uk"), onair.WithMetrics(reg))
	ctx := context.Background()

	_, err := r.Translate(ctx, "en", "k")
	require.NoError(t, err)
	require.NoError(t, r.ReloadAll(ctx, onair.WithWarm(true)))

	expected := `
# HELP onair_loaded_locales Locales currently held in memory
# TYPE onair_loaded_locales gauge
onair_loaded_locales 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "onair_loaded_locales"))
}

func TestRouter_StartRefresh(t *testing.T) {
	t.Parallel()

	r := newDatabaseRouter(t, store.NewMemory(nil))

	_, err := r.StartRefresh("not a schedule")
	require.ErrorIs(t, err, onair.ErrInvalidSchedule)

	stop, err := r.StartRefresh("@every 1h")
	require.NoError(t, err)
	stop()
}
