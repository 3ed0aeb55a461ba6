package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/onair"
	"github.com/dmitrymomot/onair/internal/httpapi"
	"github.com/dmitrymomot/onair/pkg/health"
	"github.com/dmitrymomot/onair/pkg/store"
	"github.com/dmitrymomot/onair/pkg/tree"
)

func newRouter(t *testing.T, opts ...onair.Option) *onair.Router {
	t.Helper()

	st := store.NewMemory(map[string]tree.Tree{
		"en":    {"greeting": "Hello", "user": tree.Tree{"name": "Name"}},
		"de":    {"greeting": "Hallo"},
		"pt-BR": {"greeting": "Olá"},
	})
	r, err := onair.New(onair.ModeDatabase, append([]onair.Option{onair.WithStore(st)}, opts...)...)
	require.NoError(t, err)
	return r
}

func do(t *testing.T, h http.Handler, method, target string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestTranslate(t *testing.T) {
	t.Parallel()

	h := httpapi.New(newRouter(t))

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		rec := do(t, h, http.MethodGet, "/v1/translate/en?key=user.name", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, httpapi.TranslationResponse{
			Locale: "en", Key: "user.name", Value: "Name", Found: true, Tier: "memory",
		}, decode[httpapi.TranslationResponse](t, rec))
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()

		rec := do(t, h, http.MethodGet, "/v1/translate/de?key=user.name", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[httpapi.TranslationResponse](t, rec)
		require.False(t, resp.Found)
		require.Nil(t, resp.Value)
	})

	t.Run("default", func(t *testing.T) {
		t.Parallel()

		rec := do(t, h, http.MethodGet, "/v1/translate/de?key=user.name&default=Nutzer", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[httpapi.TranslationResponse](t, rec)
		require.Equal(t, "Nutzer", resp.Value)
		require.Equal(t, "default", resp.Tier)
	})

	t.Run("invalid key", func(t *testing.T) {
		t.Parallel()

		for _, target := range []string{"/v1/translate/en", "/v1/translate/en?key=a..b"} {
			rec := do(t, h, http.MethodGet, target, nil)
			require.Equal(t, http.StatusBadRequest, rec.Code, target)
			require.NotEmpty(t, decode[httpapi.ErrorResponse](t, rec).Error)
		}
	})

	t.Run("request id", func(t *testing.T) {
		t.Parallel()

		rec := do(t, h, http.MethodGet, "/v1/translate/en?key=greeting", map[string]string{"X-Request-ID": "abc"})
		require.Equal(t, "abc", rec.Header().Get("X-Request-ID"))

		rec = do(t, h, http.MethodGet, "/v1/translate/en?key=greeting", nil)
		require.Len(t, rec.Header().Get("X-Request-ID"), 36)
	})
}

func TestTranslate_AcceptLanguage(t *testing.T) {
	t.Parallel()

	h := httpapi.New(newRouter(t), httpapi.WithDefaultLocale("en"))

	tests := []struct {
		header string
		want   string
	}{
		{"de-DE,de;q=0.9,en;q=0.5", "Hallo"},
		{"pt-BR", "Olá"},
		{"ja", "Hello"},
		{"", "Hello"},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			t.Parallel()

			rec := do(t, h, http.MethodGet, "/v1/translate?key=greeting", map[string]string{"Accept-Language": tt.header})
			require.Equal(t, http.StatusOK, rec.Code)
			require.Equal(t, tt.want, decode[httpapi.TranslationResponse](t, rec).Value)
		})
	}
}

// listCountingStore counts locale list queries.
type listCountingStore struct {
	*store.Memory
	lists atomic.Int64
}

func (s *listCountingStore) ListLocales(ctx context.Context) ([]string, error) {
	s.lists.Add(1)
	return s.Memory.ListLocales(ctx)
}

func TestTranslate_AcceptLanguageReusesLocales(t *testing.T) {
	t.Parallel()

	st := &listCountingStore{Memory: store.NewMemory(map[string]tree.Tree{
		"en": {"greeting": "Hello"},
		"de": {"greeting": "Hallo"},
	})}
	r, err := onair.New(onair.ModeDatabase, onair.WithStore(st))
	require.NoError(t, err)
	h := httpapi.New(r)

	for _, header := range []string{"de", "en", "de-AT", "fr", "de"} {
		rec := do(t, h, http.MethodGet, "/v1/translate?key=greeting", map[string]string{"Accept-Language": header})
		require.Equal(t, http.StatusOK, rec.Code)
	}
	require.Equal(t, int64(1), st.lists.Load())

	rec := do(t, h, http.MethodPost, "/v1/locales/de/reload", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/v1/translate?key=greeting", map[string]string{"Accept-Language": "de"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Hallo", decode[httpapi.TranslationResponse](t, rec).Value)
	require.Equal(t, int64(2), st.lists.Load())
}

func TestLocales(t *testing.T) {
	t.Parallel()

	h := httpapi.New(newRouter(t))
	rec := do(t, h, http.MethodGet, "/v1/locales", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"de", "en", "pt-BR"}, decode[httpapi.LocalesResponse](t, rec).Locales)
}

func TestReload(t *testing.T) {
	t.Parallel()

	h := httpapi.New(newRouter(t))

	rec := do(t, h, http.MethodPost, "/v1/reload?warm=true", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodPost, "/v1/locales/de/reload", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/v1/reload", nil)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// failingStore fails every read.
type failingStore struct{}

var errDown = errors.New("postgres down")

func (failingStore) FetchTree(context.Context, string) (tree.Tree, error) { return nil, errDown }

func (failingStore) FetchKey(context.Context, string, string) (any, bool, error) {
	return nil, false, errDown
}

func (failingStore) ListLocales(context.Context) ([]string, error) { return nil, errDown }

func TestStoreFailures(t *testing.T) {
	t.Parallel()

	t.Run("lookups degrade to missing", func(t *testing.T) {
		t.Parallel()

		r, err := onair.New(onair.ModeDatabase, onair.WithStore(failingStore{}))
		require.NoError(t, err)
		h := httpapi.New(r)

		rec := do(t, h, http.MethodGet, "/v1/translate/en?key=greeting", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.False(t, decode[httpapi.TranslationResponse](t, rec).Found)
	})

	t.Run("raising maps to 503", func(t *testing.T) {
		t.Parallel()

		r, err := onair.New(onair.ModeDatabase, onair.WithStore(failingStore{}), onair.WithRaiseOnLoadError(true))
		require.NoError(t, err)
		h := httpapi.New(r)

		rec := do(t, h, http.MethodGet, "/v1/translate/en?key=greeting", nil)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		rec = do(t, h, http.MethodPost, "/v1/reload?warm=true", nil)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("locale listing failure is 500", func(t *testing.T) {
		t.Parallel()

		r, err := onair.New(onair.ModeDatabase, onair.WithStore(failingStore{}))
		require.NoError(t, err)
		rec := do(t, httpapi.New(r), http.MethodGet, "/v1/locales", nil)
		require.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestHealthAndMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	checker := health.NewChecker().Add("store", func(context.Context) error { return errDown })

	h := httpapi.New(newRouter(t, onair.WithMetrics(reg)),
		httpapi.WithChecker(checker),
		httpapi.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
	)

	require.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health/live", nil).Code)
	require.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodGet, "/health/ready", nil).Code)

	require.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/v1/translate/en?key=greeting", nil).Code)

	rec := do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `onair_lookups_total{result="hit",tier="memory"} 1`)
}

func TestAccessLog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	h := httpapi.New(newRouter(t), httpapi.WithLogger(log))

	do(t, h, http.MethodGet, "/v1/translate/en?key=greeting", nil)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "http request", rec["msg"])
	require.Equal(t, "/v1/translate/en", rec["path"])
	require.InDelta(t, 200, rec["status"], 0)
}
