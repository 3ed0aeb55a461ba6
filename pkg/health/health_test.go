package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/onair/pkg/health"
)

func TestChecker_Run(t *testing.T) {
	t.Parallel()

	t.Run("no checks is healthy", func(t *testing.T) {
		t.Parallel()

		rep := health.NewChecker().Run(context.Background())
		require.True(t, rep.Healthy())
		require.Empty(t, rep.Checks)
	})

	t.Run("one failure makes the report unhealthy", func(t *testing.T) {
		t.Parallel()

		c := health.NewChecker().
			Add("postgres", func(context.Context) error { return nil }).
			Add("redis", func(context.Context) error { return errors.New("connection refused") }).
			Add("skipped", nil)

		rep := c.Run(context.Background())
		require.False(t, rep.Healthy())
		require.Len(t, rep.Checks, 2)
		require.Equal(t, health.StatusHealthy, rep.Checks["postgres"].Status)
		require.Equal(t, health.StatusUnhealthy, rep.Checks["redis"].Status)
		require.Equal(t, "connection refused", rep.Checks["redis"].Error)
	})

	t.Run("slow check times out", func(t *testing.T) {
		t.Parallel()

		c := health.NewChecker(health.WithTimeout(10*time.Millisecond)).
			Add("slow", func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			})

		rep := c.Run(context.Background())
		require.False(t, rep.Healthy())
		require.Contains(t, rep.Checks["slow"].Error, health.ErrCheckTimeout.Error())
	})
}

func TestHandlers(t *testing.T) {
	t.Parallel()

	t.Run("live", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		health.LiveHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "OK", rec.Body.String())
	})

	t.Run("ready plain text", func(t *testing.T) {
		t.Parallel()

		c := health.NewChecker().Add("store", func(context.Context) error { return errors.New("down") })

		rec := httptest.NewRecorder()
		c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.Equal(t, "Service Unavailable", rec.Body.String())
	})

	t.Run("ready json", func(t *testing.T) {
		t.Parallel()

		c := health.NewChecker().Add("store", func(context.Context) error { return nil })

		req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
		req.Header.Set("Accept", "application/json")
		rec := httptest.NewRecorder()
		c.ReadyHandler()(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var rep health.Report
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&rep))
		require.Equal(t, health.StatusHealthy, rep.Status)
		require.Equal(t, health.StatusHealthy, rep.Checks["store"].Status)
	})
}
