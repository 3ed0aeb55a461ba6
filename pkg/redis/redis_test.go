package redis_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/onair/pkg/redis"
)

func TestConnect_Validation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("empty URL", func(t *testing.T) {
		t.Parallel()

		client, err := redis.Connect(ctx, redis.Config{})
		require.ErrorIs(t, err, redis.ErrEmptyConnectionURL)
		require.Nil(t, client)
	})

	tests := []struct {
		name string
		url  string
	}{
		{"http scheme", "http://localhost:6379"},
		{"no scheme", "localhost:6379"},
		{"postgresql scheme", "postgresql://localhost:6379"},
		{"invalid port", "redis://localhost:notaport"},
		{"invalid database", "redis://localhost:6379/notanumber"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, err := redis.Connect(ctx, redis.Config{URL: tt.url})
			require.ErrorIs(t, err, redis.ErrFailedToParseURL)
			require.Nil(t, client)
		})
	}
}

func TestConnect_Unreachable(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := redis.Connect(ctx, redis.Config{
		URL:           "redis://127.0.0.1:1/0",
		DialTimeout:   50 * time.Millisecond,
		RetryAttempts: 2,
		RetryInterval: 10 * time.Millisecond,
	})
	require.ErrorIs(t, err, redis.ErrConnectionFailed)
}

func TestConfig_Enabled(t *testing.T) {
	t.Parallel()

	require.False(t, redis.Config{}.Enabled())
	require.True(t, redis.Config{URL: "redis://localhost:6379"}.Enabled())
}

func TestHealthcheck(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("nil client", func(t *testing.T) {
		t.Parallel()

		require.ErrorIs(t, redis.Healthcheck(nil)(ctx), redis.ErrHealthcheckFailed)
	})

	t.Run("ping ok", func(t *testing.T) {
		t.Parallel()

		client, mock := redismock.NewClientMock()
		mock.ExpectPing().SetVal("PONG")

		require.NoError(t, redis.Healthcheck(client)(ctx))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ping fails", func(t *testing.T) {
		t.Parallel()

		client, mock := redismock.NewClientMock()
		mock.ExpectPing().SetErr(errors.New("connection refused"))

		err := redis.Healthcheck(client)(ctx)
		require.ErrorIs(t, err, redis.ErrHealthcheckFailed)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestShutdown(t *testing.T) {
	t.Parallel()

	client, _ := redismock.NewClientMock()
	require.NoError(t, redis.Shutdown(client)(context.Background()))
}
