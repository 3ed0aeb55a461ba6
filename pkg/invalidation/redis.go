package invalidation

import (
	"context"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/onair/pkg/logger"
)

// Redis is a Bus over Redis pub/sub.
type Redis struct {
	client  redis.UniversalClient
	channel string
	log     *slog.Logger
}

// Option configures a Redis bus.
type Option func(*Redis)

// WithLogger sets the logger used for dropped messages.
func WithLogger(log *slog.Logger) Option {
	return func(r *Redis) {
		if log != nil {
			r.log = log
		}
	}
}

// NewRedis returns a bus publishing on channel. An empty channel means
// DefaultChannel.
func NewRedis(client redis.UniversalClient, channel string, opts ...Option) *Redis {
	if channel == "" {
		channel = DefaultChannel
	}
	r := &Redis{
		client:  client,
		channel: channel,
		log:     logger.NewNope(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Channel returns the pub/sub channel name.
func (r *Redis) Channel() string {
	return r.channel
}

func (r *Redis) Publish(ctx context.Context, e Event) error {
	data, err := Encode(e)
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		return errors.Join(ErrPublishFailed, err)
	}
	return nil
}

// Subscribe blocks until ctx is done. Malformed messages are logged and
// skipped.
func (r *Redis) Subscribe(ctx context.Context, h Handler) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	// Wait for the subscription confirmation so no event published after
	// Subscribe starts listening is lost.
	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return errors.Join(ErrSubscribeFailed, err)
	}

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			r.dispatch(ctx, []byte(msg.Payload), h)
		}
	}
}

func (r *Redis) dispatch(ctx context.Context, payload []byte, h Handler) {
	e, err := Decode(payload)
	if err != nil {
		r.log.WarnContext(ctx, "dropping invalidation message",
			"channel", r.channel,
			"error", err,
		)
		return
	}
	h(ctx, e)
}

var _ Bus = (*Redis)(nil)
