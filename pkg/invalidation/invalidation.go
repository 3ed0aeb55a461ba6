package invalidation

import (
	"context"
	"encoding/json"
	"errors"
)

// DefaultChannel is the Redis channel used when none is configured.
const DefaultChannel = "onair:invalidate"

// Event announces that translations were reloaded by one instance.
// Either All is set or Locale names the reloaded locale.
type Event struct {
	// Origin identifies the publishing instance so it can skip its own events.
	Origin string `json:"origin"`
	Locale string `json:"locale,omitempty"`
	All    bool   `json:"all,omitempty"`
}

// Handler receives events from a Bus.
type Handler func(ctx context.Context, e Event)

// Bus fans invalidation events out to every instance.
type Bus interface {
	Publish(ctx context.Context, e Event) error
	// Subscribe delivers events to h until ctx is done.
	Subscribe(ctx context.Context, h Handler) error
}

// Validate checks that the event names something to invalidate.
func (e Event) Validate() error {
	if e.Origin == "" {
		return errors.Join(ErrInvalidEvent, errors.New("missing origin"))
	}
	if !e.All && e.Locale == "" {
		return errors.Join(ErrInvalidEvent, errors.New("missing locale"))
	}
	return nil
}

// Encode returns the wire form of e.
func Encode(e Event) ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Join(ErrInvalidEvent, err)
	}
	return data, nil
}

// Decode parses and validates a wire message.
func Decode(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, errors.Join(ErrInvalidEvent, err)
	}
	if err := e.Validate(); err != nil {
		return Event{}, err
	}
	return e, nil
}
