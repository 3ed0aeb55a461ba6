package invalidation

import (
	"context"
	"sync"
)

// Memory is an in-process Bus. Publish delivers synchronously to every
// subscriber, including the publisher's own.
type Memory struct {
	mu   sync.RWMutex
	subs map[int]Handler
	next int
}

// NewMemory returns an empty in-process bus.
func NewMemory() *Memory {
	return &Memory{subs: make(map[int]Handler)}
}

func (m *Memory) Publish(ctx context.Context, e Event) error {
	if err := e.Validate(); err != nil {
		return err
	}

	m.mu.RLock()
	handlers := make([]Handler, 0, len(m.subs))
	for _, h := range m.subs {
		handlers = append(handlers, h)
	}
	m.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, e)
	}
	return nil
}

// Subscribe blocks until ctx is done.
func (m *Memory) Subscribe(ctx context.Context, h Handler) error {
	m.mu.Lock()
	id := m.next
	m.next++
	m.subs[id] = h
	m.mu.Unlock()

	<-ctx.Done()

	m.mu.Lock()
	delete(m.subs, id)
	m.mu.Unlock()
	return nil
}

// Subscribers returns the number of active subscriptions.
func (m *Memory) Subscribers() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subs)
}

var _ Bus = (*Memory)(nil)
