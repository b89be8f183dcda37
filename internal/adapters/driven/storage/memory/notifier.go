package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/jelly-cli/internal/core/domain"
	"github.com/custodia-labs/jelly-cli/internal/core/ports/driven"
)

// Ensure Broadcaster implements the interface.
var _ driven.Notifier = (*Broadcaster)(nil)

// Broadcaster is an in-process driven.Notifier.
// It records every event and fans them out to subscribers. Slow
// subscribers miss events rather than blocking the pipeline.
type Broadcaster struct {
	mu     sync.Mutex
	events []domain.Event
	subs   map[int]chan domain.Event
	nextID int
	closed bool
}

// NewBroadcaster creates a broadcaster with no subscribers.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan domain.Event)}
}

// Subscribe returns a channel receiving future events and a function that
// removes the subscription. The channel is closed on unsubscribe or Close.
func (b *Broadcaster) Subscribe(buffer int) (<-chan domain.Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan domain.Event, buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
}

// Notify records the event and delivers it to every subscriber.
func (b *Broadcaster) Notify(_ context.Context, event domain.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return domain.ErrNotifierClosed
	}

	b.events = append(b.events, event)
	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

// Events returns every event seen so far.
func (b *Broadcaster) Events() []domain.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.Event, len(b.events))
	copy(out, b.events)
	return out
}

// EventsFor returns the events raised for one jelly, in order.
func (b *Broadcaster) EventsFor(jellyID string) []domain.Event {
	var out []domain.Event
	for _, e := range b.Events() {
		if e.JellyID == jellyID {
			out = append(out, e)
		}
	}
	return out
}

// Close closes every subscription. Later Notify calls fail.
func (b *Broadcaster) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
	return nil
}
