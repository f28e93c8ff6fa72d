// Package event defines the domain events emitted when variants change and
// the recorder interface services use to emit them.
package event

import (
	"context"
	"sync"
)

// Recorder accepts domain events after the change they describe has been
// stored.
type Recorder interface {
	Record(ctx context.Context, evt DomainEvent) error
}

// Publisher sends domain events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, evt DomainEvent)
}

// MemoryRecorder keeps recorded events in order. If a Publisher is set,
// each event is also forwarded to it.
type MemoryRecorder struct {
	mu     sync.Mutex
	events []DomainEvent
	bus    Publisher
}

// NewMemoryRecorder creates an empty MemoryRecorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

// SetPublisher attaches an event bus.
func (r *MemoryRecorder) SetPublisher(p Publisher) {
	r.bus = p
}

func (r *MemoryRecorder) Record(ctx context.Context, evt DomainEvent) error {
	r.mu.Lock()
	r.events = append(r.events, evt)
	r.mu.Unlock()

	if r.bus != nil {
		r.bus.Publish(ctx, evt)
	}
	return nil
}

// Events returns a copy of the recorded events.
func (r *MemoryRecorder) Events() []DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]DomainEvent(nil), r.events...)
}
