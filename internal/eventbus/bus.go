// Package eventbus provides an in-process pub/sub bus for variant events.
// Services record events after the store write; subscribers process them on
// a single consumer goroutine.
package eventbus

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/event"
)

// ErrDropped is returned by Record when the event could not be queued.
var ErrDropped = errors.New("eventbus: event dropped")

// Handler processes a domain event.
type Handler interface {
	HandleEvent(ctx context.Context, evt event.DomainEvent) error
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, evt event.DomainEvent) error

func (f HandlerFunc) HandleEvent(ctx context.Context, evt event.DomainEvent) error {
	return f(ctx, evt)
}

// Bus is a buffered in-process event bus. Events are dispatched to every
// subscriber in subscription order by one consumer goroutine, so handlers
// never run concurrently with each other.
type Bus struct {
	mu          sync.RWMutex
	subscribers []namedHandler
	events      chan event.DomainEvent
	done        chan struct{}
	stopped     bool
}

type namedHandler struct {
	name    string
	handler Handler
}

// New creates a Bus with the given channel buffer size.
func New(bufSize int) *Bus {
	if bufSize < 1 {
		bufSize = 256
	}
	return &Bus{
		events: make(chan event.DomainEvent, bufSize),
		done:   make(chan struct{}),
	}
}

// Subscribe registers a named handler. Must be called before Start.
func (b *Bus) Subscribe(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, namedHandler{name: name, handler: h})
}

// Publish queues an event without blocking. If the buffer is full or the
// bus is stopped the event is dropped with a warning.
func (b *Bus) Publish(_ context.Context, evt event.DomainEvent) {
	b.enqueue(evt)
}

// Record implements event.Recorder.
func (b *Bus) Record(_ context.Context, evt event.DomainEvent) error {
	if !b.enqueue(evt) {
		return ErrDropped
	}
	return nil
}

func (b *Bus) enqueue(evt event.DomainEvent) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.stopped {
		log.Warn().Str("event_type", evt.EventType).Str("event_id", evt.ID).Msg("eventbus: stopped, dropping event")
		return false
	}
	select {
	case b.events <- evt:
		return true
	default:
		log.Warn().Str("event_type", evt.EventType).Str("event_id", evt.ID).Msg("eventbus: buffer full, dropping event")
		return false
	}
}

// Start begins the consumer goroutine. It runs until Stop is called or ctx
// is cancelled; either way queued events are drained first.
func (b *Bus) Start(ctx context.Context) {
	go func() {
		defer close(b.done)
		for {
			select {
			case evt, ok := <-b.events:
				if !ok {
					return
				}
				b.dispatch(ctx, evt)
			case <-ctx.Done():
				for {
					select {
					case evt, ok := <-b.events:
						if !ok {
							return
						}
						b.dispatch(ctx, evt)
					default:
						return
					}
				}
			}
		}
	}()
}

// Stop closes the bus and waits for the consumer goroutine to finish.
// Start must have been called.
func (b *Bus) Stop() {
	b.mu.Lock()
	if !b.stopped {
		b.stopped = true
		close(b.events)
	}
	b.mu.Unlock()
	<-b.done
}

func (b *Bus) dispatch(ctx context.Context, evt event.DomainEvent) {
	b.mu.RLock()
	subs := b.subscribers
	b.mu.RUnlock()

	for _, s := range subs {
		if err := s.handler.HandleEvent(ctx, evt); err != nil {
			log.Error().Err(err).Str("handler", s.name).Str("event_type", evt.EventType).Msg("eventbus: handler error")
		}
	}
}
