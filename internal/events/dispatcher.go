package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownEventType is returned by Publish for a type outside AllEventTypes.
var ErrUnknownEventType = errors.New("unknown event type")

// EventHandler reacts to a user or subscription change.
type EventHandler func(context.Context, Event) error

// Dispatcher fans domain events out to in-process listeners.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

type inMemoryDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
}

// NewInMemoryDispatcher returns a synchronous dispatcher with one listener
// slot per known event type.
func NewInMemoryDispatcher() Dispatcher {
	listeners := make(map[EventType][]EventHandler, len(AllEventTypes))
	for _, eventType := range AllEventTypes {
		listeners[eventType] = nil
	}
	return &inMemoryDispatcher{listeners: listeners}
}

// Publish runs every listener for event.Type in subscription order. A failing
// or panicking listener does not stop the others; failures are joined.
func (d *inMemoryDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	handlers, known := d.listeners[event.Type]
	handlers = append([]EventHandler(nil), handlers...)
	d.mu.RUnlock()

	if !known {
		return fmt.Errorf("%w: %q", ErrUnknownEventType, event.Type)
	}

	var errs []error
	for i, handler := range handlers {
		if err := invoke(ctx, handler, event); err != nil {
			errs = append(errs, fmt.Errorf("listener %d for %s %d: %w", i, event.Type, event.ResourceID, err))
		}
	}
	return errors.Join(errs...)
}

func invoke(ctx context.Context, handler EventHandler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listener panic: %v", r)
		}
	}()
	return handler(ctx, event)
}

// Subscribe registers handler for eventType.
func (d *inMemoryDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}
