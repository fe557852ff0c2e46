// Package events is a small in-process pub/sub bus decoupling booking
// actions from the admin-notification side of the bot.
package events

import (
	"sync"
	"time"
)

// Booking lifecycle event types.
const (
	TypeBookingCreated     = "booking.created"
	TypeBookingRescheduled = "booking.rescheduled"
	TypeBookingCanceled    = "booking.canceled"
)

// Event is a lightweight domain event.
type Event struct {
	Type      string
	Payload   interface{}
	CreatedAt time.Time
}

// Handler reacts to an event. Handlers run synchronously on the
// publisher's goroutine; the subscriber decides its own concurrency.
type Handler func(Event)

// Bus provides in-process pub/sub.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]Handler
}

func NewBus() *Bus {
	return &Bus{subscribers: make(map[string][]Handler)}
}

// Subscribe registers a handler for a given event type.
func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		handler(event)
	}
}
