package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeGiveawayCreated         EventType = "giveaway_created"
	EventTypeGiveawayClosed          EventType = "giveaway_closed"
	EventTypeConnectionStatusChanged EventType = "connection_status_changed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// GiveawayCreatedEvent represents a newly created giveaway
type GiveawayCreatedEvent struct {
	GiveawayID int64
	GuildID    int64
	ChannelID  int64
	Name       string
}

func (e GiveawayCreatedEvent) Type() EventType {
	return EventTypeGiveawayCreated
}

// GiveawayClosedEvent represents a giveaway that finished and drew winners
type GiveawayClosedEvent struct {
	GiveawayID  int64
	GuildID     int64
	ChannelID   int64
	WinnerCount int
	EntryCount  int
}

func (e GiveawayClosedEvent) Type() EventType {
	return EventTypeGiveawayClosed
}

// ConnectionStatusChangedEvent represents a server connection status transition
type ConnectionStatusChangedEvent struct {
	Nickname  string
	OldStatus string
	NewStatus string
}

func (e ConnectionStatusChangedEvent) Type() EventType {
	return EventTypeConnectionStatusChanged
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking
	for _, handler := range handlers {
		go func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType": event.Type(),
						"panic":     r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler)
	}
}
