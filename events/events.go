package events

import (
	"context"
	"sync"

	"tipster/models"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeUserCreated    EventType = "user_created"
	EventTypeMatchSettled   EventType = "match_settled"
	EventTypeSeasonClosed   EventType = "season_closed"
	EventTypePointsAdjusted EventType = "points_adjusted"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// UserCreatedEvent represents a new user registration
type UserCreatedEvent struct {
	TelegramID int64
	Username   string
	Season     int
}

func (e UserCreatedEvent) Type() EventType {
	return EventTypeUserCreated
}

// MatchSettledEvent carries the settlement report for a finished match
type MatchSettledEvent struct {
	Report *models.SettlementReport
}

func (e MatchSettledEvent) Type() EventType {
	return EventTypeMatchSettled
}

// SeasonClosedEvent announces a season rollover
type SeasonClosedEvent struct {
	Rollover *models.SeasonRollover
}

func (e SeasonClosedEvent) Type() EventType {
	return EventTypeSeasonClosed
}

// PointsAdjustedEvent represents a manual points adjustment by an admin
type PointsAdjustedEvent struct {
	UserID   int64
	AdminID  int64
	Action   models.PointsAction
	OldTotal int64
	NewTotal int64
	Reason   string
}

func (e PointsAdjustedEvent) Type() EventType {
	return EventTypePointsAdjusted
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

	// Handlers run asynchronously: notification delivery must never block
	// or fail the state change that produced the event.
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus stashes events published during a unit of work and
// flushes them to the real bus only after the transaction commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush is called after a successful DB commit.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	// Events outlive the transaction context that produced them.
	eventCtx := context.Background()

	for _, ev := range b.pending {
		log.WithFields(log.Fields{
			"eventType": ev.Type(),
		}).Debug("Emitting committed event")
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard is called after a rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
