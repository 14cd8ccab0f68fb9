package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the type of event (created, updated, deleted)
type EventType string

const (
	EventTypeCreated EventType = "created"
	EventTypeUpdated EventType = "updated"
	EventTypeDeleted EventType = "deleted"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeTransaction EntityType = "transaction"
	EntityTypeJournal     EntityType = "journal"
	EntityTypeRepayment   EntityType = "repayment"
	EntityTypePayoff      EntityType = "payoff"
)

// Additional event types for specific events
const (
	EventTypeLinked   EventType = "linked"
	EventTypeUnlinked EventType = "unlinked"
	EventTypeApproved EventType = "approved"
	EventTypeRejected EventType = "rejected"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "transaction.created"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "transaction"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionCreated creates a transaction.created event
func TransactionCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeTransaction, payload)
}

// TransactionUpdated creates a transaction.updated event
func TransactionUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeTransaction, payload)
}

// TransactionDeleted creates a transaction.deleted event
func TransactionDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeTransaction, payload)
}

// TransactionApproved creates a transaction.approved event
func TransactionApproved(payload interface{}) Event {
	return NewEvent(EventTypeApproved, EntityTypeTransaction, payload)
}

// TransactionRejected creates a transaction.rejected event
func TransactionRejected(payload interface{}) Event {
	return NewEvent(EventTypeRejected, EntityTypeTransaction, payload)
}

// JournalUpdated creates a journal.updated event
func JournalUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeJournal, payload)
}

// RepaymentCreated creates a repayment.created event
func RepaymentCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeRepayment, payload)
}

// PayoffLinked creates a payoff.linked event
func PayoffLinked(payload interface{}) Event {
	return NewEvent(EventTypeLinked, EntityTypePayoff, payload)
}

// PayoffUnlinked creates a payoff.unlinked event
func PayoffUnlinked(payload interface{}) Event {
	return NewEvent(EventTypeUnlinked, EntityTypePayoff, payload)
}
