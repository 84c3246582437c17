package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact recorded by an aggregate. Events are written to the
// outbox in the same transaction as the aggregate and relayed to the bus later.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
	TenantID() uuid.UUID
}

// EventEnvelope is embedded by concrete events and serialized inline with them
type EventEnvelope struct {
	ID        uuid.UUID `json:"eventId"`
	Type      string    `json:"eventType"`
	At        time.Time `json:"occurredAt"`
	Aggregate uuid.UUID `json:"aggregateId"`
	Kind      string    `json:"aggregateType"`
	Tenant    uuid.UUID `json:"tenantId"`
}

func (e *EventEnvelope) EventID() uuid.UUID     { return e.ID }
func (e *EventEnvelope) EventType() string      { return e.Type }
func (e *EventEnvelope) OccurredAt() time.Time  { return e.At }
func (e *EventEnvelope) AggregateID() uuid.UUID { return e.Aggregate }
func (e *EventEnvelope) AggregateType() string  { return e.Kind }
func (e *EventEnvelope) TenantID() uuid.UUID    { return e.Tenant }

// NewEventEnvelope stamps a new event ID and the current UTC time.
// aggregateID and tenantID may be uuid.Nil for events raised outside an aggregate.
func NewEventEnvelope(eventType, aggregateType string, aggregateID, tenantID uuid.UUID) EventEnvelope {
	return EventEnvelope{
		ID:        uuid.New(),
		Type:      eventType,
		At:        time.Now().UTC(),
		Aggregate: aggregateID,
		Kind:      aggregateType,
		Tenant:    tenantID,
	}
}
