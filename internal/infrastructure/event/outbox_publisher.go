package event

import (
	"context"
	"fmt"

	"github.com/obralink/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// OutboxPublisher writes domain events to the outbox. SaveEvents joins the
// caller's transaction; Publish writes standalone entries for events that are
// not tied to an aggregate change.
type OutboxPublisher struct {
	db         *gorm.DB
	serializer *EventSerializer
}

// NewOutboxPublisher creates a publisher. db is only used by Publish.
func NewOutboxPublisher(db *gorm.DB, serializer *EventSerializer) *OutboxPublisher {
	return &OutboxPublisher{db: db, serializer: serializer}
}

// SaveEvents implements shared.OutboxEventSaver
func (p *OutboxPublisher) SaveEvents(ctx context.Context, txProvider any, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	tx, ok := txProvider.(*gorm.DB)
	if !ok {
		return fmt.Errorf("txProvider must be a *gorm.DB, got %T", txProvider)
	}
	return p.write(ctx, tx, events)
}

// Publish implements shared.EventPublisher
func (p *OutboxPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	return p.write(ctx, p.db, events)
}

func (p *OutboxPublisher) write(ctx context.Context, db *gorm.DB, events []shared.DomainEvent) error {
	entries := make([]*shared.OutboxEntry, 0, len(events))
	for _, event := range events {
		if !p.serializer.IsRegistered(event.EventType()) {
			return fmt.Errorf("event type %s is not registered", event.EventType())
		}
		payload, err := p.serializer.Serialize(event)
		if err != nil {
			return fmt.Errorf("failed to serialize %s: %w", event.EventType(), err)
		}
		entries = append(entries, shared.NewOutboxEntry(event, payload))
	}
	return NewGormOutboxRepository(db).Save(ctx, entries...)
}

var (
	_ shared.OutboxEventSaver = (*OutboxPublisher)(nil)
	_ shared.EventPublisher   = (*OutboxPublisher)(nil)
)
