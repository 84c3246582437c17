package event

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/obralink/backend/internal/domain/integration"
	"github.com/obralink/backend/internal/domain/shared"
)

// EventSerializer encodes audit events for the outbox and decodes them for the
// relay. Payloads carry no Go type, so decoding needs a constructor per event type.
type EventSerializer struct {
	mu    sync.RWMutex
	ctors map[string]func() shared.DomainEvent
}

func NewEventSerializer() *EventSerializer {
	return &EventSerializer{ctors: make(map[string]func() shared.DomainEvent)}
}

// Register sets the constructor used to decode eventType. A later call replaces an earlier one.
func (s *EventSerializer) Register(eventType string, ctor func() shared.DomainEvent) {
	s.mu.Lock()
	s.ctors[eventType] = ctor
	s.mu.Unlock()
}

// RegisterIntegrationEvents wires every audit event type of the integration context
func RegisterIntegrationEvents(s *EventSerializer) {
	for _, t := range integration.AuditEventTypes {
		if t == integration.EventTypeWebhookInvalidSig {
			s.Register(t, func() shared.DomainEvent { return &integration.WebhookSignatureRejectedEvent{} })
			continue
		}
		s.Register(t, func() shared.DomainEvent { return &integration.JobEvent{} })
	}
}

func (s *EventSerializer) Serialize(event shared.DomainEvent) ([]byte, error) {
	return json.Marshal(event)
}

func (s *EventSerializer) Deserialize(eventType string, data []byte) (shared.DomainEvent, error) {
	s.mu.RLock()
	ctor, ok := s.ctors[eventType]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}
	event := ctor()
	if err := json.Unmarshal(data, event); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", eventType, err)
	}
	return event, nil
}

// IsRegistered reports whether the relay will be able to decode eventType
func (s *EventSerializer) IsRegistered(eventType string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ctors[eventType]
	return ok
}
