package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OutboxStatus is where an outbox row is in its relay to the audit log
type OutboxStatus string

// Rows move PENDING -> PROCESSING -> SENT, or through FAILED back to PROCESSING
// until MaxRetries is spent and they stop at DEAD.
const (
	OutboxStatusPending    OutboxStatus = "PENDING"
	OutboxStatusProcessing OutboxStatus = "PROCESSING"
	OutboxStatusSent       OutboxStatus = "SENT"
	OutboxStatusFailed     OutboxStatus = "FAILED"
	OutboxStatusDead       OutboxStatus = "DEAD"
)

const (
	DefaultOutboxMaxRetries = 5
	// relay retries wait 1s, 2s, 4s... capped at outboxMaxDelay
	outboxBaseDelay = time.Second
	outboxMaxDelay  = time.Minute
)

// OutboxEntry is one serialized event waiting to be relayed
type OutboxEntry struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	EventID       uuid.UUID
	EventType     string
	AggregateID   uuid.UUID
	AggregateType string
	Payload       []byte
	Status        OutboxStatus
	RetryCount    int
	MaxRetries    int
	LastError     string
	NextRetryAt   *time.Time
	ProcessedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewOutboxEntry copies the event's identity next to its encoded payload
func NewOutboxEntry(event DomainEvent, payload []byte) *OutboxEntry {
	now := time.Now().UTC()
	return &OutboxEntry{
		ID:            uuid.New(),
		TenantID:      event.TenantID(),
		EventID:       event.EventID(),
		EventType:     event.EventType(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		Payload:       payload,
		Status:        OutboxStatusPending,
		MaxRetries:    DefaultOutboxMaxRetries,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (e *OutboxEntry) MarkSent(now time.Time) {
	e.Status = OutboxStatusSent
	e.ProcessedAt = &now
	e.NextRetryAt = nil
	e.UpdatedAt = now
}

// MarkFailed records a relay failure and schedules the next attempt, or parks
// the entry as DEAD once MaxRetries failures have accumulated
func (e *OutboxEntry) MarkFailed(reason string, now time.Time) {
	e.RetryCount++
	e.LastError = reason
	e.UpdatedAt = now
	e.NextRetryAt = nil
	if e.RetryCount >= e.MaxRetries {
		e.Status = OutboxStatusDead
		return
	}
	e.Status = OutboxStatusFailed
	next := now.Add(OutboxRetryDelay(e.RetryCount))
	e.NextRetryAt = &next
}

func (e *OutboxEntry) IsDead() bool { return e.Status == OutboxStatusDead }

// OutboxRetryDelay is the wait after the n-th failed relay (n >= 1)
func OutboxRetryDelay(n int) time.Duration {
	d := outboxBaseDelay
	for i := 1; i < n && d < outboxMaxDelay; i++ {
		d *= 2
	}
	return min(d, outboxMaxDelay)
}

// OutboxRepository stores outbox rows for the relay
type OutboxRepository interface {
	Save(ctx context.Context, entries ...*OutboxEntry) error
	// ClaimBatch marks up to limit deliverable rows PROCESSING and returns them.
	// PROCESSING rows untouched for longer than stale count as deliverable again.
	ClaimBatch(ctx context.Context, now time.Time, stale time.Duration, limit int) ([]*OutboxEntry, error)
	Update(ctx context.Context, entry *OutboxEntry) error
	DeleteSentBefore(ctx context.Context, before time.Time) (int64, error)
}
