package integration

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuditEntry is one append-only record of the integration audit trail
type AuditEntry struct {
	ID         uuid.UUID    `json:"id"`
	EventID    uuid.UUID    `json:"eventId"`
	TenantID   uuid.UUID    `json:"tenantId"`
	JobID      uuid.UUID    `json:"jobId"`
	TraceID    string       `json:"traceId,omitempty"`
	Platform   PlatformCode `json:"platform,omitempty"`
	EventType  string       `json:"eventType"`
	State      JobState     `json:"state,omitempty"`
	Attempt    int          `json:"attempt,omitempty"`
	Detail     string       `json:"detail,omitempty"`
	OccurredAt time.Time    `json:"occurredAt"`
}

// NewAuditEntry flattens an audit event into a record
func NewAuditEntry(event AuditEvent) *AuditEntry {
	entry := &AuditEntry{
		ID:         uuid.New(),
		EventID:    event.EventID(),
		TenantID:   event.TenantID(),
		JobID:      event.AuditJobID(),
		TraceID:    event.AuditTraceID(),
		EventType:  event.EventType(),
		Detail:     event.AuditDetail(),
		OccurredAt: event.OccurredAt(),
	}
	switch e := event.(type) {
	case *JobEvent:
		entry.Platform = e.Platform
		entry.State = e.State
		entry.Attempt = e.Attempts
	case *WebhookSignatureRejectedEvent:
		entry.Platform = e.Platform
	}
	return entry
}

// AuditLogRepository is the append-only audit sink
type AuditLogRepository interface {
	// Append stores an entry; appending the same event twice keeps one record
	Append(ctx context.Context, entry *AuditEntry) error
	// FindByJob returns a job's entries in occurrence order
	FindByJob(ctx context.Context, tenantID, jobID uuid.UUID) ([]AuditEntry, error)
}
