package integration

import (
	"github.com/google/uuid"
	"github.com/obralink/backend/internal/domain/shared"
)

// Audit event types emitted by the integration context
const (
	EventTypeIntegrationDispatched = "integration.dispatched"
	EventTypeIntegrationRetried    = "integration.retried"
	EventTypeIntegrationAccepted   = "integration.accepted"
	EventTypeIntegrationRejected   = "integration.rejected"
	EventTypeIntegrationCancelled  = "integration.cancelled"
	EventTypeWebhookInvalidSig     = "webhook.received.invalid_signature"
)

// AuditEventTypes lists every event type written to the audit trail
var AuditEventTypes = []string{
	EventTypeIntegrationDispatched,
	EventTypeIntegrationRetried,
	EventTypeIntegrationAccepted,
	EventTypeIntegrationRejected,
	EventTypeIntegrationCancelled,
	EventTypeWebhookInvalidSig,
}

// AuditEvent is implemented by events that carry an audit record
type AuditEvent interface {
	shared.DomainEvent
	AuditJobID() uuid.UUID
	AuditTraceID() string
	AuditDetail() string
}

// JobEvent is raised on integration job transitions
type JobEvent struct {
	shared.EventEnvelope
	JobID    uuid.UUID    `json:"jobId"`
	TraceID  string       `json:"traceId"`
	Platform PlatformCode `json:"platform"`
	SiteCode string       `json:"siteCode"`
	State    JobState     `json:"state"`
	Attempts int          `json:"attempts"`
	Detail   string       `json:"detail"`
}

// NewJobEvent snapshots the job into an event of the given type
func NewJobEvent(eventType string, job *IntegrationJob, detail string) *JobEvent {
	return &JobEvent{
		EventEnvelope: shared.NewEventEnvelope(eventType, AggregateTypeIntegrationJob, job.ID, job.TenantID),
		JobID:         job.ID,
		TraceID:       job.TraceID,
		Platform:      job.Platform,
		SiteCode:      job.SiteCode,
		State:         job.State,
		Attempts:      job.Attempts,
		Detail:        detail,
	}
}

func (e *JobEvent) AuditJobID() uuid.UUID { return e.JobID }
func (e *JobEvent) AuditTraceID() string  { return e.TraceID }
func (e *JobEvent) AuditDetail() string   { return e.Detail }

// WebhookSignatureRejectedEvent is raised when an inbound webhook fails verification.
// Tenant and job are unknown because the body is untrusted.
type WebhookSignatureRejectedEvent struct {
	shared.EventEnvelope
	Platform PlatformCode `json:"platform"`
	Detail   string       `json:"detail"`
}

// NewWebhookSignatureRejectedEvent creates the audit event for a bad signature
func NewWebhookSignatureRejectedEvent(platform PlatformCode, detail string) *WebhookSignatureRejectedEvent {
	return &WebhookSignatureRejectedEvent{
		EventEnvelope: shared.NewEventEnvelope(EventTypeWebhookInvalidSig, "Webhook", uuid.Nil, uuid.Nil),
		Platform:      platform,
		Detail:        detail,
	}
}

func (e *WebhookSignatureRejectedEvent) AuditJobID() uuid.UUID { return uuid.Nil }
func (e *WebhookSignatureRejectedEvent) AuditTraceID() string  { return "" }
func (e *WebhookSignatureRejectedEvent) AuditDetail() string {
	return string(e.Platform) + ": " + e.Detail
}

var (
	_ AuditEvent = (*JobEvent)(nil)
	_ AuditEvent = (*WebhookSignatureRejectedEvent)(nil)
)
