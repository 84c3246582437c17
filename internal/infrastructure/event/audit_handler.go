package event

import (
	"context"
	"fmt"

	"github.com/obralink/backend/internal/domain/integration"
	"github.com/obralink/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AuditLogHandler appends integration events to the audit log and mirrors
// them to the structured log
type AuditLogHandler struct {
	repo   integration.AuditLogRepository
	logger *zap.Logger
}

// NewAuditLogHandler creates the audit sink handler
func NewAuditLogHandler(repo integration.AuditLogRepository, logger *zap.Logger) *AuditLogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditLogHandler{repo: repo, logger: logger.Named("audit")}
}

// EventTypes returns the integration audit event types
func (h *AuditLogHandler) EventTypes() []string {
	return integration.AuditEventTypes
}

// Handle stores the event as an audit entry
func (h *AuditLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	auditEvent, ok := event.(integration.AuditEvent)
	if !ok {
		return fmt.Errorf("event %s does not carry an audit record", event.EventType())
	}
	entry := integration.NewAuditEntry(auditEvent)

	h.logger.Info("Integration audit event",
		zap.String("event_type", entry.EventType),
		zap.String("tenant_id", entry.TenantID.String()),
		zap.String("job_id", entry.JobID.String()),
		zap.String("trace_id", entry.TraceID),
		zap.String("platform", string(entry.Platform)),
		zap.String("state", string(entry.State)),
		zap.String("detail", entry.Detail),
	)
	return h.repo.Append(ctx, entry)
}

var _ shared.EventHandler = (*AuditLogHandler)(nil)
