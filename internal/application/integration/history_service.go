package integration

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/obralink/backend/internal/domain/integration"
)

// JobHistory is everything recorded about one job
type JobHistory struct {
	Job         *integration.IntegrationJob  `json:"job"`
	Audit       []integration.AuditEntry     `json:"audit"`
	Remediation *integration.RemediationTask `json:"remediation,omitempty"`
}

// HistoryService reads the audit trail and remediation task of jobs
type HistoryService struct {
	jobs        integration.IntegrationJobRepository
	audit       integration.AuditLogRepository
	remediation integration.RemediationTaskRepository
}

// NewHistoryService creates a new HistoryService
func NewHistoryService(
	jobs integration.IntegrationJobRepository,
	audit integration.AuditLogRepository,
	remediation integration.RemediationTaskRepository,
) *HistoryService {
	return &HistoryService{jobs: jobs, audit: audit, remediation: remediation}
}

// GetHistory returns the job with its audit entries and its remediation task if one exists
func (s *HistoryService) GetHistory(ctx context.Context, tenantID, jobID uuid.UUID) (*JobHistory, error) {
	job, err := s.jobs.FindByIDForTenant(ctx, tenantID, jobID)
	if err != nil {
		return nil, err
	}
	entries, err := s.audit.FindByJob(ctx, tenantID, jobID)
	if err != nil {
		return nil, err
	}
	history := &JobHistory{Job: job, Audit: entries}

	if s.remediation != nil {
		task, err := s.remediation.FindByJob(ctx, tenantID, jobID)
		switch {
		case err == nil:
			history.Remediation = task
		case !errors.Is(err, integration.ErrRemediationTaskNotFound):
			return nil, err
		}
	}
	return history, nil
}
