package integration

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// RemediationTypeSubsanar is the task type for correcting rejected data
	RemediationTypeSubsanar = "subsanar"
	// RemediationAssigneeRole is the role that owns remediation tasks
	RemediationAssigneeRole = "GestorDocumental"
	// RemediationDueIn is how long the assignee has to resolve the task
	RemediationDueIn = 7 * 24 * time.Hour
)

// remediationNamespace derives task IDs from job IDs so a job maps to one task
var remediationNamespace = uuid.MustParse("6f1c9a52-3d0e-4b7a-9c85-2e4f1d7b6a10")

// RemediationTask is a follow-up work item for a terminally failed job.
// It is owned and persisted by the task subsystem.
type RemediationTask struct {
	ID           uuid.UUID    `json:"id"`
	TenantID     uuid.UUID    `json:"tenantId"`
	JobID        uuid.UUID    `json:"jobId"`
	TraceID      string       `json:"traceId"`
	Platform     PlatformCode `json:"platform"`
	Type         string       `json:"type"`
	SiteCode     string       `json:"siteCode,omitempty"`
	DocumentID   string       `json:"documentId,omitempty"`
	DueAt        time.Time    `json:"dueAt"`
	AssigneeRole string       `json:"assigneeRole"`
	Notes        string       `json:"notes"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// RemediationTaskID returns the deterministic task ID for a job
func RemediationTaskID(jobID uuid.UUID) uuid.UUID {
	return uuid.NewSHA1(remediationNamespace, jobID[:])
}

// NewRemediationTask builds the task for a terminally rejected or errored job
func NewRemediationTask(job *IntegrationJob, now time.Time) *RemediationTask {
	task := &RemediationTask{
		ID:           RemediationTaskID(job.ID),
		TenantID:     job.TenantID,
		JobID:        job.ID,
		TraceID:      job.TraceID,
		Platform:     job.Platform,
		Type:         RemediationTypeSubsanar,
		SiteCode:     job.SiteCode,
		DueAt:        now.Add(RemediationDueIn),
		AssigneeRole: RemediationAssigneeRole,
		CreatedAt:    now,
	}

	msgs := job.ErrorMessages()
	if len(msgs) == 0 {
		task.Notes = fmt.Sprintf("%s dispatch ended in state %s after %d attempt(s)",
			job.Platform.DisplayName(), job.State, job.Attempts)
	} else {
		task.Notes = strings.Join(msgs, "; ")
	}
	if job.LastResponse != nil {
		task.DocumentID = singleDocumentID(job.LastResponse.Errors)
	}
	return task
}

// singleDocumentID returns the document all errors point at, if there is exactly one
func singleDocumentID(errs []PlatformError) string {
	id := ""
	for _, e := range errs {
		if e.DocumentID == "" {
			continue
		}
		if id != "" && id != e.DocumentID {
			return ""
		}
		id = e.DocumentID
	}
	return id
}

// RemediationTaskCreator hands tasks to the task subsystem.
// Creating a task whose ID already exists must succeed without a duplicate.
type RemediationTaskCreator interface {
	Create(ctx context.Context, task *RemediationTask) error
}

// RemediationTaskRepository adds lookups to the creator
type RemediationTaskRepository interface {
	RemediationTaskCreator
	FindByJob(ctx context.Context, tenantID, jobID uuid.UUID) (*RemediationTask, error)
}
