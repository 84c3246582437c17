package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/obralink/backend/internal/domain/integration"
)

// DispatchRequest asks for a canonical payload to be sent to a platform
type DispatchRequest struct {
	Platform string                       `json:"platform" binding:"required"`
	Payload  integration.CanonicalPayload `json:"payload"`
}

// DispatchResponse is the dispatch outcome. Gate rejections carry only errors.
type DispatchResponse struct {
	OK                 bool                 `json:"ok"`
	JobID              *uuid.UUID           `json:"jobId,omitempty"`
	TraceID            string               `json:"traceId,omitempty"`
	State              integration.JobState `json:"state,omitempty"`
	Attempts           int                  `json:"attempts,omitempty"`
	Errors             []string             `json:"errors,omitempty"`
	RemediationPending bool                 `json:"remediationPending,omitempty"`
}

// JobResponse is the API view of an integration job
type JobResponse struct {
	ID                 uuid.UUID                     `json:"id"`
	Platform           integration.PlatformCode      `json:"platform"`
	SiteCode           string                        `json:"siteCode"`
	TraceID            string                        `json:"traceId"`
	State              integration.JobState          `json:"state"`
	Attempts           int                           `json:"attempts"`
	MaxAttempts        int                           `json:"maxAttempts"`
	TemplateVersion    int                           `json:"templateVersion"`
	PayloadDigest      string                        `json:"payloadDigest"`
	TransformedPayload map[string]any                `json:"transformedPayload,omitempty"`
	LastResponse       *integration.DispatchResponse `json:"lastResponse,omitempty"`
	LastError          string                        `json:"lastError,omitempty"`
	NextRetryAt        *time.Time                    `json:"nextRetryAt,omitempty"`
	Terminal           bool                          `json:"terminal"`
	RemediationTaskID  *uuid.UUID                    `json:"remediationTaskId,omitempty"`
	Version            int                           `json:"version"`
	CreatedAt          time.Time                     `json:"createdAt"`
	UpdatedAt          time.Time                     `json:"updatedAt"`
}

// ToJobResponse converts a job. Listings omit the transformed payload.
func ToJobResponse(job *integration.IntegrationJob, withPayload bool) JobResponse {
	resp := JobResponse{
		ID:                job.ID,
		Platform:          job.Platform,
		SiteCode:          job.SiteCode,
		TraceID:           job.TraceID,
		State:             job.State,
		Attempts:          job.Attempts,
		MaxAttempts:       job.MaxAttempts,
		TemplateVersion:   job.TemplateVersion,
		PayloadDigest:     job.PayloadDigest,
		LastResponse:      job.LastResponse,
		LastError:         job.LastError,
		NextRetryAt:       job.NextRetryAt,
		Terminal:          job.Terminal,
		RemediationTaskID: job.RemediationTaskID,
		Version:           job.Version,
		CreatedAt:         job.CreatedAt,
		UpdatedAt:         job.UpdatedAt,
	}
	if withPayload {
		resp.TransformedPayload = job.TransformedPayload
	}
	return resp
}

// JobHistoryResponse is a job with its audit trail and remediation task
type JobHistoryResponse struct {
	Job         JobResponse                  `json:"job"`
	Audit       []integration.AuditEntry     `json:"audit"`
	Remediation *integration.RemediationTask `json:"remediation,omitempty"`
}

// CancelJobRequest carries the operator's reason
type CancelJobRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// ListJobsRequest filters the job listing
type ListJobsRequest struct {
	Platform string `form:"platform"`
	State    string `form:"state" binding:"omitempty,jobstate"`
	SiteCode string `form:"site_code" binding:"omitempty,max=100"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// CreateTemplateRequest is the content of a new template version
type CreateTemplateRequest struct {
	Platform          string                    `json:"platform" binding:"required"`
	Description       string                    `json:"description" binding:"max=500"`
	DestinationSchema map[string]any            `json:"destinationSchema" binding:"required"`
	Rules             []integration.MappingRule `json:"rules" binding:"required,min=1"`
}

// PreviewTemplateRequest runs a template over a sample payload. Without an
// inline template the latest stored version of the platform is used.
type PreviewTemplateRequest struct {
	Platform string                       `json:"platform" binding:"required"`
	Template *CreateTemplateRequest       `json:"template"`
	Payload  integration.CanonicalPayload `json:"payload"`
}

// WebhookResponse is the body returned to platforms calling the webhook endpoint
type WebhookResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HealthResponse reports dependency status
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version,omitempty"`
	Checks    map[string]string `json:"checks"`
	Platforms []string          `json:"platforms"`
}
