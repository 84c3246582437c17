package integration

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/obralink/backend/internal/domain/integration"
)

// ---------------------------------------------------------------------------
// Dispatch
// ---------------------------------------------------------------------------

// RejectionKind tells which pre-dispatch gate refused a payload
type RejectionKind string

const (
	// RejectionValidation covers business-rule failures and a missing template
	RejectionValidation RejectionKind = "validation"
	// RejectionShape covers transformed payloads that do not match the template shape
	RejectionShape RejectionKind = "shape"
)

// DispatchRejectedError is returned when a payload never reached a platform.
// No job is created.
type DispatchRejectedError struct {
	Kind   RejectionKind
	Errors []string
}

func (e *DispatchRejectedError) Error() string {
	return string(e.Kind) + ": " + strings.Join(e.Errors, "; ")
}

// Unwrap maps the rejection onto the domain sentinel for errors.Is checks
func (e *DispatchRejectedError) Unwrap() error {
	if e.Kind == RejectionShape {
		return integration.ErrShapeValidation
	}
	return integration.ErrPayloadValidation
}

// AsDispatchRejection extracts a DispatchRejectedError from err
func AsDispatchRejection(err error) (*DispatchRejectedError, bool) {
	var rejected *DispatchRejectedError
	if errors.As(err, &rejected) {
		return rejected, true
	}
	return nil, false
}

// DispatchResult is the caller-facing outcome of a dispatch
type DispatchResult struct {
	OK       bool                 `json:"ok"`
	JobID    uuid.UUID            `json:"jobId"`
	TraceID  string               `json:"traceId"`
	State    integration.JobState `json:"state"`
	Attempts int                  `json:"attempts"`
	Errors   []string             `json:"errors,omitempty"`
	// RemediationPending is set when the job failed terminally but its task
	// could not be created yet; the remediation sweep retries it
	RemediationPending bool `json:"remediationPending,omitempty"`
}

func newDispatchResult(job *integration.IntegrationJob) *DispatchResult {
	return &DispatchResult{
		OK:       job.State == integration.JobStateAccepted || job.State == integration.JobStateSent,
		JobID:    job.ID,
		TraceID:  job.TraceID,
		State:    job.State,
		Attempts: job.Attempts,
		Errors:   job.ErrorMessages(),

		RemediationPending: job.NeedsRemediation(),
	}
}

// ---------------------------------------------------------------------------
// Webhooks
// ---------------------------------------------------------------------------

// WebhookResult reports what a webhook did to its job
type WebhookResult struct {
	JobID            uuid.UUID            `json:"jobId"`
	TraceID          string               `json:"traceId"`
	State            integration.JobState `json:"state"`
	Changed          bool                 `json:"changed"`
	AlreadyProcessed bool                 `json:"alreadyProcessed"`
	// RemediationPending mirrors DispatchResult.RemediationPending
	RemediationPending bool `json:"remediationPending,omitempty"`
}

// ---------------------------------------------------------------------------
// Templates
// ---------------------------------------------------------------------------

// PreviewResult is what a template would produce for a sample payload
type PreviewResult struct {
	Payload    map[string]any               `json:"payload"`
	Skipped    []integration.RuleFailure    `json:"skipped,omitempty"`
	Shape      integration.ValidationResult `json:"shape"`
	Validation integration.ValidationResult `json:"validation"`
	Template   *integration.MappingTemplate `json:"template,omitempty"`
}

// ---------------------------------------------------------------------------
// Tenant hierarchy (input of BuildCanonicalPayload)
// ---------------------------------------------------------------------------

// TenantHierarchy is the raw tenant data one site's payload is built from
type TenantHierarchy struct {
	Company   CompanyRecord    `json:"company"`
	Site      SiteRecord       `json:"site"`
	Workers   []WorkerRecord   `json:"workers"`
	Machines  []MachineRecord  `json:"machines"`
	Documents []DocumentRecord `json:"documents"`
}

// CompanyRecord is the contractor as stored by the tenant
type CompanyRecord struct {
	CIF       string `json:"cif"`
	LegalName string `json:"legalName"`
	REA       string `json:"rea"`
	Email     string `json:"email"`
}

// SiteRecord is the construction site as stored by the tenant
type SiteRecord struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	ClientName string `json:"clientName"`
	RiskLevel  string `json:"riskLevel"`
}

// WorkerRecord is a person assigned to the site. Inactive workers are left out.
type WorkerRecord struct {
	DNI          string     `json:"dni"`
	Name         string     `json:"name"`
	Surname      string     `json:"surname"`
	PRLLevel     string     `json:"prlLevel"`
	PRLExpiresAt *time.Time `json:"prlExpiresAt"`
	Inactive     bool       `json:"inactive"`
}

// MachineRecord is equipment assigned to the site. Retired machines are left out.
type MachineRecord struct {
	SerialNumber string     `json:"serialNumber"`
	Kind         string     `json:"kind"`
	ITVExpiresAt *time.Time `json:"itvExpiresAt"`
	Retired      bool       `json:"retired"`
}

// DocumentRecord references a stored compliance document. StorageKey is
// presigned into a download URL; URL is used as is when no key is set.
type DocumentRecord struct {
	OwnerType  string         `json:"ownerType"`
	OwnerID    string         `json:"ownerId"`
	Category   string         `json:"category"`
	StorageKey string         `json:"storageKey"`
	URL        string         `json:"url"`
	ExpiresAt  *time.Time     `json:"expiresAt"`
	Meta       map[string]any `json:"meta,omitempty"`
}

// BuildPayloadResult is the built payload together with its validation
type BuildPayloadResult struct {
	Payload    integration.CanonicalPayload `json:"payload"`
	Validation integration.ValidationResult `json:"validation"`
}
