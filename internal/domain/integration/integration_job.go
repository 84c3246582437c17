package integration

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/obralink/backend/internal/domain/shared"
)

// AggregateTypeIntegrationJob is the aggregate type name for integration jobs
const AggregateTypeIntegrationJob = "IntegrationJob"

// DefaultMaxAttempts bounds the number of dispatch attempts per job
const DefaultMaxAttempts = 5

// RetryDelays is the fixed backoff schedule indexed by attempt number
var RetryDelays = []time.Duration{
	1 * time.Minute,
	5 * time.Minute,
	15 * time.Minute,
	1 * time.Hour,
	4 * time.Hour,
}

// BackoffFor returns the delay before retrying after the given (1-based) attempt
func BackoffFor(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > len(RetryDelays) {
		attempt = len(RetryDelays)
	}
	return RetryDelays[attempt-1]
}

// ---------------------------------------------------------------------------
// JobState
// ---------------------------------------------------------------------------

// JobState is the lifecycle state of an integration job
type JobState string

const (
	// JobStatePending means a dispatch attempt is about to run or in flight
	JobStatePending JobState = "pending"
	// JobStateSent means the platform queued the payload; a webhook is awaited
	JobStateSent JobState = "sent"
	// JobStateAccepted means the platform accepted the payload (terminal)
	JobStateAccepted JobState = "accepted"
	// JobStateRejected means the platform rejected the payload
	JobStateRejected JobState = "rejected"
	// JobStateError means the attempt failed in transport
	JobStateError JobState = "error"
	// JobStateCancelled means an operator cancelled the job (terminal)
	JobStateCancelled JobState = "cancelled"
)

// IsValid returns true if the state is known
func (s JobState) IsValid() bool {
	switch s {
	case JobStatePending, JobStateSent, JobStateAccepted, JobStateRejected, JobStateError, JobStateCancelled:
		return true
	default:
		return false
	}
}

// String returns the string representation of JobState
func (s JobState) String() string {
	return string(s)
}

// IsFailure returns true for rejected and error
func (s JobState) IsFailure() bool {
	return s == JobStateRejected || s == JobStateError
}

// ---------------------------------------------------------------------------
// IntegrationJob aggregate
// ---------------------------------------------------------------------------

// IntegrationJob tracks the dispatch of one transformed payload to one platform.
// Attempts counts dispatch attempts made, starting at 1 for the initial dispatch.
type IntegrationJob struct {
	shared.TenantAggregateRoot
	Platform           PlatformCode
	SiteCode           string
	TraceID            string
	State              JobState
	Attempts           int
	MaxAttempts        int
	TemplateVersion    int
	CanonicalPayload   CanonicalPayload
	TransformedPayload map[string]any
	PayloadDigest      string
	LastResponse       *DispatchResponse
	LastError          string
	NextRetryAt        *time.Time
	Terminal           bool
	RemediationTaskID  *uuid.UUID
}

// NewIntegrationJob creates a pending job for its first dispatch attempt
func NewIntegrationJob(
	tenantID uuid.UUID,
	platform PlatformCode,
	traceID string,
	payload CanonicalPayload,
	transformed map[string]any,
	templateVersion int,
	maxAttempts int,
) (*IntegrationJob, error) {
	if tenantID == uuid.Nil {
		return nil, ErrInvalidTenantID
	}
	if !platform.IsValid() {
		return nil, ErrPlatformInvalidCode
	}
	if strings.TrimSpace(traceID) == "" {
		return nil, ErrJobInvalidTraceID
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	job := &IntegrationJob{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Platform:            platform,
		SiteCode:            payload.Site.Code,
		TraceID:             traceID,
		State:               JobStatePending,
		Attempts:            1,
		MaxAttempts:         maxAttempts,
		TemplateVersion:     templateVersion,
		CanonicalPayload:    payload.Clone(),
		TransformedPayload:  ClonePayload(transformed),
	}
	return job, nil
}

// IsTerminal reports whether the job can never change state again
func (j *IntegrationJob) IsTerminal() bool {
	switch j.State {
	case JobStateAccepted, JobStateCancelled:
		return true
	case JobStateRejected, JobStateError:
		return j.Terminal || j.Attempts >= j.MaxAttempts
	default:
		return false
	}
}

// CanRetry reports whether a failed job may go back to pending
func (j *IntegrationJob) CanRetry() bool {
	return j.State.IsFailure() && !j.IsTerminal()
}

// IsDue reports whether a scheduled retry or a stale in-flight attempt should run now
func (j *IntegrationJob) IsDue(now time.Time) bool {
	if j.NextRetryAt == nil || j.IsTerminal() {
		return false
	}
	if j.State != JobStatePending && j.State != JobStateError {
		return false
	}
	return !now.Before(*j.NextRetryAt)
}

// NeedsRemediation reports whether a remediation task is due and not yet created
func (j *IntegrationJob) NeedsRemediation() bool {
	return j.State.IsFailure() && j.IsTerminal() && j.RemediationTaskID == nil
}

// LeaseAttempt marks a pending attempt as in flight until the lease expires.
// A job left pending past its lease (e.g. after a crash) is picked up again.
func (j *IntegrationJob) LeaseAttempt(now time.Time, lease time.Duration) error {
	if j.State != JobStatePending {
		return fmt.Errorf("%w: cannot lease attempt from %s", ErrJobInvalidTransition, j.State)
	}
	until := now.Add(lease)
	j.NextRetryAt = &until
	j.touch(now)
	return nil
}

// ApplyDispatchOutcome moves a pending job according to the result of an attempt
func (j *IntegrationJob) ApplyDispatchOutcome(outcome DispatchOutcome, now time.Time) error {
	if j.State != JobStatePending {
		return fmt.Errorf("%w: dispatch outcome in state %s", ErrJobInvalidTransition, j.State)
	}
	j.LastResponse = outcome.Response
	j.LastError = outcome.Reason
	j.NextRetryAt = nil

	dispatched := NewJobEvent(EventTypeIntegrationDispatched, j, string(outcome.Kind))
	j.AddDomainEvent(dispatched)

	switch outcome.Kind {
	case OutcomeAccepted:
		j.accept(now)
	case OutcomeQueued:
		j.State = JobStateSent
		j.touch(now)
	case OutcomeRejected:
		j.fail(JobStateRejected, true, now)
	default:
		j.fail(JobStateError, false, now)
	}
	// the audit record shows where the attempt left the job
	dispatched.State = j.State
	return nil
}

// ApplyWebhook reconciles an inbound platform event. It returns false when the
// event does not change the job (a replay or an event already reflected).
func (j *IntegrationJob) ApplyWebhook(state JobState, errs []PlatformError, now time.Time) (bool, error) {
	if j.State == state {
		return false, nil
	}
	if j.IsTerminal() {
		return false, fmt.Errorf("%w: %s", ErrJobTerminal, j.State)
	}
	// error is accepted as a source: a timed-out attempt may still reach the platform
	if j.State != JobStatePending && j.State != JobStateSent && j.State != JobStateError {
		return false, fmt.Errorf("%w: webhook %s in state %s", ErrJobInvalidTransition, state, j.State)
	}

	resp := &DispatchResponse{OK: state != JobStateRejected && state != JobStateError, Status: string(state), Errors: errs}
	switch state {
	case JobStateSent:
		j.LastResponse = resp
		j.NextRetryAt = nil
		j.State = JobStateSent
		j.touch(now)
	case JobStateAccepted:
		j.LastResponse = resp
		j.NextRetryAt = nil
		j.accept(now)
	case JobStateRejected:
		j.LastResponse = resp
		j.LastError = strings.Join(resp.ErrorMessages(), "; ")
		j.NextRetryAt = nil
		j.fail(JobStateRejected, true, now)
	case JobStateError:
		j.LastResponse = resp
		j.LastError = strings.Join(resp.ErrorMessages(), "; ")
		j.NextRetryAt = nil
		j.fail(JobStateError, false, now)
	default:
		return false, fmt.Errorf("%w: webhook status %s", ErrJobInvalidTransition, state)
	}
	return true, nil
}

// BeginRetry moves a retryable job back to pending under a fresh trace ID
func (j *IntegrationJob) BeginRetry(traceID string, now time.Time) error {
	if j.IsTerminal() {
		return fmt.Errorf("%w: %s", ErrJobTerminal, j.State)
	}
	if !j.CanRetry() {
		return fmt.Errorf("%w: state %s", ErrJobNotRetryable, j.State)
	}
	if strings.TrimSpace(traceID) == "" {
		return ErrJobInvalidTraceID
	}
	previous := j.TraceID
	j.Attempts++
	j.State = JobStatePending
	j.TraceID = traceID
	j.NextRetryAt = nil
	j.touch(now)
	j.AddDomainEvent(NewJobEvent(EventTypeIntegrationRetried, j,
		fmt.Sprintf("attempt %d of %d, previous trace %s", j.Attempts, j.MaxAttempts, previous)))
	return nil
}

// Cancel stops a job that has not reached a platform verdict. Cancelling an
// already cancelled job is a no-op.
func (j *IntegrationJob) Cancel(reason string, now time.Time) error {
	if j.State == JobStateCancelled {
		return nil
	}
	if j.IsTerminal() {
		return fmt.Errorf("%w: %s", ErrJobTerminal, j.State)
	}
	if j.State == JobStateSent {
		return fmt.Errorf("%w: job awaits platform verdict", ErrJobInvalidTransition)
	}
	j.State = JobStateCancelled
	j.Terminal = true
	j.NextRetryAt = nil
	j.touch(now)
	j.AddDomainEvent(NewJobEvent(EventTypeIntegrationCancelled, j, reason))
	return nil
}

// MarkRemediationCreated records the task created for this job
func (j *IntegrationJob) MarkRemediationCreated(taskID uuid.UUID, now time.Time) {
	j.RemediationTaskID = &taskID
	j.touch(now)
}

// ErrorMessages returns the platform messages of the last response, falling back
// to the transport error
func (j *IntegrationJob) ErrorMessages() []string {
	msgs := j.LastResponse.ErrorMessages()
	if len(msgs) == 0 && j.LastError != "" {
		msgs = []string{j.LastError}
	}
	return msgs
}

func (j *IntegrationJob) accept(now time.Time) {
	j.State = JobStateAccepted
	j.Terminal = true
	j.touch(now)
	j.AddDomainEvent(NewJobEvent(EventTypeIntegrationAccepted, j, ""))
}

// fail records a rejected or error state. Transient failures below the attempt
// limit get a retry scheduled on the backoff schedule.
func (j *IntegrationJob) fail(state JobState, terminal bool, now time.Time) {
	j.State = state
	if terminal || j.Attempts >= j.MaxAttempts {
		j.Terminal = true
	}
	j.touch(now)

	if !j.IsTerminal() {
		next := now.Add(BackoffFor(j.Attempts))
		j.NextRetryAt = &next
		return
	}
	j.AddDomainEvent(NewJobEvent(EventTypeIntegrationRejected, j, strings.Join(j.ErrorMessages(), "; ")))
}

func (j *IntegrationJob) touch(now time.Time) {
	j.UpdatedAt = now
}

// ---------------------------------------------------------------------------
// Repository
// ---------------------------------------------------------------------------

// JobFilter narrows job listings
type JobFilter struct {
	Platform PlatformCode
	State    JobState
	SiteCode string
	Page     int
	PageSize int
}

// IntegrationJobRepository persists integration jobs
type IntegrationJobRepository interface {
	// Save inserts or updates the job. Updates compare the stored version and
	// return shared.ErrConcurrencyConflict when another writer got there first.
	Save(ctx context.Context, job *IntegrationJob) error
	FindByID(ctx context.Context, id uuid.UUID) (*IntegrationJob, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*IntegrationJob, error)
	FindByTraceID(ctx context.Context, traceID string) (*IntegrationJob, error)
	// ClaimDue returns non-terminal jobs whose next_retry_at has passed and pushes
	// their next_retry_at forward by lease so concurrent pollers skip them. The
	// returned jobs carry the version written by the claim.
	ClaimDue(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]*IntegrationJob, error)
	// FindAwaitingRemediation returns terminal failed jobs without a remediation task
	FindAwaitingRemediation(ctx context.Context, limit int) ([]*IntegrationJob, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter JobFilter) ([]IntegrationJob, int64, error)
}
