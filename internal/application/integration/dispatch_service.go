package integration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/obralink/backend/internal/domain/integration"
	"github.com/obralink/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DispatchServiceConfig holds the collaborators of DispatchService
type DispatchServiceConfig struct {
	Jobs        integration.IntegrationJobRepository
	Templates   integration.MappingTemplateRepository
	Adapters    integration.PlatformAdapterRegistry
	Remediation integration.RemediationTaskCreator
	Engine      *integration.MappingEngine
	Locker      *JobLocker
	Metrics     Metrics
	Logger      *zap.Logger

	// DispatchTimeout bounds each platform call. A timeout counts as a transient failure.
	DispatchTimeout time.Duration
	// AttemptLease is how long an in-flight attempt may stay pending before the
	// retry poller picks the job up again
	AttemptLease time.Duration
	// MaxAttempts bounds attempts per job; zero means integration.DefaultMaxAttempts
	MaxAttempts int

	Now        func() time.Time
	NewTraceID func() string
}

// DispatchService runs payloads through the mapping pipeline and drives
// integration jobs through their dispatch attempts
type DispatchService struct {
	jobs      integration.IntegrationJobRepository
	templates integration.MappingTemplateRepository
	adapters  integration.PlatformAdapterRegistry
	engine    *integration.MappingEngine
	locker    *JobLocker
	remedy    *remediator
	metrics   Metrics
	logger    *zap.Logger

	timeout     time.Duration
	lease       time.Duration
	maxAttempts int
	now         func() time.Time
	newTraceID  func() string
}

// NewDispatchService creates a new DispatchService
func NewDispatchService(cfg DispatchServiceConfig) *DispatchService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}
	engine := cfg.Engine
	if engine == nil {
		engine = integration.NewMappingEngine(nil, logger)
	}
	locker := cfg.Locker
	if locker == nil {
		locker = NewJobLocker()
	}
	timeout := cfg.DispatchTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	lease := cfg.AttemptLease
	if lease <= 0 {
		lease = 2 * timeout
	}
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	newTraceID := cfg.NewTraceID
	if newTraceID == nil {
		newTraceID = uuid.NewString
	}

	return &DispatchService{
		jobs:        cfg.Jobs,
		templates:   cfg.Templates,
		adapters:    cfg.Adapters,
		engine:      engine,
		locker:      locker,
		remedy:      &remediator{creator: cfg.Remediation, metrics: metrics, logger: logger},
		metrics:     metrics,
		logger:      logger,
		timeout:     timeout,
		lease:       lease,
		maxAttempts: cfg.MaxAttempts,
		now:         now,
		newTraceID:  newTraceID,
	}
}

// Dispatch validates, transforms and sends a canonical payload to a platform.
// Gate failures return a *DispatchRejectedError and create no job. Once the
// job exists its state, not the error, carries the platform outcome.
func (s *DispatchService) Dispatch(
	ctx context.Context,
	tenantID uuid.UUID,
	platform integration.PlatformCode,
	payload integration.CanonicalPayload,
) (*DispatchResult, error) {
	if tenantID == uuid.Nil {
		return nil, integration.ErrInvalidTenantID
	}

	if res := payload.Validate(); !res.Valid {
		return nil, &DispatchRejectedError{Kind: RejectionValidation, Errors: res.Errors}
	}

	tpl, err := s.templates.FindLatest(ctx, tenantID, platform)
	if err != nil {
		if errors.Is(err, integration.ErrTemplateNotFound) {
			return nil, &DispatchRejectedError{
				Kind:   RejectionValidation,
				Errors: []string{fmt.Sprintf("No mapping template configured for platform %s", platform.DisplayName())},
			}
		}
		return nil, err
	}

	adapter, err := s.adapters.Get(platform)
	if err != nil {
		if errors.Is(err, integration.ErrPlatformNotConfigured) {
			return nil, &DispatchRejectedError{
				Kind:   RejectionValidation,
				Errors: []string{fmt.Sprintf("Platform %s is not configured", platform.DisplayName())},
			}
		}
		return nil, err
	}

	source, err := payload.ToMap()
	if err != nil {
		return nil, err
	}
	mapped := s.engine.TransformWithReport(tpl, source)
	if shape := s.engine.ValidateShape(tpl, mapped.Payload); !shape.Valid {
		s.logger.Warn("Transformed payload does not match template shape",
			zap.String("tenant_id", tenantID.String()),
			zap.String("platform", platform.String()),
			zap.Int("template_version", tpl.Version),
			zap.Strings("errors", shape.Errors))
		return nil, &DispatchRejectedError{Kind: RejectionShape, Errors: shape.Errors}
	}

	digest, err := PayloadDigest(mapped.Payload)
	if err != nil {
		return nil, err
	}

	job, err := integration.NewIntegrationJob(tenantID, platform, s.newTraceID(), payload, mapped.Payload, tpl.Version, s.maxAttempts)
	if err != nil {
		return nil, err
	}
	job.PayloadDigest = digest

	unlock := s.locker.Lock(job.ID)
	defer unlock()

	// The pending job is stored before the call so a crash mid-attempt leaves a
	// record the retry poller can pick up once the lease expires.
	if err := job.LeaseAttempt(s.now(), s.lease); err != nil {
		return nil, err
	}
	if err := s.jobs.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("save job: %w", err)
	}

	s.logger.Info("Dispatching integration job",
		zap.String("job_id", job.ID.String()),
		zap.String("trace_id", job.TraceID),
		zap.String("platform", platform.String()),
		zap.String("site_code", job.SiteCode),
		zap.Int("template_version", tpl.Version),
		zap.Int("skipped_rules", len(mapped.Skipped)))

	if err := s.attempt(ctx, job, adapter); err != nil {
		return nil, err
	}
	return newDispatchResult(job), nil
}

// RetryJob starts the next attempt of a failed, non-terminal job under a new trace ID
func (s *DispatchService) RetryJob(ctx context.Context, tenantID, jobID uuid.UUID) (*DispatchResult, error) {
	unlock := s.locker.Lock(jobID)
	defer unlock()

	job, err := s.jobs.FindByIDForTenant(ctx, tenantID, jobID)
	if err != nil {
		return nil, err
	}
	if err := s.retryLocked(ctx, job); err != nil {
		return nil, err
	}
	return newDispatchResult(job), nil
}

// CancelJob stops a job before it reaches a platform verdict. Cancelling a
// cancelled job succeeds without changes.
func (s *DispatchService) CancelJob(ctx context.Context, tenantID, jobID uuid.UUID, reason string) (*integration.IntegrationJob, error) {
	unlock := s.locker.Lock(jobID)
	defer unlock()

	job, err := s.jobs.FindByIDForTenant(ctx, tenantID, jobID)
	if err != nil {
		return nil, err
	}
	if job.State == integration.JobStateCancelled {
		return job, nil
	}
	if err := job.Cancel(reason, s.now()); err != nil {
		return nil, err
	}
	if err := s.jobs.Save(ctx, job); err != nil {
		return nil, err
	}

	s.logger.Info("Integration job cancelled",
		zap.String("job_id", job.ID.String()),
		zap.String("trace_id", job.TraceID),
		zap.String("reason", reason))
	return job, nil
}

// RunDueJob runs a job claimed by the retry poller. A scheduled retry starts a
// new attempt; a pending job whose lease expired repeats its interrupted
// attempt. Jobs changed since the claim are skipped.
func (s *DispatchService) RunDueJob(ctx context.Context, claimed *integration.IntegrationJob) error {
	unlock := s.locker.Lock(claimed.ID)
	defer unlock()

	job, err := s.jobs.FindByID(ctx, claimed.ID)
	if err != nil {
		return err
	}
	if job.GetVersion() != claimed.GetVersion() || job.IsTerminal() {
		s.logger.Debug("Skipping claimed job changed since claim",
			zap.String("job_id", job.ID.String()),
			zap.String("state", job.State.String()))
		return nil
	}

	switch job.State {
	case integration.JobStateError, integration.JobStateRejected:
		return s.retryLocked(ctx, job)
	case integration.JobStatePending:
		adapter, err := s.adapters.Get(job.Platform)
		if err != nil {
			return err
		}
		s.logger.Warn("Resuming interrupted dispatch attempt",
			zap.String("job_id", job.ID.String()),
			zap.String("trace_id", job.TraceID),
			zap.Int("attempt", job.Attempts))
		if err := job.LeaseAttempt(s.now(), s.lease); err != nil {
			return err
		}
		if err := s.jobs.Save(ctx, job); err != nil {
			return err
		}
		return s.attempt(ctx, job, adapter)
	default:
		return nil
	}
}

// CompletePendingRemediations creates tasks for terminal jobs whose task
// creation failed earlier
func (s *DispatchService) CompletePendingRemediations(ctx context.Context, limit int) (int, error) {
	jobs, err := s.jobs.FindAwaitingRemediation(ctx, limit)
	if err != nil {
		return 0, err
	}
	done := 0
	for _, candidate := range jobs {
		if err := s.completeRemediation(ctx, candidate.ID); err != nil {
			s.logger.Error("Remediation sweep failed for job",
				zap.String("job_id", candidate.ID.String()),
				zap.Error(err))
			continue
		}
		done++
	}
	return done, nil
}

func (s *DispatchService) completeRemediation(ctx context.Context, jobID uuid.UUID) error {
	unlock := s.locker.Lock(jobID)
	defer unlock()

	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return err
	}
	if !job.NeedsRemediation() {
		return nil
	}
	if err := s.remedy.ensure(ctx, job, s.now()); err != nil {
		return err
	}
	return s.jobs.Save(ctx, job)
}

// GetJob returns one job of the tenant
func (s *DispatchService) GetJob(ctx context.Context, tenantID, jobID uuid.UUID) (*integration.IntegrationJob, error) {
	return s.jobs.FindByIDForTenant(ctx, tenantID, jobID)
}

// ListJobs returns a page of the tenant's jobs
func (s *DispatchService) ListJobs(
	ctx context.Context,
	tenantID uuid.UUID,
	filter integration.JobFilter,
) (shared.Paginated[integration.IntegrationJob], error) {
	filter.Page, filter.PageSize = shared.NormalizePage(filter.Page, filter.PageSize)
	jobs, total, err := s.jobs.FindAll(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[integration.IntegrationJob]{}, err
	}
	return shared.NewPaginated(jobs, total, filter.Page, filter.PageSize), nil
}

// retryLocked moves a failed job back to pending and runs the attempt.
// The caller holds the job lock.
func (s *DispatchService) retryLocked(ctx context.Context, job *integration.IntegrationJob) error {
	if job.IsTerminal() {
		return integration.ErrJobTerminal
	}
	if !job.CanRetry() {
		return fmt.Errorf("%w: state %s", integration.ErrJobNotRetryable, job.State)
	}
	adapter, err := s.adapters.Get(job.Platform)
	if err != nil {
		return err
	}

	now := s.now()
	if err := job.BeginRetry(s.newTraceID(), now); err != nil {
		return err
	}
	if err := job.LeaseAttempt(now, s.lease); err != nil {
		return err
	}
	// The new trace ID is stored first so webhooks for this attempt can find the job
	if err := s.jobs.Save(ctx, job); err != nil {
		return fmt.Errorf("save job: %w", err)
	}

	s.logger.Info("Retrying integration job",
		zap.String("job_id", job.ID.String()),
		zap.String("trace_id", job.TraceID),
		zap.Int("attempt", job.Attempts),
		zap.Int("max_attempts", job.MaxAttempts))

	return s.attempt(ctx, job, adapter)
}

// attempt sends the job's payload once and records the outcome.
// The caller holds the job lock and the job is pending.
func (s *DispatchService) attempt(ctx context.Context, job *integration.IntegrationJob, adapter integration.PlatformAdapter) error {
	req := &integration.DispatchRequest{
		TenantID: job.TenantID,
		JobID:    job.ID,
		TraceID:  job.TraceID,
		SiteCode: job.SiteCode,
		Payload:  job.TransformedPayload,
		Digest:   job.PayloadDigest,
	}

	start := time.Now()
	sendCtx, cancel := context.WithTimeout(ctx, s.timeout)
	resp, sendErr := adapter.Send(sendCtx, req)
	cancel()
	elapsed := time.Since(start)

	outcome := integration.ClassifyDispatch(resp, sendErr)
	s.metrics.RecordDispatch(ctx, job.Platform, outcome.Kind, elapsed)

	now := s.now()
	if err := job.ApplyDispatchOutcome(outcome, now); err != nil {
		return err
	}

	fields := []zap.Field{
		zap.String("job_id", job.ID.String()),
		zap.String("trace_id", job.TraceID),
		zap.String("platform", job.Platform.String()),
		zap.String("outcome", string(outcome.Kind)),
		zap.String("state", job.State.String()),
		zap.Int("attempt", job.Attempts),
		zap.Duration("elapsed", elapsed),
	}
	if job.NextRetryAt != nil {
		fields = append(fields, zap.Time("next_retry_at", *job.NextRetryAt))
	}
	if sendErr != nil {
		fields = append(fields, zap.Error(sendErr))
	}
	if outcome.Kind == integration.OutcomeAccepted || outcome.Kind == integration.OutcomeQueued {
		s.logger.Info("Dispatch attempt finished", fields...)
	} else {
		s.logger.Warn("Dispatch attempt failed", fields...)
	}

	if err := s.remedy.ensure(ctx, job, now); err != nil {
		s.logger.Warn("Remediation deferred to the sweep",
			zap.String("job_id", job.ID.String()),
			zap.String("trace_id", job.TraceID),
			zap.Error(err))
	}

	if err := s.jobs.Save(ctx, job); err != nil {
		return fmt.Errorf("save job: %w", err)
	}
	return nil
}
