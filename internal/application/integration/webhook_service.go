package integration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/obralink/backend/internal/domain/integration"
	"github.com/obralink/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// WebhookServiceConfig holds the collaborators of WebhookService
type WebhookServiceConfig struct {
	Jobs        integration.IntegrationJobRepository
	Verifier    integration.WebhookVerifier
	Idempotency shared.IdempotencyStore
	// Audit receives events that are not tied to a stored job
	Audit       shared.EventPublisher
	Remediation integration.RemediationTaskCreator
	Locker      *JobLocker
	Metrics     Metrics
	Logger      *zap.Logger

	// Formats overrides the native webhook layout per platform
	Formats map[integration.PlatformCode]integration.WebhookFormat
	// IdempotencyTTL is how long a handled (platform, trace, status) key is remembered
	IdempotencyTTL time.Duration
	Now            func() time.Time
}

// WebhookService reconciles platform status callbacks with integration jobs
type WebhookService struct {
	jobs        integration.IntegrationJobRepository
	verifier    integration.WebhookVerifier
	idempotency shared.IdempotencyStore
	audit       shared.EventPublisher
	locker      *JobLocker
	remedy      *remediator
	metrics     Metrics
	logger      *zap.Logger
	formats     map[integration.PlatformCode]integration.WebhookFormat
	ttl         time.Duration
	now         func() time.Time
}

// NewWebhookService creates a new WebhookService
func NewWebhookService(cfg WebhookServiceConfig) *WebhookService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}
	locker := cfg.Locker
	if locker == nil {
		locker = NewJobLocker()
	}
	ttl := cfg.IdempotencyTTL
	if ttl <= 0 {
		ttl = shared.DefaultReplayWindow
	}
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	return &WebhookService{
		jobs:        cfg.Jobs,
		verifier:    cfg.Verifier,
		idempotency: cfg.Idempotency,
		audit:       cfg.Audit,
		locker:      locker,
		remedy:      &remediator{creator: cfg.Remediation, metrics: metrics, logger: logger},
		metrics:     metrics,
		logger:      logger,
		formats:     cfg.Formats,
		ttl:         ttl,
		now:         now,
	}
}

// WebhookIdempotencyKey identifies one status report of one attempt
func WebhookIdempotencyKey(platform integration.PlatformCode, traceID string, state integration.JobState) string {
	return fmt.Sprintf("webhook:%s:%s:%s", platform, traceID, state)
}

// Reconcile verifies a raw webhook body and applies it to the job it refers to.
// A replayed event returns AlreadyProcessed without touching the job.
func (s *WebhookService) Reconcile(
	ctx context.Context,
	platform integration.PlatformCode,
	body []byte,
	signature string,
) (*WebhookResult, error) {
	if err := s.verifier.Verify(platform, body, signature); err != nil {
		s.logger.Warn("Webhook verification failed",
			zap.String("platform", platform.String()),
			zap.Error(err))
		s.metrics.RecordWebhook(ctx, platform, WebhookResultInvalidSignature)
		if s.audit != nil {
			event := integration.NewWebhookSignatureRejectedEvent(platform, err.Error())
			if pubErr := s.audit.Publish(ctx, event); pubErr != nil {
				s.logger.Error("Failed to record rejected webhook",
					zap.String("platform", platform.String()),
					zap.Error(pubErr))
			}
		}
		if errors.Is(err, integration.ErrWebhookSignature) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", integration.ErrWebhookSignature, err)
	}

	event, err := integration.ParseWebhookEvent(s.formatFor(platform), body)
	if err != nil {
		s.logger.Warn("Webhook payload rejected",
			zap.String("platform", platform.String()),
			zap.Error(err))
		s.metrics.RecordWebhook(ctx, platform, WebhookResultInvalidPayload)
		return nil, err
	}

	key := WebhookIdempotencyKey(platform, event.TraceID, event.State)
	if s.idempotency != nil {
		isNew, err := s.idempotency.MarkProcessed(ctx, key, s.ttl)
		if err != nil {
			s.logger.Error("Failed to check webhook idempotency",
				zap.String("key", key),
				zap.Error(err))
			return nil, fmt.Errorf("idempotency check failed: %w", err)
		}
		if !isNew {
			s.logger.Info("Duplicate webhook, skipping",
				zap.String("platform", platform.String()),
				zap.String("trace_id", event.TraceID),
				zap.String("state", event.State.String()))
			s.metrics.RecordWebhook(ctx, platform, WebhookResultDuplicate)
			return &WebhookResult{TraceID: event.TraceID, State: event.State, AlreadyProcessed: true}, nil
		}
	}

	result, err := s.apply(ctx, platform, event)
	if err != nil {
		if s.idempotency != nil {
			if releaseErr := s.idempotency.Release(ctx, key); releaseErr != nil {
				s.logger.Warn("Failed to release webhook idempotency key",
					zap.String("key", key),
					zap.Error(releaseErr))
			}
		}
		s.metrics.RecordWebhook(ctx, platform, WebhookResultFailed)
		return nil, err
	}

	s.metrics.RecordWebhook(ctx, platform, WebhookResultApplied)
	return result, nil
}

func (s *WebhookService) apply(
	ctx context.Context,
	platform integration.PlatformCode,
	event *integration.WebhookEvent,
) (*WebhookResult, error) {
	found, err := s.jobs.FindByTraceID(ctx, event.TraceID)
	if err != nil {
		return nil, err
	}

	unlock := s.locker.Lock(found.ID)
	defer unlock()

	// Reload under the lock so a concurrent attempt is not overwritten
	job, err := s.jobs.FindByID(ctx, found.ID)
	if err != nil {
		return nil, err
	}
	if job.Platform != platform || job.TraceID != event.TraceID {
		// The trace belongs to another platform or to a superseded attempt
		return nil, fmt.Errorf("%w: trace %s", integration.ErrJobNotFound, event.TraceID)
	}

	now := s.now()
	changed, err := job.ApplyWebhook(event.State, event.Errors, now)
	if err != nil {
		s.logger.Warn("Webhook could not be applied",
			zap.String("job_id", job.ID.String()),
			zap.String("trace_id", job.TraceID),
			zap.String("state", job.State.String()),
			zap.String("webhook_state", event.State.String()),
			zap.Error(err))
		return nil, err
	}

	if changed {
		if err := s.remedy.ensure(ctx, job, now); err != nil {
			s.logger.Warn("Remediation deferred to the sweep",
				zap.String("job_id", job.ID.String()),
				zap.String("trace_id", job.TraceID),
				zap.Error(err))
		}
		if err := s.jobs.Save(ctx, job); err != nil {
			return nil, fmt.Errorf("save job: %w", err)
		}
		s.logger.Info("Webhook applied",
			zap.String("job_id", job.ID.String()),
			zap.String("trace_id", job.TraceID),
			zap.String("platform", platform.String()),
			zap.String("state", job.State.String()))
	}

	return &WebhookResult{
		JobID:   job.ID,
		TraceID: job.TraceID,
		State:   job.State,
		Changed: changed,

		RemediationPending: job.NeedsRemediation(),
	}, nil
}

func (s *WebhookService) formatFor(platform integration.PlatformCode) integration.WebhookFormat {
	if f, ok := s.formats[platform]; ok {
		return f
	}
	return integration.WebhookFormatFor(platform)
}
