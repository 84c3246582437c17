package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/obralink/backend/internal/domain/integration"
	"github.com/obralink/backend/internal/infrastructure/telemetry"
)

var (
	// ErrInvalidConfig wraps every configuration problem of the poller and the housekeeping cron
	ErrInvalidConfig  = errors.New("invalid scheduler configuration")
	ErrAlreadyRunning = errors.New("scheduler is already running")
)

// DueJobClaimer claims jobs whose retry time has passed
type DueJobClaimer interface {
	ClaimDue(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]*integration.IntegrationJob, error)
}

// DueJobRunner runs one claimed job
type DueJobRunner interface {
	RunDueJob(ctx context.Context, claimed *integration.IntegrationJob) error
}

// RetryPollerConfig holds retry poller configuration
type RetryPollerConfig struct {
	PollInterval time.Duration
	BatchSize    int
	Workers      int
	// Lease is how far a claim pushes next_retry_at so other replicas skip the job
	Lease time.Duration
	// JobTimeout bounds one RunDueJob call
	JobTimeout time.Duration
}

// Validate checks the configuration
func (c RetryPollerConfig) Validate() error {
	switch {
	case c.PollInterval <= 0:
		return fmt.Errorf("%w: poll interval must be positive", ErrInvalidConfig)
	case c.BatchSize <= 0:
		return fmt.Errorf("%w: batch size must be positive", ErrInvalidConfig)
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	case c.Lease <= 0:
		return fmt.Errorf("%w: lease must be positive", ErrInvalidConfig)
	}
	return nil
}

// RetryPoller periodically claims due integration jobs and runs them on a worker pool
type RetryPoller struct {
	config  RetryPollerConfig
	claimer DueJobClaimer
	runner  DueJobRunner
	logger  *zap.Logger
	now     func() time.Time

	jobs      chan *integration.IntegrationJob
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewRetryPoller creates a new retry poller
func NewRetryPoller(config RetryPollerConfig, claimer DueJobClaimer, runner DueJobRunner, logger *zap.Logger) (*RetryPoller, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = config.Lease
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetryPoller{
		config:  config,
		claimer: claimer,
		runner:  runner,
		logger:  logger.Named("retry_poller"),
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// Start launches the poll loop and the workers
func (p *RetryPoller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.isRunning {
		return ErrAlreadyRunning
	}
	p.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.jobs = make(chan *integration.IntegrationJob, p.config.BatchSize)

	for i := 0; i < p.config.Workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
	p.wg.Add(1)
	go p.pollLoop(ctx)

	p.logger.Info("Retry poller started",
		zap.Int("workers", p.config.Workers),
		zap.Duration("poll_interval", p.config.PollInterval),
		zap.Int("batch_size", p.config.BatchSize))
	return nil
}

// Stop cancels polling and waits for in-flight jobs until ctx expires
func (p *RetryPoller) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.isRunning {
		p.mu.Unlock()
		return nil
	}
	p.isRunning = false
	p.mu.Unlock()

	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("Retry poller stopped gracefully")
		return nil
	case <-ctx.Done():
		p.logger.Warn("Retry poller stop timed out")
		return ctx.Err()
	}
}

func (p *RetryPoller) pollLoop(ctx context.Context) {
	defer p.wg.Done()
	defer close(p.jobs)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		p.enqueue(ctx, p.PollOnce(ctx))
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (p *RetryPoller) enqueue(ctx context.Context, jobs []*integration.IntegrationJob) {
	for _, job := range jobs {
		select {
		case p.jobs <- job:
		case <-ctx.Done():
			return
		}
	}
}

// PollOnce claims one batch of due jobs. Claim failures are logged and yield no jobs.
func (p *RetryPoller) PollOnce(ctx context.Context) []*integration.IntegrationJob {
	jobs, err := p.claimer.ClaimDue(ctx, p.now(), p.config.Lease, p.config.BatchSize)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Error("Failed to claim due integration jobs", zap.Error(err))
		}
		return nil
	}
	if len(jobs) > 0 {
		p.logger.Debug("Claimed due integration jobs", zap.Int("count", len(jobs)))
	}
	return jobs
}

func (p *RetryPoller) worker(ctx context.Context, workerID int) {
	defer p.wg.Done()
	for job := range p.jobs {
		if ctx.Err() != nil {
			// the lease expires and another poll picks the job up again
			continue
		}
		p.run(ctx, job, workerID)
	}
}

// run executes one claimed job; panics are contained so a worker survives bad jobs
func (p *RetryPoller) run(ctx context.Context, job *integration.IntegrationJob, workerID int) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Panic while running integration job",
				zap.Int("worker_id", workerID),
				zap.String("job_id", job.ID.String()),
				zap.Any("panic", r))
		}
	}()

	jobCtx, cancel := context.WithTimeout(ctx, p.config.JobTimeout)
	defer cancel()

	var err error
	telemetry.WithProfileLabels(jobCtx, func(ctx context.Context) {
		err = p.runner.RunDueJob(ctx, job)
	}, telemetry.ProfileLabelWork, "retry", telemetry.ProfileLabelPlatform, job.Platform.String())
	if err != nil {
		p.logger.Error("Integration job run failed",
			zap.Int("worker_id", workerID),
			zap.String("job_id", job.ID.String()),
			zap.String("trace_id", job.TraceID),
			zap.String("platform", job.Platform.String()),
			zap.Error(err))
		return
	}
	p.logger.Debug("Integration job run finished",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()))
}
