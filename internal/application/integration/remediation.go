package integration

import (
	"context"
	"time"

	"github.com/obralink/backend/internal/domain/integration"
	"go.uber.org/zap"
)

// remediator hands terminally failed jobs to the task subsystem exactly once
type remediator struct {
	creator integration.RemediationTaskCreator
	metrics Metrics
	logger  *zap.Logger
}

// ensure creates the remediation task when the job needs one and records it on
// the job. Task IDs derive from the job ID, so a repeated call after a crash
// does not duplicate the task.
func (r *remediator) ensure(ctx context.Context, job *integration.IntegrationJob, now time.Time) error {
	if !job.NeedsRemediation() {
		return nil
	}
	task := integration.NewRemediationTask(job, now)
	if err := r.creator.Create(ctx, task); err != nil {
		r.logger.Error("Failed to create remediation task",
			zap.String("job_id", job.ID.String()),
			zap.String("trace_id", job.TraceID),
			zap.Error(err))
		return err
	}
	job.MarkRemediationCreated(task.ID, now)
	r.metrics.RecordRemediation(ctx, job.Platform)
	r.logger.Info("Remediation task created",
		zap.String("job_id", job.ID.String()),
		zap.String("task_id", task.ID.String()),
		zap.String("platform", job.Platform.String()),
		zap.Time("due_at", task.DueAt))
	return nil
}
