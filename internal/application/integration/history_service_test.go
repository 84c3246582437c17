package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/obralink/backend/internal/domain/integration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHistoryService_GetHistory(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("Returns audit and remediation", func(t *testing.T) {
		jobs, audit, tasks := new(MockJobRepository), new(MockAuditLogRepository), new(MockRemediationCreator)
		job := failedJob(t, tenantID)
		entries := []integration.AuditEntry{{JobID: job.ID, EventType: integration.EventTypeIntegrationDispatched}}
		task := integration.NewRemediationTask(job, testNow)

		jobs.On("FindByIDForTenant", mock.Anything, tenantID, job.ID).Return(job, nil)
		audit.On("FindByJob", mock.Anything, tenantID, job.ID).Return(entries, nil)
		tasks.On("FindByJob", mock.Anything, tenantID, job.ID).Return(task, nil)

		history, err := NewHistoryService(jobs, audit, tasks).GetHistory(ctx, tenantID, job.ID)
		require.NoError(t, err)
		assert.Same(t, job, history.Job)
		assert.Equal(t, entries, history.Audit)
		assert.Equal(t, task, history.Remediation)
	})

	t.Run("Missing remediation task is not an error", func(t *testing.T) {
		jobs, audit, tasks := new(MockJobRepository), new(MockAuditLogRepository), new(MockRemediationCreator)
		job := storedJob(t, tenantID)
		jobs.On("FindByIDForTenant", mock.Anything, tenantID, job.ID).Return(job, nil)
		audit.On("FindByJob", mock.Anything, tenantID, job.ID).Return([]integration.AuditEntry{}, nil)
		tasks.On("FindByJob", mock.Anything, tenantID, job.ID).Return(nil, integration.ErrRemediationTaskNotFound)

		history, err := NewHistoryService(jobs, audit, tasks).GetHistory(ctx, tenantID, job.ID)
		require.NoError(t, err)
		assert.Nil(t, history.Remediation)
		assert.Empty(t, history.Audit)
	})

	t.Run("Unknown job", func(t *testing.T) {
		jobs := new(MockJobRepository)
		id := uuid.New()
		jobs.On("FindByIDForTenant", mock.Anything, tenantID, id).Return(nil, integration.ErrJobNotFound)

		_, err := NewHistoryService(jobs, new(MockAuditLogRepository), nil).GetHistory(ctx, tenantID, id)
		assert.ErrorIs(t, err, integration.ErrJobNotFound)
	})

	t.Run("Remediation lookup failure", func(t *testing.T) {
		jobs, audit, tasks := new(MockJobRepository), new(MockAuditLogRepository), new(MockRemediationCreator)
		job := storedJob(t, tenantID)
		jobs.On("FindByIDForTenant", mock.Anything, tenantID, job.ID).Return(job, nil)
		audit.On("FindByJob", mock.Anything, tenantID, job.ID).Return([]integration.AuditEntry{}, nil)
		tasks.On("FindByJob", mock.Anything, tenantID, job.ID).Return(nil, errors.New("db down"))

		_, err := NewHistoryService(jobs, audit, tasks).GetHistory(ctx, tenantID, job.ID)
		assert.EqualError(t, err, "db down")
	})
}
