package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/obralink/backend/internal/domain/integration"
	"github.com/obralink/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemediationTaskRepository(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	repo := NewGormRemediationTaskRepository(db)
	tenantID := uuid.New()

	job := newTestJob(t, tenantID, "trace-task")
	job.LastResponse = &integration.DispatchResponse{Errors: []integration.PlatformError{{Message: "Seguro caducado", DocumentID: "DOC-7"}}}
	task := integration.NewRemediationTask(job, testNow)

	require.NoError(t, repo.Create(ctx, task))

	t.Run("Creating twice keeps one task", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, integration.NewRemediationTask(job, testNow.Add(time.Hour))))

		var count int64
		require.NoError(t, db.Model(&models.RemediationTaskModel{}).Where("job_id = ?", job.ID).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Lookup by job", func(t *testing.T) {
		got, err := repo.FindByJob(ctx, tenantID, job.ID)
		require.NoError(t, err)
		assert.Equal(t, integration.RemediationTaskID(job.ID), got.ID)
		assert.Equal(t, integration.RemediationAssigneeRole, got.AssigneeRole)
		assert.Equal(t, integration.RemediationTypeSubsanar, got.Type)
		assert.True(t, got.DueAt.Equal(testNow.Add(integration.RemediationDueIn)))
		assert.Equal(t, "DOC-7", got.DocumentID)

		_, err = repo.FindByJob(ctx, uuid.New(), job.ID)
		assert.ErrorIs(t, err, integration.ErrRemediationTaskNotFound)
	})
}
