package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/obralink/backend/internal/domain/integration"
	"github.com/obralink/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRemediationTaskRepository is the task subsystem's store for remediation
// tasks and the RemediationTaskCreator used by the job manager
type GormRemediationTaskRepository struct {
	db *gorm.DB
}

// NewGormRemediationTaskRepository creates the repository
func NewGormRemediationTaskRepository(db *gorm.DB) *GormRemediationTaskRepository {
	return &GormRemediationTaskRepository{db: db}
}

// Create inserts the task. A task already stored for the job is left as is.
func (r *GormRemediationTaskRepository) Create(ctx context.Context, task *integration.RemediationTask) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(models.RemediationTaskModelFromDomain(task)).Error
}

// FindByJob returns the task created for a job
func (r *GormRemediationTaskRepository) FindByJob(ctx context.Context, tenantID, jobID uuid.UUID) (*integration.RemediationTask, error) {
	var row models.RemediationTaskModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND job_id = ?", tenantID, jobID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrRemediationTaskNotFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

var _ integration.RemediationTaskRepository = (*GormRemediationTaskRepository)(nil)
