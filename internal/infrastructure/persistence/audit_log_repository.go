package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/obralink/backend/internal/domain/integration"
	"github.com/obralink/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAuditLogRepository is the append-only integration_audit_log sink
type GormAuditLogRepository struct {
	db *gorm.DB
}

// NewGormAuditLogRepository creates the repository
func NewGormAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

// Append inserts the entry; a redelivered event hits the event_id index and is ignored
func (r *GormAuditLogRepository) Append(ctx context.Context, entry *integration.AuditEntry) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true}).
		Create(models.AuditLogModelFromDomain(entry)).Error
}

// FindByJob returns a job's audit trail in occurrence order
func (r *GormAuditLogRepository) FindByJob(ctx context.Context, tenantID, jobID uuid.UUID) ([]integration.AuditEntry, error) {
	var rows []models.AuditLogModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND job_id = ?", tenantID, jobID).
		Order("occurred_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]integration.AuditEntry, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

var _ integration.AuditLogRepository = (*GormAuditLogRepository)(nil)
