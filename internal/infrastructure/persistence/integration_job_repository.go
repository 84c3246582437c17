package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/obralink/backend/internal/domain/integration"
	"github.com/obralink/backend/internal/domain/shared"
	"github.com/obralink/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormIntegrationJobRepository stores integration jobs. Domain events queued on
// a job are written to the outbox in the same transaction as the job row.
type GormIntegrationJobRepository struct {
	db     *gorm.DB
	outbox shared.OutboxEventSaver
}

// NewGormIntegrationJobRepository creates the repository. outbox may be nil,
// in which case queued events are dropped on save.
func NewGormIntegrationJobRepository(db *gorm.DB, outbox shared.OutboxEventSaver) *GormIntegrationJobRepository {
	return &GormIntegrationJobRepository{db: db, outbox: outbox}
}

// Save inserts a new job or updates an existing one under a version check
func (r *GormIntegrationJobRepository) Save(ctx context.Context, job *integration.IntegrationJob) error {
	row, err := models.IntegrationJobModelFromDomain(job)
	if err != nil {
		return err
	}
	current := job.Version

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.IntegrationJobModel{}).
			Where("id = ? AND version = ?", job.ID, current).
			Updates(map[string]any{
				"trace_id":            row.TraceID,
				"state":               row.State,
				"attempts":            row.Attempts,
				"max_attempts":        row.MaxAttempts,
				"template_version":    row.TemplateVersion,
				"canonical_payload":   row.CanonicalPayload,
				"transformed_payload": row.TransformedPayload,
				"payload_digest":      row.PayloadDigest,
				"last_response":       row.LastResponse,
				"last_error":          row.LastError,
				"next_retry_at":       row.NextRetryAt,
				"terminal":            row.Terminal,
				"remediation_task_id": row.RemediationTaskID,
				"version":             current + 1,
				"updated_at":          row.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			var exists int64
			if err := tx.Model(&models.IntegrationJobModel{}).Where("id = ?", job.ID).Count(&exists).Error; err != nil {
				return err
			}
			if exists > 0 {
				return shared.ErrConcurrencyConflict
			}
			if err := tx.Create(row).Error; err != nil {
				return err
			}
		} else {
			row.Version = current + 1
		}

		if r.outbox != nil {
			if err := r.outbox.SaveEvents(ctx, tx, job.GetDomainEvents()...); err != nil {
				return fmt.Errorf("failed to write job events to outbox: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	job.Version = row.Version
	job.ClearDomainEvents()
	return nil
}

// FindByID loads a job regardless of tenant; used by background workers
func (r *GormIntegrationJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.IntegrationJob, error) {
	return r.findOne(r.db.WithContext(ctx).Where("id = ?", id))
}

// FindByIDForTenant loads a job owned by the tenant
func (r *GormIntegrationJobRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*integration.IntegrationJob, error) {
	return r.findOne(r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id))
}

// FindByTraceID loads the job currently carrying the trace ID
func (r *GormIntegrationJobRepository) FindByTraceID(ctx context.Context, traceID string) (*integration.IntegrationJob, error) {
	return r.findOne(r.db.WithContext(ctx).Where("trace_id = ?", traceID))
}

func (r *GormIntegrationJobRepository) findOne(query *gorm.DB) (*integration.IntegrationJob, error) {
	var row models.IntegrationJobModel
	if err := query.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrJobNotFound
		}
		return nil, err
	}
	return row.ToDomain()
}

// ClaimDue leases due jobs. Rows locked by another poller are skipped.
func (r *GormIntegrationJobRepository) ClaimDue(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]*integration.IntegrationJob, error) {
	var claimed []*integration.IntegrationJob
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []models.IntegrationJobModel
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("terminal = ? AND state IN ? AND next_retry_at IS NOT NULL AND next_retry_at <= ?",
				false, []integration.JobState{integration.JobStatePending, integration.JobStateError}, now).
			Order("next_retry_at ASC").
			Limit(limit).
			Find(&rows).Error; err != nil {
			return err
		}

		until := now.Add(lease)
		for i := range rows {
			row := &rows[i]
			result := tx.Model(&models.IntegrationJobModel{}).
				Where("id = ? AND version = ?", row.ID, row.Version).
				Updates(map[string]any{"next_retry_at": until, "version": row.Version + 1})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				continue
			}
			row.Version++
			row.NextRetryAt = &until

			job, err := row.ToDomain()
			if err != nil {
				return err
			}
			claimed = append(claimed, job)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// FindAwaitingRemediation returns terminal failures with no remediation task yet
func (r *GormIntegrationJobRepository) FindAwaitingRemediation(ctx context.Context, limit int) ([]*integration.IntegrationJob, error) {
	var rows []models.IntegrationJobModel
	if err := r.db.WithContext(ctx).
		Where("terminal = ? AND state IN ? AND remediation_task_id IS NULL",
			true, []integration.JobState{integration.JobStateRejected, integration.JobStateError}).
		Order("updated_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	jobs := make([]*integration.IntegrationJob, 0, len(rows))
	for i := range rows {
		job, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// FindAll lists a tenant's jobs, newest first
func (r *GormIntegrationJobRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter integration.JobFilter) ([]integration.IntegrationJob, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.IntegrationJobModel{}).Where("tenant_id = ?", tenantID)
	if filter.Platform != "" {
		query = query.Where("platform = ?", filter.Platform)
	}
	if filter.State != "" {
		query = query.Where("state = ?", filter.State)
	}
	if filter.SiteCode != "" {
		query = query.Where("site_code = ?", filter.SiteCode)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, pageSize := shared.NormalizePage(filter.Page, filter.PageSize)
	var rows []models.IntegrationJobModel
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	jobs := make([]integration.IntegrationJob, 0, len(rows))
	for i := range rows {
		job, err := rows[i].ToDomain()
		if err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, total, nil
}

var _ integration.IntegrationJobRepository = (*GormIntegrationJobRepository)(nil)
