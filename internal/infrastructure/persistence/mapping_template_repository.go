package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/obralink/backend/internal/domain/integration"
	"github.com/obralink/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormMappingTemplateRepository stores template versions append-only
type GormMappingTemplateRepository struct {
	db *gorm.DB
}

// NewGormMappingTemplateRepository creates the repository
func NewGormMappingTemplateRepository(db *gorm.DB) *GormMappingTemplateRepository {
	return &GormMappingTemplateRepository{db: db}
}

// Create inserts a new version. The unique (tenant, platform, version) index
// turns a concurrent insert of the same version into ErrTemplateVersionConflict.
func (r *GormMappingTemplateRepository) Create(ctx context.Context, t *integration.MappingTemplate) error {
	row, err := models.MappingTemplateModelFromDomain(t)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if isUniqueViolation(err) {
			return integration.ErrTemplateVersionConflict
		}
		return err
	}
	return nil
}

// FindLatest returns the highest version for the tenant and platform
func (r *GormMappingTemplateRepository) FindLatest(ctx context.Context, tenantID uuid.UUID, platform integration.PlatformCode) (*integration.MappingTemplate, error) {
	return r.findOne(r.db.WithContext(ctx).
		Where("tenant_id = ? AND platform = ?", tenantID, platform).
		Order("version DESC"))
}

// FindByVersion returns one specific version
func (r *GormMappingTemplateRepository) FindByVersion(ctx context.Context, tenantID uuid.UUID, platform integration.PlatformCode, version int) (*integration.MappingTemplate, error) {
	return r.findOne(r.db.WithContext(ctx).
		Where("tenant_id = ? AND platform = ? AND version = ?", tenantID, platform, version))
}

func (r *GormMappingTemplateRepository) findOne(query *gorm.DB) (*integration.MappingTemplate, error) {
	var row models.MappingTemplateModel
	if err := query.Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, integration.ErrTemplateNotFound
	}
	return row.ToDomain()
}

// FindAllForTenant returns every version, grouped by platform, newest first
func (r *GormMappingTemplateRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]integration.MappingTemplate, error) {
	var rows []models.MappingTemplateModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("platform ASC").
		Order("version DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]integration.MappingTemplate, 0, len(rows))
	for i := range rows {
		t, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, nil
}

// NextVersion returns one past the highest stored version
func (r *GormMappingTemplateRepository) NextVersion(ctx context.Context, tenantID uuid.UUID, platform integration.PlatformCode) (int, error) {
	var highest int
	if err := r.db.WithContext(ctx).
		Model(&models.MappingTemplateModel{}).
		Where("tenant_id = ? AND platform = ?", tenantID, platform).
		Select("COALESCE(MAX(version), 0)").
		Scan(&highest).Error; err != nil {
		return 0, err
	}
	return highest + 1, nil
}

// isUniqueViolation recognises duplicate-key errors from either driver, with
// or without gorm's error translation enabled
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 23505") || strings.Contains(msg, "UNIQUE constraint failed")
}

var _ integration.MappingTemplateRepository = (*GormMappingTemplateRepository)(nil)
