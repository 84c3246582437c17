package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/obralink/backend/internal/domain/shared"
)

// TenantAggregateModel holds the columns every tenant-scoped aggregate table
// carries. Version backs optimistic locking.
type TenantAggregateModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Version   int       `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// FromDomain copies the aggregate root columns
func (m *TenantAggregateModel) FromDomain(a shared.TenantAggregateRoot) {
	m.ID = a.ID
	m.TenantID = a.TenantID
	m.Version = a.Version
	m.CreatedAt = a.CreatedAt
	m.UpdatedAt = a.UpdatedAt
}

// ToDomain rebuilds the aggregate root
func (m *TenantAggregateModel) ToDomain() shared.TenantAggregateRoot {
	return shared.RestoreTenantAggregateRoot(m.ID, m.TenantID, m.Version, m.CreatedAt, m.UpdatedAt)
}

// All returns every model, in dependency order, for AutoMigrate in tests and
// the sqlite driver
func All() []any {
	return []any{
		&IntegrationJobModel{},
		&MappingTemplateModel{},
		&RemediationTaskModel{},
		&AuditLogModel{},
		&OutboxEntryModel{},
	}
}
