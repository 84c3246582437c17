package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/obralink/backend/internal/domain/integration"
)

// AuditLogModel is an append-only row of integration_audit_log
type AuditLogModel struct {
	ID         uuid.UUID                `gorm:"type:uuid;primaryKey"`
	EventID    uuid.UUID                `gorm:"type:uuid;not null;uniqueIndex"`
	TenantID   uuid.UUID                `gorm:"type:uuid;not null;index:idx_audit_tenant_job,priority:1"`
	JobID      uuid.UUID                `gorm:"type:uuid;not null;index:idx_audit_tenant_job,priority:2"`
	TraceID    string                   `gorm:"type:varchar(64)"`
	Platform   integration.PlatformCode `gorm:"type:varchar(32)"`
	EventType  string                   `gorm:"type:varchar(64);not null"`
	State      integration.JobState     `gorm:"type:varchar(20)"`
	Attempt    int
	Detail     string    `gorm:"type:text"`
	OccurredAt time.Time `gorm:"not null;index"`
}

func (AuditLogModel) TableName() string {
	return "integration_audit_log"
}

// AuditLogModelFromDomain converts an audit entry
func AuditLogModelFromDomain(e *integration.AuditEntry) *AuditLogModel {
	return &AuditLogModel{
		ID:         e.ID,
		EventID:    e.EventID,
		TenantID:   e.TenantID,
		JobID:      e.JobID,
		TraceID:    e.TraceID,
		Platform:   e.Platform,
		EventType:  e.EventType,
		State:      e.State,
		Attempt:    e.Attempt,
		Detail:     e.Detail,
		OccurredAt: e.OccurredAt,
	}
}

// ToDomain converts the row back to an audit entry
func (m *AuditLogModel) ToDomain() integration.AuditEntry {
	return integration.AuditEntry{
		ID:         m.ID,
		EventID:    m.EventID,
		TenantID:   m.TenantID,
		JobID:      m.JobID,
		TraceID:    m.TraceID,
		Platform:   m.Platform,
		EventType:  m.EventType,
		State:      m.State,
		Attempt:    m.Attempt,
		Detail:     m.Detail,
		OccurredAt: m.OccurredAt,
	}
}
